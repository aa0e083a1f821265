package repository

import (
	"context"
	"time"

	"github.com/voluntra/signup-service/internal/models"
	"gorm.io/gorm"
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindByEventAndVolunteer(ctx context.Context, eventID, volunteerID string) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error)

	// Delete reports whether a row was actually removed. Callers releasing
	// capacity must only do so on true, so a retried withdraw cannot release
	// the same seat twice.
	Delete(ctx context.Context, id string) (bool, error)

	// SetInTime records check-in iff no check-in was recorded yet; the
	// conditional write is the idempotency gate under duplicate requests.
	SetInTime(ctx context.Context, id string, t time.Time) (bool, error)
	// SetOutTime records check-out iff no check-out was recorded yet.
	SetOutTime(ctx context.Context, id string, t time.Time) (bool, error)
	UpdateTimes(ctx context.Context, id string, inTime, outTime *time.Time) error
	ClearAttendance(ctx context.Context, id string) error
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindByEventAndVolunteer(ctx context.Context, eventID, volunteerID string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).
		First(&reg, "event_id = ? AND volunteer_id = ?", eventID, volunteerID).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Registration{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *registrationRepository) SetInTime(ctx context.Context, id string, t time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND in_time IS NULL", id).
		Updates(map[string]any{"in_time": t, "has_attended": true})
	return res.RowsAffected > 0, res.Error
}

func (r *registrationRepository) SetOutTime(ctx context.Context, id string, t time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND in_time IS NOT NULL AND out_time IS NULL", id).
		Update("out_time", t)
	return res.RowsAffected > 0, res.Error
}

// UpdateTimes is for organizer timestamp corrections only; it touches nothing
// but the given fields.
func (r *registrationRepository) UpdateTimes(ctx context.Context, id string, inTime, outTime *time.Time) error {
	updates := map[string]any{}
	if inTime != nil {
		updates["in_time"] = *inTime
	}
	if outTime != nil {
		updates["out_time"] = *outTime
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *registrationRepository) ClearAttendance(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Updates(map[string]any{"in_time": nil, "out_time": nil, "has_attended": false}).Error
}
