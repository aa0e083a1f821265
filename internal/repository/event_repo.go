package repository

import (
	"context"
	"errors"

	"github.com/voluntra/signup-service/internal/models"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)

	// ReserveSeat adds one occupant iff the event still has room (always
	// succeeds for unlimited events). Returns false when the conditional
	// write matched no row, i.e. the event is full or unknown.
	ReserveSeat(ctx context.Context, eventID string) (bool, error)
	ReleaseSeat(ctx context.Context, eventID string) error

	FindCategory(ctx context.Context, eventID, slotID, categoryID string) (*models.SlotCategory, error)
	ReserveCategorySlot(ctx context.Context, categoryID string) (bool, error)
	ReleaseCategorySlot(ctx context.Context, categoryID string) error

	IsBanned(ctx context.Context, eventID, volunteerID string) (bool, error)
	Ban(ctx context.Context, eventID, volunteerID string) error
	Unban(ctx context.Context, eventID, volunteerID string) error
	IsRemoved(ctx context.Context, eventID, volunteerID string) (bool, error)
	MarkRemoved(ctx context.Context, eventID, volunteerID string) error
	ClearRemoved(ctx context.Context, eventID, volunteerID string) error

	IsOrganizer(ctx context.Context, eventID, userID string) (bool, error)
	AddOrganizer(ctx context.Context, eventID, userID string) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("TimeSlots.Categories").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ReserveSeat is the event-wide admission gate: a single conditional UPDATE,
// never a read-then-write pair, so two requests racing on the last seat
// cannot both succeed.
func (r *eventRepository) ReserveSeat(ctx context.Context, eventID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND (capacity_mode = ? OR occupant_count < max_seats)",
			eventID, models.CapacityUnlimited).
		UpdateColumn("occupant_count", gorm.Expr("occupant_count + 1"))
	return res.RowsAffected > 0, res.Error
}

// ReleaseSeat decrements the occupant count, never below zero. Safe to call
// again for an already-released registration.
func (r *eventRepository) ReleaseSeat(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND occupant_count > 0", eventID).
		UpdateColumn("occupant_count", gorm.Expr("occupant_count - 1")).Error
}

func (r *eventRepository) FindCategory(ctx context.Context, eventID, slotID, categoryID string) (*models.SlotCategory, error) {
	var slot models.TimeSlot
	err := r.db.WithContext(ctx).
		First(&slot, "id = ? AND event_id = ?", slotID, eventID).Error
	if err != nil {
		return nil, err
	}

	var cat models.SlotCategory
	err = r.db.WithContext(ctx).
		First(&cat, "id = ? AND time_slot_id = ?", categoryID, slot.ID).Error
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ReserveCategorySlot mirrors ReserveSeat for the nested per-category gate.
func (r *eventRepository) ReserveCategorySlot(ctx context.Context, categoryID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SlotCategory{}).
		Where("id = ? AND (max_occupants IS NULL OR current_occupants < max_occupants)", categoryID).
		UpdateColumn("current_occupants", gorm.Expr("current_occupants + 1"))
	return res.RowsAffected > 0, res.Error
}

func (r *eventRepository) ReleaseCategorySlot(ctx context.Context, categoryID string) error {
	return r.db.WithContext(ctx).
		Model(&models.SlotCategory{}).
		Where("id = ? AND current_occupants > 0", categoryID).
		UpdateColumn("current_occupants", gorm.Expr("current_occupants - 1")).Error
}

func (r *eventRepository) IsBanned(ctx context.Context, eventID, volunteerID string) (bool, error) {
	return r.exists(ctx, &models.BannedVolunteer{}, eventID, volunteerID)
}

func (r *eventRepository) Ban(ctx context.Context, eventID, volunteerID string) error {
	rec := models.BannedVolunteer{EventID: eventID, VolunteerID: volunteerID}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *eventRepository) Unban(ctx context.Context, eventID, volunteerID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.BannedVolunteer{}, "event_id = ? AND volunteer_id = ?", eventID, volunteerID).Error
}

func (r *eventRepository) IsRemoved(ctx context.Context, eventID, volunteerID string) (bool, error) {
	return r.exists(ctx, &models.RemovedVolunteer{}, eventID, volunteerID)
}

func (r *eventRepository) MarkRemoved(ctx context.Context, eventID, volunteerID string) error {
	rec := models.RemovedVolunteer{EventID: eventID, VolunteerID: volunteerID}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *eventRepository) ClearRemoved(ctx context.Context, eventID, volunteerID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.RemovedVolunteer{}, "event_id = ? AND volunteer_id = ?", eventID, volunteerID).Error
}

func (r *eventRepository) IsOrganizer(ctx context.Context, eventID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventOrganizer{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *eventRepository) AddOrganizer(ctx context.Context, eventID, userID string) error {
	rec := models.EventOrganizer{EventID: eventID, UserID: userID}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *eventRepository) exists(ctx context.Context, model any, eventID, volunteerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where("event_id = ? AND volunteer_id = ?", eventID, volunteerID).
		Count(&count).Error
	return count > 0, err
}
