package repository

import (
	"context"
	"time"

	"github.com/voluntra/signup-service/internal/models"
	"gorm.io/gorm"
)

type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) error
	FindByToken(ctx context.Context, token string) (*models.Credential, error)
	FindLive(ctx context.Context, registrationID string, kind models.CredentialKind) (*models.Credential, error)

	// Consume marks a live credential consumed. Returns false when the token
	// was already consumed or unknown (conditional write, single use).
	Consume(ctx context.Context, token string) (bool, error)
	DeleteByRegistration(ctx context.Context, registrationID string) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *credentialRepository) FindByToken(ctx context.Context, token string) (*models.Credential, error) {
	var cred models.Credential
	if err := r.db.WithContext(ctx).First(&cred, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) FindLive(ctx context.Context, registrationID string, kind models.CredentialKind) (*models.Credential, error) {
	var cred models.Credential
	err := r.db.WithContext(ctx).
		First(&cred, "registration_id = ? AND kind = ? AND consumed_at IS NULL", registrationID, kind).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Consume(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Credential{}).
		Where("token = ? AND consumed_at IS NULL", token).
		Update("consumed_at", time.Now())
	return res.RowsAffected > 0, res.Error
}

func (r *credentialRepository) DeleteByRegistration(ctx context.Context, registrationID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.Credential{}, "registration_id = ?", registrationID).Error
}
