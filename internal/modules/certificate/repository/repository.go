package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type CertificateRepository interface {
	Create(ctx context.Context, certificate *entity.Certificate) error
	Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Certificate, error)
	FindByCode(ctx context.Context, code string) (*entity.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, certificate *entity.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r *certificateRepository) Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Certificate{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *certificateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Certificate, error) {
	var certificates []entity.Certificate
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certificates).Error; err != nil {
		return nil, err
	}
	return certificates, nil
}

func (r *certificateRepository) FindByCode(ctx context.Context, code string) (*entity.Certificate, error) {
	var certificate entity.Certificate
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("code = ?", code).
		First(&certificate).Error; err != nil {
		return nil, err
	}
	return &certificate, nil
}
