package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Attachment, error) {
	var attachment entity.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Attachment{}).Error
}
