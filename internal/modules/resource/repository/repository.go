package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *entity.Resource) error
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *entity.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Resource, error) {
	var resources []entity.Resource
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Resource{})
	return result.RowsAffected > 0, result.Error
}
