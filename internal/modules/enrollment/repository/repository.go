package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	// Delete removes the enrollment together with the user's progress in
	// the course. It reports false when there was no enrollment.
	Delete(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Enrollment, error)
	Count(ctx context.Context) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) Delete(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&entity.Enrollment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true

		lessonIDs := tx.Model(&entity.Lesson{}).
			Select("lessons.id").
			Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
			Where("course_modules.course_id = ?", courseID)
		return tx.Where("user_id = ? AND lesson_id IN (?)", userID, lessonIDs).
			Delete(&entity.LessonProgress{}).Error
	})
	return deleted, err
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Enrollment, error) {
	var enrollments []entity.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Count(&count).Error
	return count, err
}
