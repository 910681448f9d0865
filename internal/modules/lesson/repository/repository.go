package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/database"
)

type LessonRepository interface {
	// Append locks the module row and stores lesson. A zero Order is
	// replaced by one past the module's current last lesson. A missing
	// module gives gorm.ErrRecordNotFound.
	Append(ctx context.Context, moduleID uuid.UUID, lesson *entity.Lesson) error
	// FindByID preloads the owning module so callers know the course.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	Update(ctx context.Context, lesson *entity.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
	ProgressRepository
}

// ProgressRepository covers lesson completion rows.
type ProgressRepository interface {
	// MarkComplete is idempotent; created is false when the row existed.
	MarkComplete(ctx context.Context, userID, lessonID uuid.UUID) (created bool, err error)
	Unmark(ctx context.Context, userID, lessonID uuid.UUID) error
	IsCompleted(ctx context.Context, userID, lessonID uuid.UUID) (bool, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountCompleted(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Append(ctx context.Context, moduleID uuid.UUID, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module entity.Module
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", moduleID).
			First(&module).Error; err != nil {
			return err
		}

		if lesson.Order == 0 {
			next, err := database.NextOrder(tx, &entity.Lesson{}, "module_id", moduleID)
			if err != nil {
				return err
			}
			lesson.Order = next
		}

		lesson.ModuleID = moduleID
		if err := tx.Create(lesson).Error; err != nil {
			return err
		}
		lesson.Module = &module
		return nil
	})
}

func (r *lessonRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).
		Preload("Module").
		Where("id = ?", id).
		First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).
		Model(lesson).
		Select("Title", "Content", "VideoID", "DurationSeconds", "IsPreview", "Order").
		Updates(lesson).Error
}

func (r *lessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", id).Delete(&entity.LessonProgress{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Lesson{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *lessonRepository) MarkComplete(ctx context.Context, userID, lessonID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.LessonProgress{UserID: userID, LessonID: lessonID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *lessonRepository) Unmark(ctx context.Context, userID, lessonID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&entity.LessonProgress{}).Error
}

func (r *lessonRepository) IsCompleted(ctx context.Context, userID, lessonID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&count).Error
	return count > 0, err
}

func (r *lessonRepository) CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *lessonRepository) CountCompleted(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lesson_progress.user_id = ? AND course_modules.course_id = ?", userID, courseID).
		Count(&count).Error
	return count, err
}
