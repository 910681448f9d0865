package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/database"
)

type ModuleRepository interface {
	// Append locks the course row and stores module. A zero Order is
	// replaced by one past the course's current maximum. A missing course
	// gives gorm.ErrRecordNotFound.
	Append(ctx context.Context, courseID uuid.UUID, module *entity.Module) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Module, error)
	Update(ctx context.Context, module *entity.Module) error
	// Delete removes the module, its lessons and their progress rows.
	Delete(ctx context.Context, id uuid.UUID) error
}

type moduleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) Append(ctx context.Context, courseID uuid.UUID, module *entity.Module) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course entity.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", courseID).
			First(&course).Error; err != nil {
			return err
		}

		if module.Order == 0 {
			next, err := database.NextOrder(tx, &entity.Module{}, "course_id", courseID)
			if err != nil {
				return err
			}
			module.Order = next
		}

		module.CourseID = courseID
		return tx.Create(module).Error
	})
}

func (r *moduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Module, error) {
	var module entity.Module
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) Update(ctx context.Context, module *entity.Module) error {
	return r.db.WithContext(ctx).
		Model(module).
		Select("Title", "Description", "Order").
		Updates(module).Error
}

func (r *moduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessonIDs := tx.Model(&entity.Lesson{}).Select("id").Where("module_id = ?", id)

		if err := tx.Where("lesson_id IN (?)", lessonIDs).Delete(&entity.LessonProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&entity.Lesson{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&entity.Module{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
