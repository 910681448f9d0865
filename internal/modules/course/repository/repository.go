package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/database"
)

// courseOrderLock serialises order computation for top-level courses, which
// have no parent row to lock.
const courseOrderLock = 0x436f75727365

type CourseRepository interface {
	// Create assigns the next order when course.Order is zero.
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	// FindBySlug loads the course with its modules and lessons in order.
	FindBySlug(ctx context.Context, slug string) (*entity.Course, error)
	List(ctx context.Context, includeDrafts bool) ([]entity.Course, error)
	Update(ctx context.Context, course *entity.Course) error
	// Delete removes the course and everything hanging off it.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if course.Order == 0 {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", courseOrderLock).Error; err != nil {
				return err
			}
			next, err := database.NextOrder(tx, &entity.Course{}, "", uuid.Nil)
			if err != nil {
				return err
			}
			course.Order = next
		}
		return tx.Create(course).Error
	})
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindBySlug(ctx context.Context, slug string) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("slug = ?", slug).
		First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, includeDrafts bool) ([]entity.Course, error) {
	var courses []entity.Course
	query := r.db.WithContext(ctx).Model(&entity.Course{})
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}
	if err := query.Order("sort_order ASC, created_at ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).
		Model(course).
		Select("Title", "Summary", "Description", "ThumbnailURL", "Level", "Published", "Order").
		Updates(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moduleIDs := tx.Model(&entity.Module{}).Select("id").Where("course_id = ?", id)
		lessonIDs := tx.Model(&entity.Lesson{}).Select("id").Where("module_id IN (?)", moduleIDs)

		if err := tx.Where("lesson_id IN (?)", lessonIDs).Delete(&entity.LessonProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN (?)", moduleIDs).Delete(&entity.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Certificate{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.LiveEvent{}).Where("course_id = ?", id).Update("course_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&entity.Course{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Course{}).Count(&count).Error
	return count, err
}
