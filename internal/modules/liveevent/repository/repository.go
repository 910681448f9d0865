package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

const notEndedClause = "starts_at + make_interval(mins => duration_minutes) > ?"

type LiveEventRepository interface {
	Create(ctx context.Context, event *entity.LiveEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LiveEvent, error)
	// ListUpcoming returns events that have not ended at now, soonest first.
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]entity.LiveEvent, error)
	Update(ctx context.Context, event *entity.LiveEvent) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// DueForReminder lists events starting in (now, until] that have not had
	// a reminder yet.
	DueForReminder(ctx context.Context, now, until time.Time) ([]entity.LiveEvent, error)
	// ClaimReminder sets reminder_sent_at if it is still empty and reports
	// whether this caller won the claim.
	ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type liveEventRepository struct {
	db *gorm.DB
}

func NewLiveEventRepository(db *gorm.DB) LiveEventRepository {
	return &liveEventRepository{db: db}
}

func (r *liveEventRepository) Create(ctx context.Context, event *entity.LiveEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *liveEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LiveEvent, error) {
	var event entity.LiveEvent
	if err := r.db.WithContext(ctx).
		Preload("Host").
		Where("id = ?", id).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *liveEventRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]entity.LiveEvent, error) {
	var events []entity.LiveEvent
	if err := r.db.WithContext(ctx).
		Preload("Host").
		Where(notEndedClause, now).
		Order("starts_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Update writes ReminderSentAt too so a rescheduled event is reminded again.
func (r *liveEventRepository) Update(ctx context.Context, event *entity.LiveEvent) error {
	return r.db.WithContext(ctx).
		Model(event).
		Select("Title", "Description", "StartsAt", "DurationMinutes", "JoinURL", "CourseID", "ReminderSentAt").
		Updates(event).Error
}

func (r *liveEventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.LiveEvent{})
	return result.RowsAffected > 0, result.Error
}

func (r *liveEventRepository) DueForReminder(ctx context.Context, now, until time.Time) ([]entity.LiveEvent, error) {
	var events []entity.LiveEvent
	if err := r.db.WithContext(ctx).
		Where("reminder_sent_at IS NULL AND starts_at > ? AND starts_at <= ?", now, until).
		Order("starts_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *liveEventRepository) ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.LiveEvent{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", at)
	return result.RowsAffected > 0, result.Error
}
