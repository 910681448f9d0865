package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type SubscriptionRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error)
	FindByCustomerID(ctx context.Context, customerID string) (*entity.Subscription, error)
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	CountActive(ctx context.Context) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	var sub entity.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByCustomerID(ctx context.Context, customerID string) (*entity.Subscription, error) {
	var sub entity.Subscription
	if err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	return r.db.WithContext(ctx).
		Model(sub).
		Select("Status", "StripeCustomerID", "StripeSubscriptionID", "PriceID", "CurrentPeriodEnd", "CancelAtPeriodEnd").
		Updates(sub).Error
}

func (r *subscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Subscription{}).
		Where("status = ?", entity.SubscriptionActive).
		Count(&count).Error
	return count, err
}
