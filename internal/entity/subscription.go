package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionActive     = "ACTIVE"
	SubscriptionTrialing   = "TRIALING"
	SubscriptionIncomplete = "INCOMPLETE"
	SubscriptionPastDue    = "PAST_DUE"
	SubscriptionCanceled   = "CANCELED"
	SubscriptionUnpaid     = "UNPAID"
)

// Subscription mirrors the billing provider's state for one user. Only
// Status == ACTIVE grants access to enrollment.
type Subscription struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Status               string     `gorm:"size:20;not null;index" json:"status"`
	StripeCustomerID     *string    `gorm:"size:100;uniqueIndex" json:"-"`
	StripeSubscriptionID *string    `gorm:"size:100;index" json:"-"`
	PriceID              string     `gorm:"size:100" json:"price_id"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"not null;default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	if s.Status == "" {
		s.Status = SubscriptionIncomplete
	}
	return
}

func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionActive
}
