package dto

import (
	"time"

	"viralacademy.com/academy/internal/entity"
)

// StatusNone is reported for users who never started a checkout.
const StatusNone = "NONE"

type URLResponse struct {
	URL string `json:"url"`
}

type SubscriptionResponse struct {
	Status            string     `json:"status"`
	Active            bool       `json:"active"`
	PriceID           string     `json:"price_id,omitempty"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

func ToSubscriptionResponse(s *entity.Subscription) SubscriptionResponse {
	if s == nil {
		return SubscriptionResponse{Status: StatusNone}
	}
	return SubscriptionResponse{
		Status:            s.Status,
		Active:            s.IsActive(),
		PriceID:           s.PriceID,
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
}
