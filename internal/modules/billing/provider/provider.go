// Package provider is the boundary to the payment processor. Everything the
// rest of the code knows about billing state arrives through SubscriptionEvent.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

var (
	ErrNotConfigured    = errors.New("billing provider is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type CustomerInput struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

type CheckoutInput struct {
	UserID     uuid.UUID
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// SubscriptionEvent is a subscription lifecycle change reported by the
// provider. Ignored is set for event types that carry no subscription.
type SubscriptionEvent struct {
	Type              string
	CustomerID        string
	SubscriptionID    string
	Status            string
	PriceID           string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	Ignored           bool
}

type Provider interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (string, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ParseWebhook(payload []byte, signature string) (*SubscriptionEvent, error)
}

// MapStatus translates a processor status into the local status set.
func MapStatus(status string) string {
	switch status {
	case "active":
		return entity.SubscriptionActive
	case "trialing":
		return entity.SubscriptionTrialing
	case "past_due":
		return entity.SubscriptionPastDue
	case "canceled", "incomplete_expired":
		return entity.SubscriptionCanceled
	case "unpaid":
		return entity.SubscriptionUnpaid
	default:
		return entity.SubscriptionIncomplete
	}
}

// Disabled is used when no processor credentials are configured.
type Disabled struct{}

func (Disabled) CreateCustomer(context.Context, CustomerInput) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) CreateCheckoutSession(context.Context, CheckoutInput) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) CreatePortalSession(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) ParseWebhook([]byte, string) (*SubscriptionEvent, error) {
	return nil, ErrNotConfigured
}
