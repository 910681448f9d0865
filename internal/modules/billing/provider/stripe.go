package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	eventSubscriptionCreated = "customer.subscription.created"
	eventSubscriptionUpdated = "customer.subscription.updated"
	eventSubscriptionDeleted = "customer.subscription.deleted"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type stripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripe returns a Stripe-backed provider, or Disabled when no secret key
// is configured.
func NewStripe(cfg StripeConfig) Provider {
	if cfg.SecretKey == "" {
		return Disabled{}
	}
	return &stripeProvider{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (p *stripeProvider) CreateCustomer(ctx context.Context, in CustomerInput) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(in.Email),
		Name:  stripe.String(in.Name),
	}
	params.Context = ctx
	params.AddMetadata("user_id", in.UserID.String())

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return customer.ID, nil
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(in.CustomerID),
		ClientReferenceID: stripe.String(in.UserID.String()),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}

func (p *stripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return session.URL, nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, signature string) (*SubscriptionEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	eventType := string(event.Type)
	switch eventType {
	case eventSubscriptionCreated, eventSubscriptionUpdated, eventSubscriptionDeleted:
	default:
		return &SubscriptionEvent{Type: eventType, Ignored: true}, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}

	out := &SubscriptionEvent{
		Type:              eventType,
		SubscriptionID:    sub.ID,
		Status:            MapStatus(string(sub.Status)),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if eventType == eventSubscriptionDeleted {
		out.Status = MapStatus("canceled")
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		out.CurrentPeriodEnd = &end
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out, nil
}
