package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"viralacademy.com/academy/internal/entity"
)

func TestMapStatus(t *testing.T) {
	tests := map[string]string{
		"active":             entity.SubscriptionActive,
		"trialing":           entity.SubscriptionTrialing,
		"past_due":           entity.SubscriptionPastDue,
		"canceled":           entity.SubscriptionCanceled,
		"incomplete_expired": entity.SubscriptionCanceled,
		"unpaid":             entity.SubscriptionUnpaid,
		"incomplete":         entity.SubscriptionIncomplete,
		"paused":             entity.SubscriptionIncomplete,
		"":                   entity.SubscriptionIncomplete,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapStatus(in), in)
	}
}

func TestNewStripeWithoutKeyIsDisabled(t *testing.T) {
	p := NewStripe(StripeConfig{})
	assert.IsType(t, Disabled{}, p)

	_, err := p.CreateCustomer(context.Background(), CustomerInput{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = p.ParseWebhook([]byte("{}"), "sig")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	p := NewStripe(StripeConfig{SecretKey: "sk_test_123", WebhookSecret: "whsec_test"})

	_, err := p.ParseWebhook([]byte(`{"id":"evt_1","type":"customer.subscription.updated"}`), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookSubscriptionEvent(t *testing.T) {
	const secret = "whsec_test"
	p := NewStripe(StripeConfig{SecretKey: "sk_test_123", WebhookSecret: secret})

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"object": "subscription",
			"customer": "cus_1",
			"status": "active",
			"cancel_at_period_end": false,
			"current_period_end": 1767225600,
			"items": {"object": "list", "data": [{"id": "si_1", "price": {"id": "price_monthly"}}]}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	event, err := p.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.False(t, event.Ignored)
	assert.Equal(t, "cus_1", event.CustomerID)
	assert.Equal(t, "sub_1", event.SubscriptionID)
	assert.Equal(t, entity.SubscriptionActive, event.Status)
	assert.Equal(t, "price_monthly", event.PriceID)
	require.NotNil(t, event.CurrentPeriodEnd)
	assert.Equal(t, int64(1767225600), event.CurrentPeriodEnd.Unix())
}
