package trade

import (
	"context"

	"github.com/google/uuid"
)

// PaymentGateway creates card payments and verifies provider callbacks
type PaymentGateway interface {
	// CreatePaymentIntent starts a card payment for an order. Calls with the
	// same order ID are idempotent at the provider.
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	// CancelPaymentIntent voids an unpaid intent
	CancelPaymentIntent(ctx context.Context, intentID string) error
	// ParseWebhook verifies the signature of a callback and decodes it
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// PaymentIntentRequest describes the amount to collect
type PaymentIntentRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	UserID      uuid.UUID
	Email       string
	// AmountMinor is the amount in the currency's smallest unit
	AmountMinor int64
	Currency    string
}

// PaymentIntent is the provider-side payment handle
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentEventType classifies verified callbacks
type PaymentEventType string

const (
	PaymentEventSucceeded PaymentEventType = "succeeded"
	PaymentEventFailed    PaymentEventType = "failed"
	PaymentEventIgnored   PaymentEventType = "ignored"
)

// PaymentEvent is a verified provider callback
type PaymentEvent struct {
	ID             string
	Type           PaymentEventType
	ProviderType   string
	IntentID       string
	FailureMessage string
}
