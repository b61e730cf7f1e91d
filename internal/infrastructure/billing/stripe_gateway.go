package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

var _ trade.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway implements PaymentGateway with Stripe PaymentIntents
type StripeGateway struct {
	config  *StripeConfig
	intents *paymentintent.Client
	logger  *zap.Logger
}

// NewStripeGateway creates a gateway on the default Stripe API backend
func NewStripeGateway(cfg *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	return NewStripeGatewayWithBackend(cfg, stripe.GetBackend(stripe.APIBackend), logger)
}

// NewStripeGatewayWithBackend creates a gateway on an explicit backend
func NewStripeGatewayWithBackend(cfg *StripeConfig, backend stripe.Backend, logger *zap.Logger) (*StripeGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StripeGateway{
		config:  cfg,
		intents: &paymentintent.Client{B: backend, Key: cfg.SecretKey},
		logger:  logger,
	}, nil
}

// CreatePaymentIntent creates a PaymentIntent keyed on the order ID
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req trade.PaymentIntentRequest) (*trade.PaymentIntent, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = g.config.DefaultCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String("Order " + req.OrderNumber),
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())
	params.AddMetadata("order_number", req.OrderNumber)
	params.AddMetadata("user_id", req.UserID.String())
	params.SetIdempotencyKey("order-" + req.OrderID.String())

	pi, err := g.intents.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err))
		return nil, translateStripeError(err)
	}

	g.logger.Info("Created payment intent",
		zap.String("order_number", req.OrderNumber),
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", req.AmountMinor))

	return &trade.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// CancelPaymentIntent cancels an intent that has not been captured
func (g *StripeGateway) CancelPaymentIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.intents.Cancel(intentID, params); err != nil {
		return translateStripeError(err)
	}
	g.logger.Info("Cancelled payment intent", zap.String("payment_intent_id", intentID))
	return nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the
// payment intent events the shop reacts to
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*trade.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.logger.Warn("Rejected webhook with invalid signature", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid webhook signature")
	}

	out := &trade.PaymentEvent{
		ID:           event.ID,
		ProviderType: string(event.Type),
		Type:         trade.PaymentEventIgnored,
	}
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		out.Type = trade.PaymentEventSucceeded
	case stripe.EventTypePaymentIntentPaymentFailed:
		out.Type = trade.PaymentEventFailed
	default:
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}
	out.IntentID = pi.ID
	if pi.LastPaymentError != nil {
		out.FailureMessage = pi.LastPaymentError.Msg
	}
	return out, nil
}

// translateStripeError maps card declines to PAYMENT_FAILED and everything
// else to PAYMENT_UNAVAILABLE
func translateStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return shared.NewDomainError(shared.CodePaymentUnavailable, "Payment provider is unavailable")
	}
	if se.Type == stripe.ErrorTypeCard {
		msg := se.Msg
		if msg == "" {
			msg = "Card was declined"
		}
		return shared.NewDomainError(shared.CodePaymentFailed, msg)
	}
	if se.Type == stripe.ErrorTypeInvalidRequest && se.HTTPStatusCode == 400 {
		return shared.NewDomainError(shared.CodePaymentFailed, se.Msg)
	}
	return shared.NewDomainError(shared.CodePaymentUnavailable, "Payment provider is unavailable")
}
