package trade

import (
	"context"
	"errors"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// webhookTTL is how long a delivered event ID is remembered. Stripe retries
// for up to three days.
const webhookTTL = 72 * time.Hour

// WebhookService applies payment provider callbacks to orders
type WebhookService struct {
	payments    PaymentGateway
	orderRepo   trade.OrderRepository
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	payments PaymentGateway,
	orderRepo trade.OrderRepository,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *WebhookService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &WebhookService{
		payments:    payments,
		orderRepo:   orderRepo,
		idempotency: idempotency,
		publisher:   publisher,
		logger:      logger,
	}
}

// HandleStripe verifies and applies one webhook delivery. Redelivered events
// and events for unknown intents are acknowledged without changes.
func (s *WebhookService) HandleStripe(ctx context.Context, payload []byte, signature string) error {
	if s.payments == nil {
		return shared.NewDomainError(shared.CodePaymentUnavailable, "Card payments are not available")
	}
	event, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	log := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.ProviderType),
		zap.String("payment_intent_id", event.IntentID))

	if event.Type == PaymentEventIgnored {
		log.Debug("Ignoring webhook event")
		return nil
	}

	first, err := s.idempotency.MarkProcessed(ctx, "stripe:"+event.ID, webhookTTL)
	if err != nil {
		return err
	}
	if !first {
		log.Info("Skipping duplicate webhook event")
		return nil
	}

	if err := s.apply(ctx, event); err != nil {
		if ferr := s.idempotency.Forget(ctx, "stripe:"+event.ID); ferr != nil {
			log.Warn("Failed to release webhook event for retry", zap.Error(ferr))
		}
		return err
	}
	return nil
}

func (s *WebhookService) apply(ctx context.Context, event *PaymentEvent) error {
	order, err := s.orderRepo.FindByPaymentIntent(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Webhook references unknown payment intent",
				zap.String("payment_intent_id", event.IntentID))
			return nil
		}
		return err
	}

	before := order.GetVersion()
	switch event.Type {
	case PaymentEventSucceeded:
		if err := order.MarkPaymentSucceeded(); err != nil {
			// A late payment on a cancelled order needs a manual refund.
			s.logger.Error("Payment captured for an order that cannot accept it",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			return nil
		}
	case PaymentEventFailed:
		order.MarkPaymentFailed()
	}
	if order.GetVersion() == before {
		return nil
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return err
	}
	if err := shared.PublishPending(ctx, s.publisher, order); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}

	s.logger.Info("Payment status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("failure", event.FailureMessage))
	return nil
}
