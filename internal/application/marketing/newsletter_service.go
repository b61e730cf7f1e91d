package marketing

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExportColumns is the header row of the subscriber export
var ExportColumns = []string{"email", "status", "source", "subscribed_at", "unsubscribed_at"}

// NewsletterService manages newsletter subscriptions
type NewsletterService struct {
	repo   marketing.SubscriberRepository
	logger *zap.Logger
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(repo marketing.SubscriberRepository, logger *zap.Logger) *NewsletterService {
	return &NewsletterService{repo: repo, logger: logger}
}

// Subscribe adds an address or reactivates an unsubscribed one. created is
// true when a new subscription was stored.
func (s *NewsletterService) Subscribe(ctx context.Context, input SubscribeInput) (resp *SubscriberResponse, created bool, err error) {
	email := identity.NormalizeEmail(input.Email)
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := existing.Resubscribe(); err != nil {
			return nil, false, err
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		s.logger.Info("Newsletter subscriber reactivated", zap.String("subscriber_id", existing.ID.String()))
		out := ToSubscriberResponse(existing)
		return &out, false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, false, err
	}

	sub, err := marketing.NewSubscriber(email, input.Source)
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, false, err
	}
	s.logger.Info("Newsletter subscriber added", zap.String("subscriber_id", sub.ID.String()))
	out := ToSubscriberResponse(sub)
	return &out, true, nil
}

// Unsubscribe deactivates a subscription found by token or email
func (s *NewsletterService) Unsubscribe(ctx context.Context, input UnsubscribeInput) (*SubscriberResponse, error) {
	var (
		sub *marketing.Subscriber
		err error
	)
	switch {
	case input.Token != "":
		sub, err = s.repo.FindByToken(ctx, input.Token)
	case input.Email != "":
		sub, err = s.repo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	default:
		return nil, shared.NewValidationError("Email or token is required")
	}
	if err != nil {
		return nil, err
	}

	if sub.IsSubscribed() {
		sub.Unsubscribe()
		if err := s.repo.Update(ctx, sub); err != nil {
			return nil, err
		}
	}
	out := ToSubscriberResponse(sub)
	return &out, nil
}

// List returns subscribers for the admin
func (s *NewsletterService) List(ctx context.Context, q SubscriberListQuery) (*shared.Paginated[SubscriberResponse], error) {
	filter := subscriberFilter(q)
	filter.Page, filter.PageSize = pageDefaults(q.Page, q.PageSize)
	subs, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]SubscriberResponse, len(subs))
	for i, sub := range subs {
		items[i] = ToSubscriberResponse(sub)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a subscriber
func (s *NewsletterService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ExportCSV writes every subscriber matching q to w as CSV
func (s *NewsletterService) ExportCSV(ctx context.Context, w io.Writer, q SubscriberListQuery) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return 0, err
	}
	n := 0
	err := s.repo.Each(ctx, subscriberFilter(q), func(sub *marketing.Subscriber) error {
		unsubscribed := ""
		if sub.UnsubscribedAt != nil {
			unsubscribed = sub.UnsubscribedAt.UTC().Format(time.RFC3339)
		}
		n++
		return cw.Write([]string{
			sub.Email,
			string(sub.Status),
			sub.Source,
			sub.SubscribedAt.UTC().Format(time.RFC3339),
			unsubscribed,
		})
	})
	if err != nil {
		return n, err
	}
	cw.Flush()
	return n, cw.Error()
}

func subscriberFilter(q SubscriberListQuery) marketing.SubscriberFilter {
	filter := marketing.SubscriberFilter{Search: q.Search}
	if q.Status != "" {
		status := marketing.SubscriberStatus(q.Status)
		filter.Status = &status
	}
	return filter
}
