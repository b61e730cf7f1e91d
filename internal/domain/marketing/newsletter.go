package marketing

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
)

// SubscriberStatus represents a newsletter subscription state
type SubscriberStatus string

const (
	SubscriberStatusSubscribed   SubscriberStatus = "subscribed"
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed"
)

// IsValid reports whether s is a known status
func (s SubscriberStatus) IsValid() bool {
	return s == SubscriberStatusSubscribed || s == SubscriberStatusUnsubscribed
}

// Subscriber is a newsletter subscription keyed by email
type Subscriber struct {
	shared.BaseAggregateRoot
	Email            string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_newsletter_email"`
	Status           SubscriberStatus `gorm:"type:varchar(20);not null;default:'subscribed';index"`
	UnsubscribeToken string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_newsletter_token"`
	Source           string           `gorm:"type:varchar(50)"`
	SubscribedAt     time.Time        `gorm:"not null"`
	UnsubscribedAt   *time.Time
}

// TableName returns the table name for GORM
func (Subscriber) TableName() string {
	return "newsletter_subscribers"
}

// NewSubscriber creates an active subscription
func NewSubscriber(email, source string) (*Subscriber, error) {
	email = identity.NormalizeEmail(email)
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}
	return &Subscriber{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Status:            SubscriberStatusSubscribed,
		UnsubscribeToken:  newToken(),
		Source:            source,
		SubscribedAt:      time.Now(),
	}, nil
}

// IsSubscribed reports whether the subscription is active
func (s *Subscriber) IsSubscribed() bool {
	return s.Status == SubscriberStatusSubscribed
}

// Resubscribe reactivates an unsubscribed address with a fresh token
func (s *Subscriber) Resubscribe() error {
	if s.IsSubscribed() {
		return shared.NewConflictError("Email is already subscribed")
	}
	s.Status = SubscriberStatusSubscribed
	s.SubscribedAt = time.Now()
	s.UnsubscribedAt = nil
	s.UnsubscribeToken = newToken()
	s.IncrementVersion()
	return nil
}

// Unsubscribe deactivates the subscription. It is idempotent.
func (s *Subscriber) Unsubscribe() {
	if !s.IsSubscribed() {
		return
	}
	now := time.Now()
	s.Status = SubscriberStatusUnsubscribed
	s.UnsubscribedAt = &now
	s.IncrementVersion()
}

func newToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
