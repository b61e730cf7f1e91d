package marketing

import (
	"context"

	"github.com/google/uuid"
)

// ContactFilter contains filter options for querying contact messages
type ContactFilter struct {
	Status   *ContactStatus
	Search   string
	Page     int
	PageSize int
}

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	Update(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindAll(ctx context.Context, filter ContactFilter) ([]*Contact, int64, error)
}

// SubscriberFilter contains filter options for querying subscribers
type SubscriberFilter struct {
	Status   *SubscriberStatus
	Search   string
	Page     int
	PageSize int
}

// SubscriberRepository defines the interface for newsletter persistence
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *Subscriber) error
	Update(ctx context.Context, subscriber *Subscriber) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	FindByToken(ctx context.Context, token string) (*Subscriber, error)
	FindAll(ctx context.Context, filter SubscriberFilter) ([]*Subscriber, int64, error)
	// Each streams every subscriber matching filter, ignoring pagination
	Each(ctx context.Context, filter SubscriberFilter, fn func(*Subscriber) error) error
}
