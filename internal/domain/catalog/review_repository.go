package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReviewFilter contains filter options for querying reviews
type ReviewFilter struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
	Status    *ReviewStatus
	Page      int
	PageSize  int
}

// RatingSummary aggregates approved reviews of a product
type RatingSummary struct {
	Average      decimal.Decimal
	Count        int
	Distribution map[int]int
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	Update(ctx context.Context, review *Review) error
	// Delete soft-deletes a review
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindAll(ctx context.Context, filter ReviewFilter) ([]*Review, int64, error)
	ExistsByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	// Summarize computes the rating summary over approved reviews
	Summarize(ctx context.Context, productID uuid.UUID) (*RatingSummary, error)
}
