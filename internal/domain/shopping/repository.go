package shopping

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUser returns the user's cart with its items
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// Save creates or updates the cart and replaces its items
	Save(ctx context.Context, cart *Cart) error
	// RemoveProduct deletes lines for a product from every cart
	RemoveProduct(ctx context.Context, productID uuid.UUID) error
}

// WishlistRepository defines the interface for wishlist persistence
type WishlistRepository interface {
	Create(ctx context.Context, item *WishlistItem) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*WishlistItem, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}
