package shopping

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopspring/decimal"
)

// AddCartItemInput adds a product to the cart
type AddCartItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

// UpdateCartItemInput sets the quantity of a cart line
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99"`
}

// CartItemResponse is one cart line with current product details
type CartItemResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Image        string          `json:"image,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Stock        int             `json:"stock"`
	Available    bool            `json:"available"`
}

// CartResponse is the cart with computed totals
type CartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []CartItemResponse `json:"items"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	ItemCount int                `json:"item_count"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AddWishlistInput names the product to save
type AddWishlistInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// MoveToCartInput is the optional body of a wishlist move
type MoveToCartInput struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// WishlistItemResponse is a saved product
type WishlistItemResponse struct {
	ProductID uuid.UUID                   `json:"product_id"`
	AddedAt   time.Time                   `json:"added_at"`
	Product   *catalogapp.ProductResponse `json:"product,omitempty"`
}
