package shopping

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Quantity bounds for a cart line
const (
	MinItemQuantity = 1
	MaxItemQuantity = 99
)

// CartItem is one product line of a cart. UnitPrice is the product price
// at the time the line was added or last changed.
type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal returns quantity * unit price
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// Cart is the shopping cart of a customer. Each customer has one cart.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_carts_user"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for a customer
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             []CartItem{},
	}
}

func validateQuantity(quantity int) error {
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return shared.NewValidationError("Quantity must be between %d and %d", MinItemQuantity, MaxItemQuantity)
	}
	return nil
}

// AddItem adds quantity of a product. An existing line is merged and
// its price refreshed. available is the stock on hand.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal, available int) (*CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if idx := c.indexOf(productID); idx >= 0 {
		newQty := c.Items[idx].Quantity + quantity
		if err := validateQuantity(newQty); err != nil {
			return nil, err
		}
		if newQty > available {
			return nil, insufficientStock(available)
		}
		c.Items[idx].Quantity = newQty
		c.Items[idx].UnitPrice = unitPrice.Round(2)
		c.Items[idx].UpdatedAt = time.Now()
		c.IncrementVersion()
		return &c.Items[idx], nil
	}
	if quantity > available {
		return nil, insufficientStock(available)
	}
	now := time.Now()
	c.Items = append(c.Items, CartItem{
		ID:        uuid.New(),
		CartID:    c.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	})
	c.IncrementVersion()
	return &c.Items[len(c.Items)-1], nil
}

// UpdateQuantity sets the quantity of an existing line
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int, unitPrice decimal.Decimal, available int) (*CartItem, error) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return nil, shared.NewNotFoundError("Cart item")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if quantity > available {
		return nil, insufficientStock(available)
	}
	c.Items[idx].Quantity = quantity
	c.Items[idx].UnitPrice = unitPrice.Round(2)
	c.Items[idx].UpdatedAt = time.Now()
	c.IncrementVersion()
	return &c.Items[idx], nil
}

// RemoveItem removes a product line
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return shared.NewNotFoundError("Cart item")
	}
	c.Items = slices.Delete(c.Items, idx, idx+1)
	c.IncrementVersion()
	return nil
}

// Clear removes all lines
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.IncrementVersion()
}

// Item returns the line for productID
func (c *Cart) Item(productID uuid.UUID) (*CartItem, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return nil, false
	}
	return &c.Items[idx], true
}

// Subtotal returns the sum of line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

// ItemCount returns the total number of units in the cart
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs returns the product of every line
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	return slices.IndexFunc(c.Items, func(i CartItem) bool { return i.ProductID == productID })
}

func insufficientStock(available int) error {
	return shared.NewDomainError(shared.CodeInsufficientStock, fmt.Sprintf("Only %d item(s) in stock", available))
}
