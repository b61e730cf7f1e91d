package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderFilter contains filter options for querying orders
type OrderFilter struct {
	UserID        *uuid.UUID
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	PaymentMethod *PaymentMethod
	// Search matches the order number
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// SalesBucket is revenue and order count for one time bucket
type SalesBucket struct {
	Period     time.Time       `json:"period"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int64           `json:"order_count"`
}

// TopProduct is a best-selling product over a period
type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesInterval is the bucket width of a sales report
type SalesInterval string

const (
	IntervalDay   SalesInterval = "day"
	IntervalWeek  SalesInterval = "week"
	IntervalMonth SalesInterval = "month"
)

// IsValid reports whether i is a supported interval
func (i SalesInterval) IsValid() bool {
	return i == IntervalDay || i == IntervalWeek || i == IntervalMonth
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	// Update saves order fields (not items) with an optimistic version check
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Analytics over orders created in [from, to)
	SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[OrderStatus]int64, error)
	SalesByInterval(ctx context.Context, from, to time.Time, interval SalesInterval) ([]SalesBucket, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}
