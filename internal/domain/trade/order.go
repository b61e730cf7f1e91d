package trade

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// AllOrderStatuses lists every order status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered:
		return target == OrderStatusRefunded
	}
	return false
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid checks if the method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCard || m == PaymentMethodCashOnDelivery
}

// OrderItem is a snapshot of a product line at checkout
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"column:sku;type:varchar(64);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	ImageURL  string          `gorm:"type:varchar(500)"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Order is a placed customer order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_orders_number"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null"`
	PaymentIntentID string          `gorm:"type:varchar(100);index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	ShippingAddress ShippingAddress `gorm:"type:jsonb;not null"`
	Notes           string          `gorm:"type:text"`
	CancelReason    string          `gorm:"type:varchar(500)"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// GenerateOrderNumber returns a human-friendly unique order number such as
// ORD-20260102-7F3A9C
func GenerateOrderNumber(now time.Time) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("ORD-%s-%X", now.UTC().Format("20060102"), b)
}

// Pricing holds the amounts that complete an order subtotal
type Pricing struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal // fraction, e.g. 0.08
	Currency              string
}

// NewOrder creates a pending order for a customer
func NewOrder(userID uuid.UUID, address ShippingAddress, method PaymentMethod, notes string) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Unsupported payment method: %s", method)
	}
	address = address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if len(notes) > 1000 {
		return nil, shared.NewValidationError("Notes cannot exceed 1000 characters")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       GenerateOrderNumber(time.Now()),
		UserID:            userID,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusPending,
		PaymentMethod:     method,
		ShippingAddress:   address,
		Notes:             strings.TrimSpace(notes),
		Items:             make([]OrderItem, 0),
		Subtotal:          decimal.Zero,
		ShippingFee:       decimal.Zero,
		Tax:               decimal.Zero,
		Total:             decimal.Zero,
	}
	return order, nil
}

// AddItem appends a product snapshot line
func (o *Order) AddItem(productID uuid.UUID, sku, name, imageURL string, unitPrice decimal.Decimal, quantity int) error {
	if o.Status != OrderStatusPending {
		return shared.NewInvalidStateError("Cannot add items to an order in %s status", o.Status)
	}
	if productID == uuid.Nil {
		return shared.NewValidationError("Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	unitPrice = unitPrice.Round(2)
	o.Items = append(o.Items, OrderItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		SKU:       sku,
		Name:      name,
		ImageURL:  imageURL,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		CreatedAt: time.Now(),
	})
	return nil
}

// Place computes totals from pricing and records the order.placed event.
// It requires at least one item.
func (o *Order) Place(pricing Pricing) error {
	if len(o.Items) == 0 {
		return shared.ErrEmptyCart
	}
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal.Round(2)

	o.ShippingFee = pricing.ShippingFee.Round(2)
	if pricing.FreeShippingThreshold.IsPositive() && o.Subtotal.GreaterThanOrEqual(pricing.FreeShippingThreshold) {
		o.ShippingFee = decimal.Zero
	}
	o.Tax = o.Subtotal.Mul(pricing.TaxRate).Round(2)
	o.Total = o.Subtotal.Add(o.ShippingFee).Add(o.Tax).Round(2)
	o.Currency = strings.ToUpper(pricing.Currency)

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// TransitionTo moves the order to a new status following the lifecycle rules
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("Invalid order status: %s", target)
	}
	if target == OrderStatusCancelled {
		return o.Cancel("")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError("Cannot change order status from %s to %s", o.Status, target)
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	switch target {
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
		if o.PaymentMethod == PaymentMethodCashOnDelivery {
			o.markPaid(now)
		}
	case OrderStatusRefunded:
		if o.PaymentStatus == PaymentStatusPaid {
			o.PaymentStatus = PaymentStatusRefunded
		}
	}
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// Cancel cancels a pending or processing order. Callers restore stock
// for each line.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewInvalidStateError("Cannot cancel order in %s status", o.Status)
	}
	from := o.Status
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// AttachPaymentIntent stores the payment provider's intent ID
func (o *Order) AttachPaymentIntent(intentID string) {
	o.PaymentIntentID = intentID
	o.IncrementVersion()
}

// MarkPaymentSucceeded records a captured payment. A pending order moves to
// processing. Repeated notifications are no-ops.
func (o *Order) MarkPaymentSucceeded() error {
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewInvalidStateError("Cannot record payment for a cancelled order")
	}
	o.markPaid(time.Now())
	if o.Status == OrderStatusPending {
		return o.TransitionTo(OrderStatusProcessing)
	}
	o.IncrementVersion()
	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (o *Order) MarkPaymentFailed() {
	if o.PaymentStatus == PaymentStatusPaid {
		return
	}
	o.PaymentStatus = PaymentStatusFailed
	o.IncrementVersion()
}

func (o *Order) markPaid(at time.Time) {
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &at
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsTerminal returns true if no further transitions are possible
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusRefunded
}

// AmountInMinorUnits returns the total in cents for payment providers
func (o *Order) AmountInMinorUnits() int64 {
	return o.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
