package catalog

import "github.com/shopfront/backend/internal/domain/shared"

// AggregateTypeProduct is the aggregate type for products
const AggregateTypeProduct = "Product"

// Product domain event types
const (
	EventTypeProductCreated      = "product.created"
	EventTypeProductStockChanged = "product.stock_changed"
)

// ProductCreatedEvent is published when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		SKU:             p.SKU,
		Name:            p.Name,
	}
}

// ProductStockChangedEvent is published whenever on-hand stock changes
type ProductStockChangedEvent struct {
	shared.BaseDomainEvent
	SKU      string `json:"sku"`
	OldStock int    `json:"old_stock"`
	NewStock int    `json:"new_stock"`
	LowStock bool   `json:"low_stock"`
}

// NewProductStockChangedEvent creates a new ProductStockChangedEvent
func NewProductStockChangedEvent(p *Product, oldStock int) *ProductStockChangedEvent {
	return &ProductStockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockChanged, AggregateTypeProduct, p.ID),
		SKU:             p.SKU,
		OldStock:        oldStock,
		NewStock:        p.Stock,
		LowStock:        p.IsLowStock(),
	}
}
