package telemetry

import (
	"context"
	"fmt"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ShopMetrics records storefront business metrics. It subscribes to the
// event bus for order events.
type ShopMetrics struct {
	ordersPlaced    metric.Int64Counter
	orderRevenue    metric.Float64Counter
	ordersCancelled metric.Int64Counter
	statusChanges   metric.Int64Counter
	rateLimited     metric.Int64Counter
}

// LowStockCounter reports the current number of low-stock products
type LowStockCounter func(ctx context.Context) (int64, error)

// NewShopMetrics creates the instruments on meter. When lowStock is set it
// is polled on every collection.
func NewShopMetrics(meter metric.Meter, lowStock LowStockCounter) (*ShopMetrics, error) {
	var (
		m   ShopMetrics
		err error
	)
	if m.ordersPlaced, err = meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders created at checkout")); err != nil {
		return nil, fmt.Errorf("orders placed counter: %w", err)
	}
	if m.orderRevenue, err = meter.Float64Counter("shop.orders.revenue",
		metric.WithDescription("Order totals at checkout")); err != nil {
		return nil, fmt.Errorf("order revenue counter: %w", err)
	}
	if m.ordersCancelled, err = meter.Int64Counter("shop.orders.cancelled"); err != nil {
		return nil, fmt.Errorf("orders cancelled counter: %w", err)
	}
	if m.statusChanges, err = meter.Int64Counter("shop.orders.status_changes"); err != nil {
		return nil, fmt.Errorf("status change counter: %w", err)
	}
	if m.rateLimited, err = meter.Int64Counter("shop.http.rate_limited",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("rate limited counter: %w", err)
	}

	if lowStock != nil {
		gauge, err := meter.Int64ObservableGauge("shop.products.low_stock")
		if err != nil {
			return nil, fmt.Errorf("low stock gauge: %w", err)
		}
		_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			n, err := lowStock(ctx)
			if err != nil {
				return err
			}
			o.ObserveInt64(gauge, n)
			return nil
		}, gauge)
		if err != nil {
			return nil, fmt.Errorf("low stock callback: %w", err)
		}
	}
	return &m, nil
}

// Handle implements shared.EventHandler
func (m *ShopMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		attrs := metric.WithAttributes(
			attribute.String("payment_method", string(e.PaymentMethod)),
			attribute.String("currency", e.Currency),
		)
		m.ordersPlaced.Add(ctx, 1, attrs)
		m.orderRevenue.Add(ctx, e.Total.InexactFloat64(), attrs)
	case *trade.OrderCancelledEvent:
		m.ordersCancelled.Add(ctx, 1)
	case *trade.OrderStatusChangedEvent:
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(e.From)),
			attribute.String("to", string(e.To)),
		))
	}
	return nil
}

// RecordRateLimited counts a rejected request for the limiter scope
func (m *ShopMetrics) RecordRateLimited(ctx context.Context, scope string) {
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}

// OrderEventTypes are the events ShopMetrics subscribes to
var OrderEventTypes = []string{
	trade.EventTypeOrderPlaced,
	trade.EventTypeOrderCancelled,
	trade.EventTypeOrderStatusChanged,
}
