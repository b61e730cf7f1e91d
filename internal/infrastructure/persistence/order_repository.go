package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts an order together with its items
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return translate(conn(ctx, r.db).Create(order).Error, "Order")
}

// Update saves the order row. Items are immutable after checkout. The write
// only applies while the stored version matches the one the order was loaded
// at, so a stale copy cannot overwrite a newer state.
func (r *GormOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	result := conn(ctx, r.db).Model(&trade.Order{}).
		Where("id = ? AND version = ?", order.ID, order.PersistedVersion()).
		Select("*").Omit("Items", "id", "created_at").
		Updates(order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	order.MarkPersisted()
	return nil
}

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.withItems(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Order")
	}
	return &order, nil
}

// FindByPaymentIntent loads the order paid through a payment intent
func (r *GormOrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*trade.Order, error) {
	var order trade.Order
	if err := r.withItems(ctx).First(&order, "payment_intent_id = ?", intentID).Error; err != nil {
		return nil, translate(err, "Order")
	}
	return &order, nil
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

// FindAll finds orders newest first, with items
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]*trade.Order, int64, error) {
	query := conn(ctx, r.db).Model(&trade.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(order_number) LIKE ?"+likeEscape, likePattern(filter.Search))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []*trade.Order
	err := paginate(query.Order("created_at DESC"), filter.Page, filter.PageSize).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// HasPurchased reports whether the user has a paid or delivered order
// containing the product
func (r *GormOrderRepository) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Where("o.user_id = ? AND oi.product_id = ?", userID, productID).
		Where("(o.payment_status = ? OR o.status = ?)", trade.PaymentStatusPaid, trade.OrderStatusDelivered).
		Where("o.status NOT IN ?", []trade.OrderStatus{trade.OrderStatusCancelled, trade.OrderStatusRefunded}).
		Count(&count).Error
	return count > 0, err
}

// SumRevenue returns revenue and count of paid orders created in [from, to)
func (r *GormOrderRepository) SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Revenue decimal.Decimal
		Orders  int64
	}
	err := conn(ctx, r.db).Model(&trade.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS orders").
		Where("payment_status = ?", trade.PaymentStatusPaid).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Revenue.Round(2), row.Orders, nil
}

// CountByStatus counts orders created in [from, to) per status. Every
// status is present in the result.
func (r *GormOrderRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[trade.OrderStatus]int64, error) {
	var rows []struct {
		Status trade.OrderStatus
		Total  int64
	}
	err := conn(ctx, r.db).Model(&trade.Order{}).
		Select("status, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[trade.OrderStatus]int64, len(trade.AllOrderStatuses))
	for _, s := range trade.AllOrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// SalesByInterval buckets paid orders created in [from, to). PostgreSQL
// buckets with date_trunc. Other dialects bucket in Go.
func (r *GormOrderRepository) SalesByInterval(ctx context.Context, from, to time.Time, interval trade.SalesInterval) ([]trade.SalesBucket, error) {
	db := conn(ctx, r.db)
	if db.Dialector.Name() == "postgres" {
		var buckets []trade.SalesBucket
		err := db.Model(&trade.Order{}).
			Select("date_trunc(?, created_at) AS period, COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS order_count", string(interval)).
			Where("payment_status = ?", trade.PaymentStatusPaid).
			Where("created_at >= ? AND created_at < ?", from, to).
			Group("period").
			Order("period ASC").
			Scan(&buckets).Error
		if err != nil {
			return nil, err
		}
		return buckets, nil
	}

	var rows []struct {
		CreatedAt time.Time
		Total     decimal.Decimal
	}
	err := db.Model(&trade.Order{}).
		Select("created_at, total").
		Where("payment_status = ?", trade.PaymentStatusPaid).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	buckets := make([]trade.SalesBucket, 0)
	for _, row := range rows {
		period := TruncateToInterval(row.CreatedAt, interval)
		if n := len(buckets); n > 0 && buckets[n-1].Period.Equal(period) {
			buckets[n-1].Revenue = buckets[n-1].Revenue.Add(row.Total)
			buckets[n-1].OrderCount++
			continue
		}
		buckets = append(buckets, trade.SalesBucket{Period: period, Revenue: row.Total, OrderCount: 1})
	}
	return buckets, nil
}

// TruncateToInterval returns the UTC start of the day, ISO week (Monday) or
// month containing t
func TruncateToInterval(t time.Time, interval trade.SalesInterval) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch interval {
	case trade.IntervalWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case trade.IntervalMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return day
}

// TopProducts ranks products by units sold in paid orders created in [from, to)
func (r *GormOrderRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]trade.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var top []trade.TopProduct
	err := conn(ctx, r.db).Table("order_items AS oi").
		Select("oi.product_id AS product_id, MAX(oi.sku) AS sku, MAX(oi.name) AS name, SUM(oi.quantity) AS units_sold, SUM(oi.line_total) AS revenue").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Where("o.payment_status = ?", trade.PaymentStatusPaid).
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Group("oi.product_id").
		Order("units_sold DESC, revenue DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	return top, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
