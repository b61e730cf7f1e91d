// Package analytics builds the admin dashboard reports.
package analytics

import (
	"context"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWindow   = 30 * 24 * time.Hour
	defaultTopLimit = 10
	maxTopLimit     = 50
)

// CustomerCounter counts customer sign-ups
type CustomerCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// ProductCounter counts catalog products
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// RangeQuery bounds a report. Dates are YYYY-MM-DD or RFC 3339.
type RangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// SalesQuery is a bucketed sales report request
type SalesQuery struct {
	RangeQuery
	Interval string `form:"interval" binding:"omitempty,oneof=day week month"`
}

// TopProductsQuery is a best-sellers report request
type TopProductsQuery struct {
	RangeQuery
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// OverviewResponse is the dashboard summary
type OverviewResponse struct {
	From              time.Time                   `json:"from"`
	To                time.Time                   `json:"to"`
	Revenue           decimal.Decimal             `json:"revenue"`
	PaidOrders        int64                       `json:"paid_orders"`
	OrderCount        int64                       `json:"order_count"`
	AverageOrderValue decimal.Decimal             `json:"average_order_value"`
	NewCustomers      int64                       `json:"new_customers"`
	TotalProducts     int64                       `json:"total_products"`
	LowStockProducts  int64                       `json:"low_stock_products"`
	PendingOrders     int64                       `json:"pending_orders"`
	OrdersByStatus    map[trade.OrderStatus]int64 `json:"orders_by_status"`
}

// SalesResponse is a bucketed sales report
type SalesResponse struct {
	From     time.Time           `json:"from"`
	To       time.Time           `json:"to"`
	Interval string              `json:"interval"`
	Buckets  []trade.SalesBucket `json:"buckets"`
}

// TopProductsResponse lists best sellers
type TopProductsResponse struct {
	From     time.Time          `json:"from"`
	To       time.Time          `json:"to"`
	Products []trade.TopProduct `json:"products"`
}

// AnalyticsService computes dashboard reports
type AnalyticsService struct {
	orders    trade.OrderRepository
	customers CustomerCounter
	products  ProductCounter
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(orders trade.OrderRepository, customers CustomerCounter, products ProductCounter, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		orders:    orders,
		customers: customers,
		products:  products,
		logger:    logger,
		now:       time.Now,
	}
}

// Overview runs the dashboard queries concurrently. The first failure
// cancels the rest.
func (s *AnalyticsService) Overview(ctx context.Context, q RangeQuery) (*OverviewResponse, error) {
	from, to, err := s.window(q)
	if err != nil {
		return nil, err
	}
	resp := &OverviewResponse{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resp.Revenue, resp.PaidOrders, err = s.orders.SumRevenue(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		resp.OrdersByStatus, err = s.orders.CountByStatus(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		resp.NewCustomers, err = s.customers.CountCreatedBetween(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		resp.TotalProducts, err = s.products.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		resp.LowStockProducts, err = s.products.CountLowStock(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build analytics overview", zap.Error(err))
		return nil, err
	}

	for _, n := range resp.OrdersByStatus {
		resp.OrderCount += n
	}
	resp.PendingOrders = resp.OrdersByStatus[trade.OrderStatusPending]
	resp.AverageOrderValue = decimal.Zero
	if resp.PaidOrders > 0 {
		resp.AverageOrderValue = resp.Revenue.Div(decimal.NewFromInt(resp.PaidOrders)).Round(2)
	}
	return resp, nil
}

// Sales returns paid revenue and order counts per time bucket
func (s *AnalyticsService) Sales(ctx context.Context, q SalesQuery) (*SalesResponse, error) {
	from, to, err := s.window(q.RangeQuery)
	if err != nil {
		return nil, err
	}
	interval := trade.SalesInterval(q.Interval)
	if interval == "" {
		interval = trade.IntervalDay
	}
	if !interval.IsValid() {
		return nil, shared.NewValidationError("Unsupported interval: %s", q.Interval)
	}
	buckets, err := s.orders.SalesByInterval(ctx, from, to, interval)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []trade.SalesBucket{}
	}
	return &SalesResponse{From: from, To: to, Interval: string(interval), Buckets: buckets}, nil
}

// TopProducts returns the best sellers by units sold
func (s *AnalyticsService) TopProducts(ctx context.Context, q TopProductsQuery) (*TopProductsResponse, error) {
	from, to, err := s.window(q.RangeQuery)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	top, err := s.orders.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []trade.TopProduct{}
	}
	return &TopProductsResponse{From: from, To: to, Products: top}, nil
}

// window resolves the report range. Missing bounds default to the last 30
// days. A bare date for to includes that whole day.
func (s *AnalyticsService) window(q RangeQuery) (time.Time, time.Time, error) {
	to := s.now().UTC()
	if q.To != "" {
		t, err := parseDate(q.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if len(q.To) == len(time.DateOnly) {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}
	from := to.Add(-defaultWindow)
	if q.From != "" {
		t, err := parseDate(q.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, shared.NewValidationError("from must be before to")
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, shared.NewValidationError("Invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}
