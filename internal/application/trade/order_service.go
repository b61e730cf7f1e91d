package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService handles order queries and lifecycle changes
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	payments    PaymentGateway
	txManager   shared.TransactionManager
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService. payments may be nil.
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	payments PaymentGateway,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		payments:    payments,
		txManager:   txManager,
		publisher:   publisher,
		logger:      logger,
	}
}

// ListMine returns the customer's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, q OrderListQuery) (*shared.Paginated[OrderResponse], error) {
	filter := trade.OrderFilter{UserID: &userID}
	filter.Page, filter.PageSize = pageDefaults(q.Page, q.PageSize)
	return s.list(ctx, filter)
}

// GetMine returns one of the customer's orders. Orders of other customers
// are reported as missing.
func (s *OrderService) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelMine cancels a pending or processing order of the customer and
// puts its stock back
func (s *OrderService) CancelMine(ctx context.Context, userID, orderID uuid.UUID, input CancelOrderInput) (*OrderResponse, error) {
	if _, err := s.owned(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.changeStatus(ctx, orderID, func(o *trade.Order) error {
		return o.Cancel(input.Reason)
	})
}

// AdminList returns orders matching the admin filters
func (s *OrderService) AdminList(ctx context.Context, q OrderListQuery) (*shared.Paginated[OrderResponse], error) {
	filter := trade.OrderFilter{Search: q.Search}
	if q.Status != "" {
		status := trade.OrderStatus(q.Status)
		filter.Status = &status
	}
	if q.PaymentStatus != "" {
		ps := trade.PaymentStatus(q.PaymentStatus)
		filter.PaymentStatus = &ps
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to
	filter.Page, filter.PageSize = pageDefaults(q.Page, q.PageSize)
	return s.list(ctx, filter)
}

// AdminGet returns any order
func (s *OrderService) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus applies an admin status change. Cancelling restores stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateOrderStatusInput) (*OrderResponse, error) {
	target := trade.OrderStatus(input.Status)
	return s.changeStatus(ctx, orderID, func(o *trade.Order) error {
		if target == trade.OrderStatusCancelled {
			return o.Cancel(input.Reason)
		}
		return o.TransitionTo(target)
	})
}

// abandonedBatch bounds how many orders one expiry run cancels
const abandonedBatch = 100

// ExpireAbandoned cancels card orders whose payment never completed within
// maxAge of checkout, returning their stock. It reports how many orders were
// cancelled. Orders that changed concurrently are skipped.
func (s *OrderService) ExpireAbandoned(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	status := trade.OrderStatusPending
	payment := trade.PaymentStatusPending
	method := trade.PaymentMethodCard
	orders, _, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{
		Status:        &status,
		PaymentStatus: &payment,
		PaymentMethod: &method,
		To:            &cutoff,
		Page:          1,
		PageSize:      abandonedBatch,
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, o := range orders {
		_, err := s.changeStatus(ctx, o.ID, func(order *trade.Order) error {
			if order.PaymentStatus != trade.PaymentStatusPending {
				return shared.NewInvalidStateError("Order %s is no longer awaiting payment", order.OrderNumber)
			}
			return order.Cancel("payment not completed")
		})
		if err != nil {
			s.logger.Warn("Skipped abandoned order",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// changeStatus loads the order inside a transaction, applies change, and
// restores stock when the order ends up cancelled
func (s *OrderService) changeStatus(ctx context.Context, orderID uuid.UUID, change func(*trade.Order) error) (*OrderResponse, error) {
	var (
		order    *trade.Order
		restored []*catalog.Product
	)
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := change(order); err != nil {
			return err
		}
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		if order.Status == trade.OrderStatusCancelled {
			restored, err = s.restoreStock(txCtx, order)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order.Status == trade.OrderStatusCancelled && order.PaymentIntentID != "" &&
		order.PaymentStatus != trade.PaymentStatusPaid && s.payments != nil {
		if err := s.payments.CancelPaymentIntent(ctx, order.PaymentIntentID); err != nil {
			s.logger.Warn("Failed to cancel payment intent of cancelled order",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}

	s.publish(ctx, order, restored)
	s.logger.Info("Order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// restoreStock returns every line's quantity to its product. Products that
// were deleted since checkout are skipped.
func (s *OrderService) restoreStock(ctx context.Context, order *trade.Order) ([]*catalog.Product, error) {
	qty := make(map[uuid.UUID]int, len(order.Items))
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		if _, seen := qty[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		qty[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if err := p.IncreaseStock(qty[p.ID]); err != nil {
			return nil, err
		}
		if err := s.productRepo.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *OrderService) owned(ctx context.Context, userID, orderID uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, shared.NewNotFoundError("Order")
	}
	return order, nil
}

func (s *OrderService) list(ctx context.Context, filter trade.OrderFilter) (*shared.Paginated[OrderResponse], error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order, products []*catalog.Product) {
	aggs := []shared.AggregateRoot{order}
	for _, p := range products {
		aggs = append(aggs, p)
	}
	if err := shared.PublishPending(ctx, s.publisher, aggs...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}
}

// parseRange accepts dates as YYYY-MM-DD or RFC 3339. A bare date for to
// covers that whole day.
func parseRange(from, to string) (*time.Time, *time.Time, error) {
	var out [2]*time.Time
	for i, raw := range []string{from, to} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			out[i] = &t
			continue
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, nil, shared.NewValidationError("Invalid date %q, expected YYYY-MM-DD", raw)
		}
		if i == 1 {
			t = t.AddDate(0, 0, 1)
		}
		out[i] = &t
	}
	if out[0] != nil && out[1] != nil && !out[0].Before(*out[1]) {
		return nil, nil, shared.NewValidationError("from must be before to")
	}
	return out[0], out[1], nil
}
