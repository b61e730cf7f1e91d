package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	orders    *testutil.MockOrderRepository
	products  *testutil.MockProductRepository
	gateway   *mockGateway
	publisher *testutil.RecordingPublisher
	service   *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(testutil.MockOrderRepository),
		products:  new(testutil.MockProductRepository),
		gateway:   new(mockGateway),
		publisher: &testutil.RecordingPublisher{},
	}
	f.service = NewOrderService(f.orders, f.products, f.gateway, &testutil.InlineTxManager{}, f.publisher, zap.NewNop())
	return f
}

// placedOrder builds a placed order for userID with one line per product
func placedOrder(t *testing.T, userID uuid.UUID, method trade.PaymentMethod, lines map[*catalog.Product]int) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(userID, address().toDomain(), method, "")
	require.NoError(t, err)
	for p, qty := range lines {
		require.NoError(t, order.AddItem(p.ID, p.SKU, p.Name, "", p.Price, qty))
	}
	require.NoError(t, order.Place(trade.Pricing{Currency: "usd", TaxRate: decimal.Zero}))
	order.ClearDomainEvents()
	return order
}

func TestOrderService_GetMineHidesOtherCustomers(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	order := placedOrder(t, uuid.New(), trade.PaymentMethodCashOnDelivery, map[*catalog.Product]int{stocked(t, "A", "1", 1): 1})
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

	_, err := f.service.GetMine(ctx, uuid.New(), order.ID)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestOrderService_CancelMineRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	userID := uuid.New()
	mug := stocked(t, "MUG", "20", 3)
	order := placedOrder(t, userID, trade.PaymentMethodCashOnDelivery, map[*catalog.Product]int{mug: 2})

	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("Update", ctx, order).Return(nil)
	f.products.On("FindByIDsForUpdate", ctx, []uuid.UUID{mug.ID}).Return([]*catalog.Product{mug}, nil)
	f.products.On("Update", ctx, mug).Return(nil)

	resp, err := f.service.CancelMine(ctx, userID, order.ID, CancelOrderInput{Reason: "changed my mind"})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "changed my mind", resp.CancelReason)
	assert.Equal(t, 5, mug.Stock)
	assert.Contains(t, f.publisher.Types(), trade.EventTypeOrderCancelled)
	assert.Contains(t, f.publisher.Types(), catalog.EventTypeProductStockChanged)
	f.gateway.AssertNotCalled(t, "CancelPaymentIntent", mock.Anything, mock.Anything)
}

func TestOrderService_CancelVoidsUnpaidIntent(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	userID := uuid.New()
	mug := stocked(t, "MUG", "20", 3)
	order := placedOrder(t, userID, trade.PaymentMethodCard, map[*catalog.Product]int{mug: 1})
	order.AttachPaymentIntent("pi_9")

	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("Update", ctx, order).Return(nil)
	f.products.On("FindByIDsForUpdate", ctx, mock.Anything).Return([]*catalog.Product{mug}, nil)
	f.products.On("Update", ctx, mug).Return(nil)
	f.gateway.On("CancelPaymentIntent", ctx, "pi_9").Return(nil)

	_, err := f.service.CancelMine(ctx, userID, order.ID, CancelOrderInput{})

	require.NoError(t, err)
	f.gateway.AssertExpectations(t)
}

func TestOrderService_CancelShippedOrderFails(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	userID := uuid.New()
	order := placedOrder(t, userID, trade.PaymentMethodCashOnDelivery, map[*catalog.Product]int{stocked(t, "B", "1", 1): 1})
	require.NoError(t, order.TransitionTo(trade.OrderStatusProcessing))
	require.NoError(t, order.TransitionTo(trade.OrderStatusShipped))
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

	_, err := f.service.CancelMine(ctx, userID, order.ID, CancelOrderInput{})

	assertCode(t, err, shared.CodeInvalidState)
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "FindByIDsForUpdate", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("ship a processing order", func(t *testing.T) {
		f := newOrderFixture()
		order := placedOrder(t, uuid.New(), trade.PaymentMethodCashOnDelivery, map[*catalog.Product]int{stocked(t, "C", "1", 1): 1})
		require.NoError(t, order.TransitionTo(trade.OrderStatusProcessing))
		order.ClearDomainEvents()
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("Update", ctx, order).Return(nil)

		resp, err := f.service.UpdateStatus(ctx, order.ID, UpdateOrderStatusInput{Status: "shipped"})

		require.NoError(t, err)
		assert.Equal(t, "shipped", resp.Status)
		assert.NotNil(t, resp.ShippedAt)
		assert.Equal(t, []string{trade.EventTypeOrderStatusChanged}, f.publisher.Types())
	})

	t.Run("skipping a step is rejected", func(t *testing.T) {
		f := newOrderFixture()
		order := placedOrder(t, uuid.New(), trade.PaymentMethodCashOnDelivery, map[*catalog.Product]int{stocked(t, "D", "1", 1): 1})
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.UpdateStatus(ctx, order.ID, UpdateOrderStatusInput{Status: "delivered"})

		assertCode(t, err, shared.CodeInvalidState)
	})

	t.Run("stale write surfaces a conflict", func(t *testing.T) {
		f := newOrderFixture()
		order := placedOrder(t, uuid.New(), trade.PaymentMethodCashOnDelivery, map[*catalog.Product]int{stocked(t, "E", "1", 1): 1})
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("Update", ctx, order).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.UpdateStatus(ctx, order.ID, UpdateOrderStatusInput{Status: "processing"})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, f.publisher.Types())
	})
}

func TestOrderService_AdminListFilters(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("FindAll", ctx, mock.MatchedBy(func(filter trade.OrderFilter) bool {
		return filter.Status != nil && *filter.Status == trade.OrderStatusPending &&
			filter.PaymentStatus != nil && *filter.PaymentStatus == trade.PaymentStatusPaid &&
			filter.To != nil && filter.To.Day() == 2 && filter.UserID == nil
	})).Return([]*trade.Order{}, int64(0), nil)

	page, err := f.service.AdminList(ctx, OrderListQuery{Status: "pending", PaymentStatus: "paid", From: "2026-03-01", To: "2026-03-01"})

	require.NoError(t, err)
	assert.Equal(t, 20, page.PageSize)
}

func TestParseRange(t *testing.T) {
	_, _, err := parseRange("2026-05-02", "2026-05-01")
	assertCode(t, err, shared.CodeValidation)

	_, _, err = parseRange("yesterday", "")
	assertCode(t, err, shared.CodeValidation)

	from, to, err := parseRange("", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestOrderService_ExpireAbandoned(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	mug := stocked(t, "MUG", "20", 0)
	stale := placedOrder(t, uuid.New(), trade.PaymentMethodCard, map[*catalog.Product]int{mug: 2})
	stale.AttachPaymentIntent("pi_stale")
	paid := placedOrder(t, uuid.New(), trade.PaymentMethodCard, map[*catalog.Product]int{mug: 1})
	require.NoError(t, paid.MarkPaymentSucceeded())

	f.orders.On("FindAll", ctx, mock.MatchedBy(func(filter trade.OrderFilter) bool {
		return *filter.Status == trade.OrderStatusPending &&
			*filter.PaymentStatus == trade.PaymentStatusPending &&
			*filter.PaymentMethod == trade.PaymentMethodCard &&
			filter.To != nil && filter.To.Before(time.Now().Add(-23*time.Hour))
	})).Return([]*trade.Order{stale, paid}, int64(2), nil)
	f.orders.On("FindByID", ctx, stale.ID).Return(stale, nil)
	f.orders.On("FindByID", ctx, paid.ID).Return(paid, nil)
	f.orders.On("Update", ctx, stale).Return(nil)
	f.products.On("FindByIDsForUpdate", ctx, []uuid.UUID{mug.ID}).Return([]*catalog.Product{mug}, nil)
	f.products.On("Update", ctx, mug).Return(nil)
	f.gateway.On("CancelPaymentIntent", ctx, "pi_stale").Return(nil)

	n, err := f.service.ExpireAbandoned(ctx, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, trade.OrderStatusCancelled, stale.Status)
	assert.Equal(t, 2, mug.Stock)
	f.orders.AssertNotCalled(t, "Update", ctx, paid)
	f.gateway.AssertExpectations(t)
}
