package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/site"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedSettings struct{}

func (fixedSettings) Current(context.Context) (*site.Settings, error) {
	return site.DefaultSettings(), nil
}

type orderFixture struct {
	carts  *testutil.MockCartRepository
	orders *testutil.MockOrderRepository
	token  string
	userID uuid.UUID
}

func newOrderEngine(t *testing.T) (*orderFixture, *gin.Engine) {
	t.Helper()
	log := zap.NewNop()
	jwtSvc := newTestJWT()
	f := &orderFixture{
		carts:  new(testutil.MockCartRepository),
		orders: new(testutil.MockOrderRepository),
	}
	products := new(testutil.MockProductRepository)
	tx := &testutil.InlineTxManager{}
	var payments tradeapp.PaymentGateway

	checkout := tradeapp.NewCheckoutService(f.carts, products, f.orders, new(testutil.MockUserRepository),
		fixedSettings{}, payments, tx, nil, log)
	orders := tradeapp.NewOrderService(f.orders, products, payments, tx, nil, log)
	h := NewOrderHandler(checkout, orders)

	r := newEngine()
	g := r.Group("/orders", middleware.CustomerAuth(jwtSvc, auth.NewInMemoryTokenBlacklist(), log))
	g.POST("/checkout", h.Checkout)
	g.GET("/:id", h.GetMine)

	f.token, f.userID = customerToken(t, jwtSvc)
	return f, r
}

func checkoutBody(method string) map[string]any {
	return map[string]any{
		"shipping_address": map[string]any{
			"full_name":   "Jane Doe",
			"line1":       "1 High Street",
			"city":        "London",
			"postal_code": "N1 1AA",
			"country":     "GB",
			"phone":       "+44 20 7946 0000",
		},
		"payment_method": method,
	}
}

func TestOrderHandler_Checkout(t *testing.T) {
	t.Run("rejects unknown payment method", func(t *testing.T) {
		f, r := newOrderEngine(t)

		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/orders/checkout", Headers: bearer(f.token),
			Body: checkoutBody("bitcoin"),
		})

		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, shared.CodeValidation)
		f.carts.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
	})

	t.Run("card without a payment provider", func(t *testing.T) {
		f, r := newOrderEngine(t)

		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/orders/checkout", Headers: bearer(f.token),
			Body: checkoutBody("card"),
		})

		testutil.AssertErrorResponse(t, w, http.StatusBadGateway, shared.CodePaymentUnavailable)
	})

	t.Run("empty cart", func(t *testing.T) {
		f, r := newOrderEngine(t)
		f.carts.On("FindByUser", mock.Anything, f.userID).Return(nil, shared.ErrNotFound)

		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/orders/checkout", Headers: bearer(f.token),
			Body: checkoutBody("cash_on_delivery"),
		})

		testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, shared.CodeEmptyCart)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_GetMine(t *testing.T) {
	f, r := newOrderEngine(t)
	order, err := trade.NewOrder(uuid.New(), trade.ShippingAddress{
		FullName: "Someone Else", Line1: "2 Low Road", City: "Leeds", PostalCode: "LS1", Country: "GB", Phone: "0113 000",
	}, trade.PaymentMethodCashOnDelivery, "")
	require.NoError(t, err)
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	w := testutil.Do(t, r, testutil.Request{Path: "/orders/" + order.ID.String(), Headers: bearer(f.token)})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, shared.CodeNotFound)

	w = testutil.Do(t, r, testutil.Request{Path: "/orders/not-a-uuid", Headers: bearer(f.token)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
