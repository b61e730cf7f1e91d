package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	shoppingapp "github.com/shopfront/backend/internal/application/shopping"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func activeProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("TEA-1", "Green Tea", decimal.RequireFromString("4.20"))
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(catalog.ProductStatusActive))
	p.ClearDomainEvents()
	return p
}

func TestWishlistHandler_Add(t *testing.T) {
	log := zap.NewNop()
	jwtSvc := newTestJWT()

	setup := func() (*testutil.MockWishlistRepository, *testutil.MockProductRepository, *WishlistHandler) {
		wishlist := new(testutil.MockWishlistRepository)
		products := new(testutil.MockProductRepository)
		carts := shoppingapp.NewCartService(new(testutil.MockCartRepository), products, log)
		return wishlist, products, NewWishlistHandler(shoppingapp.NewWishlistService(wishlist, products, carts, log))
	}

	t.Run("requires a customer", func(t *testing.T) {
		_, _, h := setup()
		r := newEngine()
		r.POST("/wishlist", middleware.CustomerAuth(jwtSvc, auth.NewInMemoryTokenBlacklist(), log), h.Add)

		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/wishlist",
			Body: map[string]any{"product_id": uuid.NewString()},
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("saves product", func(t *testing.T) {
		wishlist, products, h := setup()
		r := newEngine()
		r.POST("/wishlist", middleware.CustomerAuth(jwtSvc, auth.NewInMemoryTokenBlacklist(), log), h.Add)
		token, userID := customerToken(t, jwtSvc)
		p := activeProduct(t)
		products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		wishlist.On("Exists", mock.Anything, userID, p.ID).Return(false, nil)
		wishlist.On("Create", mock.Anything, mock.AnythingOfType("*shopping.WishlistItem")).Return(nil)

		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/wishlist", Headers: bearer(token),
			Body: map[string]any{"product_id": p.ID},
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		got := testutil.DecodeData[shoppingapp.WishlistItemResponse](t, w)
		assert.Equal(t, p.ID, got.ProductID)
		wishlist.AssertExpectations(t)
	})

	t.Run("already saved", func(t *testing.T) {
		wishlist, products, h := setup()
		r := newEngine()
		r.POST("/wishlist", middleware.CustomerAuth(jwtSvc, auth.NewInMemoryTokenBlacklist(), log), h.Add)
		token, userID := customerToken(t, jwtSvc)
		p := activeProduct(t)
		products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		wishlist.On("Exists", mock.Anything, userID, p.ID).Return(true, nil)

		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/wishlist", Headers: bearer(token),
			Body: map[string]any{"product_id": p.ID},
		})

		testutil.AssertErrorResponse(t, w, http.StatusConflict, shared.CodeAlreadyExists)
		wishlist.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
