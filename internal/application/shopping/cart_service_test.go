package shopping

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shopping"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type shoppingFixture struct {
	carts     *testutil.MockCartRepository
	wishlists *testutil.MockWishlistRepository
	products  *testutil.MockProductRepository
	cart      *CartService
	wishlist  *WishlistService
}

func newShoppingFixture() *shoppingFixture {
	f := &shoppingFixture{
		carts:     new(testutil.MockCartRepository),
		wishlists: new(testutil.MockWishlistRepository),
		products:  new(testutil.MockProductRepository),
	}
	f.cart = NewCartService(f.carts, f.products, zap.NewNop())
	f.wishlist = NewWishlistService(f.wishlists, f.products, f.cart, zap.NewNop())
	return f
}

func product(t *testing.T, sku, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, decimal.RequireFromString(price))
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(catalog.ProductStatusActive))
	require.NoError(t, p.SetStock(stock))
	return p
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestCartService_GetWithoutCart(t *testing.T) {
	ctx := context.Background()
	f := newShoppingFixture()
	userID := uuid.New()
	f.carts.On("FindByUser", ctx, userID).Return(nil, shared.NewNotFoundError("Cart"))

	resp, err := f.cart.Get(ctx, userID)

	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Subtotal.IsZero())
	f.products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("merges lines and computes totals", func(t *testing.T) {
		f := newShoppingFixture()
		p := product(t, "MUG", "12.50", 10)
		cart := shopping.NewCart(userID)
		_, err := cart.AddItem(p.ID, 1, p.Price, p.Stock)
		require.NoError(t, err)

		f.products.On("FindByID", ctx, p.ID).Return(p, nil)
		f.carts.On("FindByUser", ctx, userID).Return(cart, nil)
		f.carts.On("Save", ctx, cart).Return(nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{p.ID}).Return([]*catalog.Product{p}, nil)

		resp, err := f.cart.AddItem(ctx, userID, AddCartItemInput{ProductID: p.ID, Quantity: 2})

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 3, resp.ItemCount)
		assert.Equal(t, "37.5", resp.Subtotal.String())
		assert.True(t, resp.Items[0].Available)
	})

	t.Run("beyond stock is rejected", func(t *testing.T) {
		f := newShoppingFixture()
		p := product(t, "LAMP", "40", 2)
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)
		f.carts.On("FindByUser", ctx, userID).Return(shopping.NewCart(userID), nil)

		_, err := f.cart.AddItem(ctx, userID, AddCartItemInput{ProductID: p.ID, Quantity: 3})

		assertCode(t, err, shared.CodeInsufficientStock)
		f.carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("draft product looks missing", func(t *testing.T) {
		f := newShoppingFixture()
		p := product(t, "HIDDEN", "5", 5)
		require.NoError(t, p.SetStatus(catalog.ProductStatusDraft))
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := f.cart.AddItem(ctx, userID, AddCartItemInput{ProductID: p.ID, Quantity: 1})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestCartService_UpdateMissingLine(t *testing.T) {
	ctx := context.Background()
	f := newShoppingFixture()
	userID := uuid.New()
	f.carts.On("FindByUser", ctx, userID).Return(shopping.NewCart(userID), nil)

	_, err := f.cart.UpdateItem(ctx, userID, uuid.New(), UpdateCartItemInput{Quantity: 2})

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestWishlistService_AddDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	f := newShoppingFixture()
	userID := uuid.New()
	p := product(t, "BOOK", "9", 3)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)
	f.wishlists.On("Exists", ctx, userID, p.ID).Return(true, nil)

	_, err := f.wishlist.Add(ctx, userID, AddWishlistInput{ProductID: p.ID})

	assertCode(t, err, shared.CodeAlreadyExists)
}

func TestWishlistService_MoveToCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("moves the product", func(t *testing.T) {
		f := newShoppingFixture()
		p := product(t, "PEN", "2", 50)
		cart := shopping.NewCart(userID)
		f.wishlists.On("Exists", ctx, userID, p.ID).Return(true, nil)
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)
		f.carts.On("FindByUser", ctx, userID).Return(cart, nil)
		f.carts.On("Save", ctx, cart).Return(nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{p.ID}).Return([]*catalog.Product{p}, nil)
		f.wishlists.On("Delete", ctx, userID, p.ID).Return(nil)

		resp, err := f.wishlist.MoveToCart(ctx, userID, p.ID, MoveToCartInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.ItemCount)
		f.wishlists.AssertExpectations(t)
	})

	t.Run("out of stock keeps the wishlist entry", func(t *testing.T) {
		f := newShoppingFixture()
		p := product(t, "RARE", "99", 0)
		f.wishlists.On("Exists", ctx, userID, p.ID).Return(true, nil)
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)
		f.carts.On("FindByUser", ctx, userID).Return(shopping.NewCart(userID), nil)

		_, err := f.wishlist.MoveToCart(ctx, userID, p.ID, MoveToCartInput{Quantity: 1})

		assertCode(t, err, shared.CodeInsufficientStock)
		f.wishlists.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
