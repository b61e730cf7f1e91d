package shopping

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItem(t *testing.T) {
	cart := NewCart(uuid.New())
	productID := uuid.New()

	_, err := cart.AddItem(productID, 2, decimal.NewFromFloat(9.99), 10)
	require.NoError(t, err)
	_, err = cart.AddItem(productID, 3, decimal.NewFromFloat(8.50), 10)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "42.5", cart.Subtotal().String())
	assert.Equal(t, 5, cart.ItemCount())
}

func TestCart_AddItem_StockAndBounds(t *testing.T) {
	cart := NewCart(uuid.New())
	productID := uuid.New()

	_, err := cart.AddItem(productID, 4, decimal.NewFromInt(1), 3)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	_, err = cart.AddItem(productID, 0, decimal.NewFromInt(1), 3)
	assert.Error(t, err)

	_, err = cart.AddItem(productID, 100, decimal.NewFromInt(1), 1000)
	assert.Error(t, err)

	_, err = cart.AddItem(productID, 3, decimal.NewFromInt(1), 3)
	require.NoError(t, err)
	_, err = cart.AddItem(productID, 1, decimal.NewFromInt(1), 3)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
}

func TestCart_UpdateAndRemove(t *testing.T) {
	cart := NewCart(uuid.New())
	a, b := uuid.New(), uuid.New()
	_, _ = cart.AddItem(a, 1, decimal.NewFromInt(10), 5)
	_, _ = cart.AddItem(b, 1, decimal.NewFromInt(20), 5)

	_, err := cart.UpdateQuantity(a, 4, decimal.NewFromInt(10), 5)
	require.NoError(t, err)
	item, ok := cart.Item(a)
	require.True(t, ok)
	assert.Equal(t, 4, item.Quantity)

	_, err = cart.UpdateQuantity(uuid.New(), 1, decimal.NewFromInt(1), 5)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, cart.RemoveItem(b))
	assert.Equal(t, []uuid.UUID{a}, cart.ProductIDs())

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Subtotal().IsZero())
}
