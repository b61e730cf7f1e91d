package catalog

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("normalizes sku and derives slug", func(t *testing.T) {
		p, err := NewProduct("  abc-123 ", "Trail Running Shoe", decimal.NewFromFloat(89.999))

		require.NoError(t, err)
		assert.Equal(t, "ABC-123", p.SKU)
		assert.Equal(t, "trail-running-shoe", p.Slug)
		assert.Equal(t, "90", p.Price.String())
		assert.Equal(t, ProductStatusDraft, p.Status)
		assert.Equal(t, DefaultLowStockThreshold, p.LowStockThreshold)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects invalid sku characters", func(t *testing.T) {
		_, err := NewProduct("ABC 123", "Shoe", decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("ABC", "Shoe", decimal.NewFromInt(-1))
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
	})

	t.Run("falls back to sku when name has no slug characters", func(t *testing.T) {
		p, err := NewProduct("X-1", "***", decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.Equal(t, "x-1", p.Slug)
	})
}

func TestProduct_Stock(t *testing.T) {
	p, err := NewProduct("SKU-1", "Mug", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(3))

	err = p.DecreaseStock(5)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, 3, p.Stock)

	require.NoError(t, p.DecreaseStock(2))
	assert.Equal(t, 1, p.Stock)
	assert.True(t, p.IsLowStock())

	require.NoError(t, p.IncreaseStock(10))
	assert.Equal(t, 11, p.Stock)
	assert.False(t, p.IsLowStock())

	assert.Error(t, p.SetStock(-1))
	assert.Error(t, p.DecreaseStock(0))
}

func TestProduct_Images(t *testing.T) {
	p, err := NewProduct("SKU-1", "Mug", decimal.NewFromInt(10))
	require.NoError(t, err)

	require.NoError(t, p.AddImages("a.jpg", "b.jpg"))
	assert.Equal(t, "a.jpg", p.PrimaryImage())

	require.NoError(t, p.RemoveImage("a.jpg"))
	assert.Equal(t, []string{"b.jpg"}, p.Images)
	assert.Error(t, p.RemoveImage("missing.jpg"))

	many := make([]string, MaxProductImages)
	assert.Error(t, p.AddImages(many...))
}

func TestProduct_IsPurchasable(t *testing.T) {
	p, err := NewProduct("SKU-1", "Mug", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(1))
	assert.False(t, p.IsPurchasable())

	require.NoError(t, p.SetStatus(ProductStatusActive))
	assert.True(t, p.IsPurchasable())

	assert.Error(t, p.SetStatus("deleted"))
}

func TestProduct_SetPricing(t *testing.T) {
	p, err := NewProduct("SKU-1", "Mug", decimal.NewFromInt(10))
	require.NoError(t, err)

	compareAt := decimal.NewFromFloat(14.999)
	require.NoError(t, p.SetPricing(decimal.NewFromFloat(12.5), &compareAt, decimal.NewFromInt(4)))
	assert.Equal(t, "12.5", p.Price.String())
	assert.Equal(t, "15", p.CompareAtPrice.String())

	assert.Error(t, p.SetPricing(decimal.NewFromInt(-1), nil, decimal.Zero))
}

func TestReview(t *testing.T) {
	productID, userID := uuid.New(), uuid.New()

	t.Run("valid review starts pending", func(t *testing.T) {
		r, err := NewReview(productID, userID, 5, " Great ", " Loved it ")
		require.NoError(t, err)
		assert.Equal(t, ReviewStatusPending, r.Status)
		assert.Equal(t, "Great", r.Title)
		assert.Equal(t, 1, r.Version)
		assert.True(t, r.IsOwnedBy(userID))
	})

	t.Run("rating bounds", func(t *testing.T) {
		_, err := NewReview(productID, userID, 0, "", "meh")
		assert.Error(t, err)
		_, err = NewReview(productID, userID, 6, "", "meh")
		assert.Error(t, err)
	})

	t.Run("editing resets moderation", func(t *testing.T) {
		r, err := NewReview(productID, userID, 4, "", "Good")
		require.NoError(t, err)
		require.NoError(t, r.Moderate(ReviewStatusApproved))
		require.NoError(t, r.Edit(3, "", "Okay"))
		assert.Equal(t, ReviewStatusPending, r.Status)
	})
}
