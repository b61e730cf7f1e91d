package site

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSettings_Apply(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Apply(Patch{
		StoreName:   ptr("  Corner Shop "),
		Currency:    ptr("eur"),
		TaxRate:     ptr(decimal.NewFromFloat(0.2)),
		ShippingFee: ptr(decimal.NewFromFloat(4.999)),
	}))
	assert.Equal(t, "Corner Shop", s.StoreName)
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, "5", s.ShippingFee.String())

	t.Run("invalid patch leaves settings untouched", func(t *testing.T) {
		err := s.Apply(Patch{
			StoreName: ptr("Other"),
			TaxRate:   ptr(decimal.NewFromInt(2)),
		})
		assert.Error(t, err)
		assert.Equal(t, "Corner Shop", s.StoreName)
	})

	assert.Error(t, s.Apply(Patch{Currency: ptr("EURO")}))
	assert.Error(t, s.Apply(Patch{SupportEmail: ptr("nope")}))
	require.NoError(t, s.Apply(Patch{SupportEmail: ptr("")}))
}

func TestSettings_Public(t *testing.T) {
	s := DefaultSettings()
	s.TaxRate = decimal.NewFromFloat(0.1)
	pub := s.Public()
	assert.Equal(t, s.StoreName, pub.StoreName)
	assert.Equal(t, s.Currency, pub.Currency)
}
