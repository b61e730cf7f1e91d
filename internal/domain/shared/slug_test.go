package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running Shoes", "running-shoes"},
		{"  Café  Crème ", "cafe-creme"},
		{"Men's T-Shirt (XL)", "men-s-t-shirt-xl"},
		{"---", ""},
		{"Äpfel & Birnen", "apfel-birnen"},
		{"4K TV 55\"", "4k-tv-55"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("summer-sale"))
	assert.False(t, IsValidSlug("Summer Sale"))
	assert.False(t, IsValidSlug(""))
}
