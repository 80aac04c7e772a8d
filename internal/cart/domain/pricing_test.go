package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	pricing := DefaultPricing()

	tests := []struct {
		name     string
		subtotal float64
		want     Totals
	}{
		{
			name:     "empty cart has zero totals",
			subtotal: 0,
			want:     Totals{},
		},
		{
			name:     "below free shipping threshold",
			subtotal: 200,
			want:     Totals{Subtotal: 200, Tax: 32, Shipping: 50, Total: 282},
		},
		{
			name:     "at free shipping threshold",
			subtotal: 1000,
			want:     Totals{Subtotal: 1000, Tax: 160, Shipping: 0, Total: 1160},
		},
		{
			name:     "above free shipping threshold",
			subtotal: 1500,
			want:     Totals{Subtotal: 1500, Tax: 240, Shipping: 0, Total: 1740},
		},
		{
			name:     "tax rounded to cents",
			subtotal: 99.99,
			want:     Totals{Subtotal: 99.99, Tax: 16, Shipping: 50, Total: 165.99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.Compute(tt.subtotal))
		})
	}
}

func TestCartSubtotal(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: 100},
		{ProductID: 2, Quantity: 1, UnitPrice: 49.5},
	}}

	assert.Equal(t, 249.5, cart.Subtotal())
	assert.Equal(t, 3, cart.TotalItems())
	assert.False(t, cart.IsEmpty())
}
