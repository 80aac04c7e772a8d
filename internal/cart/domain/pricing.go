package domain

import "math"

// Pricing holds the flat-rate tax and shipping policy applied to carts and
// orders. The rates are deployment configuration, not catalog data.
type Pricing struct {
	TaxRate          float64
	ShippingFee      float64
	FreeShippingOver float64
}

// DefaultPricing returns the standard policy: 16% tax, flat shipping fee
// waived above the free-shipping threshold.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:          0.16,
		ShippingFee:      50,
		FreeShippingOver: 1000,
	}
}

// Totals is the monetary breakdown of a cart or order
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping_cost"`
	Total    float64 `json:"total"`
}

// Compute derives totals from a subtotal. Never cached: carts recompute on
// every read, orders freeze the result at creation time.
func (p Pricing) Compute(subtotal float64) Totals {
	if subtotal <= 0 {
		return Totals{}
	}

	tax := round2(subtotal * p.TaxRate)

	shipping := p.ShippingFee
	if p.FreeShippingOver > 0 && subtotal >= p.FreeShippingOver {
		shipping = 0
	}

	return Totals{
		Subtotal: round2(subtotal),
		Tax:      tax,
		Shipping: shipping,
		Total:    round2(subtotal + tax + shipping),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
