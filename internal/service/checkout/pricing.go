package checkout

import "github.com/shopspring/decimal"

// PricingPolicy fixes how order totals derive from the item subtotal. Tax
// is a fraction of the subtotal, shipping is a flat rate per order and is
// waived once the subtotal reaches FreeShippingOverCents (0 disables the
// waiver).
type PricingPolicy struct {
	TaxRate               decimal.Decimal
	ShippingCents         int64
	FreeShippingOverCents int64
}

// Totals are the priced components of an order, all in cents.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	DiscountCents int64
	TotalCents    int64
}

// Price derives the order totals for an item subtotal. Tax is rounded half
// up to the nearest cent.
func (p PricingPolicy) Price(subtotalCents int64) Totals {
	tax := decimal.NewFromInt(subtotalCents).Mul(p.TaxRate).Round(0).IntPart()
	shipping := p.ShippingCents
	if p.FreeShippingOverCents > 0 && subtotalCents >= p.FreeShippingOverCents {
		shipping = 0
	}
	t := Totals{
		SubtotalCents: subtotalCents,
		TaxCents:      tax,
		ShippingCents: shipping,
	}
	t.TotalCents = t.SubtotalCents + t.TaxCents + t.ShippingCents - t.DiscountCents
	return t
}
