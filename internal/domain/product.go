package domain

import "time"

type Product struct {
	ID                string    `json:"id"`
	Slug              string    `json:"slug"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	ShortDescription  string    `json:"shortDescription,omitempty"`
	Description       string    `json:"description,omitempty"`
	PriceCents        int64     `json:"priceCents"`
	ComparePriceCents *int64    `json:"comparePriceCents,omitempty"`
	Currency          string    `json:"currency"`
	StockQuantity     int       `json:"stockQuantity"`
	IsActive          bool      `json:"isActive"`
	IsFeatured        bool      `json:"isFeatured"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// InStock reports whether the product can satisfy the given quantity.
func (p Product) InStock(qty int) bool {
	return p.IsActive && p.StockQuantity >= qty
}

// DiscountPercent is the saving against the compare-at price, zero when no
// compare price is set or it is not higher than the sale price.
func (p Product) DiscountPercent() int {
	if p.ComparePriceCents == nil || *p.ComparePriceCents <= p.PriceCents {
		return 0
	}
	return int((*p.ComparePriceCents - p.PriceCents) * 100 / *p.ComparePriceCents)
}
