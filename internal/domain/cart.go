package domain

import "time"

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Lines     []CartLine `json:"items,omitempty"`
}

// CartLine is one product row in a cart. UnitPriceCents is captured when the
// line is first added; the remaining product fields are joined in fresh at
// read time.
type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	ProductSlug    string    `json:"productSlug,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	StockQuantity  int       `json:"-"`
	IsActive       bool      `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SubtotalCents is the line total at the current unit price.
func (l CartLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// CartView is a cart plus the totals derived from its lines. ItemsCount is
// the number of distinct lines, TotalQuantity the summed quantities.
type CartView struct {
	Cart          Cart  `json:"cart"`
	ItemsCount    int   `json:"itemsCount"`
	TotalQuantity int   `json:"totalQuantity"`
	SubtotalCents int64 `json:"subtotalCents"`
}

// BuildCartView computes the aggregate totals for a cart.
func BuildCartView(c Cart) CartView {
	v := CartView{Cart: c, ItemsCount: len(c.Lines)}
	for _, l := range c.Lines {
		v.TotalQuantity += l.Quantity
		v.SubtotalCents += l.SubtotalCents()
	}
	return v
}
