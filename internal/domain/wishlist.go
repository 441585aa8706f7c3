package domain

import "time"

// Wishlist is a user's single saved-products list.
type Wishlist struct {
	ID        string         `json:"id"`
	UserID    string         `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Items     []WishlistItem `json:"items,omitempty"`
}

// WishlistItem is one saved product. Product fields are joined in at read
// time so price and availability stay current.
type WishlistItem struct {
	ID            string    `json:"id"`
	WishlistID    string    `json:"wishlistId"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	ProductSlug   string    `json:"productSlug,omitempty"`
	PriceCents    int64     `json:"priceCents"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	StockQuantity int       `json:"-"`
	IsActive      bool      `json:"isActive"`
	AddedAt       time.Time `json:"addedAt"`
}
