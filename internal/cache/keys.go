package cache

import "strings"

// Key builders shared by the services. Every writer invalidates exactly the
// keys its entity can appear under, so readers never serve stale data.

// CartKey caches the assembled cart view for a user.
func CartKey(userID string) string {
	return "cart_user_" + userID
}

// OrderKey caches a single order looked up by its public number. The number
// is uppercased so case-insensitive lookups and invalidation land on the
// same key.
func OrderKey(orderNumber string) string {
	return "order_" + strings.ToUpper(orderNumber)
}

// UserOrdersKey caches a user's order list.
func UserOrdersKey(userID string) string {
	return "orders_user_" + userID
}

// WishlistKey caches the assembled wishlist view for a user.
func WishlistKey(userID string) string {
	return "wishlist_user_" + userID
}

// PaymentConfigKey caches gateway configuration, which changes rarely.
func PaymentConfigKey(gateway string) string {
	return "payment_config_" + gateway
}

// ProductsKey caches the active catalog listing. Catalog writes happen in
// the seed and importer binaries, so freshness here is TTL-bounded rather
// than invalidation-driven.
func ProductsKey() string {
	return "products_active"
}
