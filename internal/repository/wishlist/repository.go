package wishlist

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

// Repository persists per-user wishlists. All write operations return the
// wishlist as it stands after the change, read inside the same transaction.
type Repository interface {
	// GetOrCreate returns the user's wishlist, creating an empty one on
	// first use.
	GetOrCreate(ctx context.Context, userID string) (*domain.Wishlist, error)

	// AddItem puts a product on the wishlist. The boolean reports whether
	// the product was newly added; re-adding an existing product is a
	// no-op.
	AddItem(ctx context.Context, userID, productID string) (*domain.Wishlist, bool, error)

	// RemoveItem takes a product off the wishlist. Removing a product
	// that is not on the list returns domain.ErrNotFound.
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error)

	// Clear removes every item from the wishlist.
	Clear(ctx context.Context, userID string) (*domain.Wishlist, error)
}
