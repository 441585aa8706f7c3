package cart

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

// Repository persists carts keyed by the owning user. Every mutation returns
// the cart as it stands after the change, read inside the same transaction.
type Repository interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}
