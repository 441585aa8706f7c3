package order

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

// TransitionInput moves an order between statuses. From guards against
// concurrent transitions: the update only applies while the order is still
// in that status.
type TransitionInput struct {
	OrderID      string
	From         domain.OrderStatus
	To           domain.OrderStatus
	Notes        string
	RestoreStock bool
}

type Repository interface {
	// Create persists the order and its items, decrements stock for every
	// line and removes the purchased products from the user's cart, all in
	// one transaction. A line that cannot be satisfied aborts the whole
	// order with a StockError.
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListAll returns every order, newest first. Staff listing.
	ListAll(ctx context.Context) ([]domain.Order, error)
	TransitionStatus(ctx context.Context, in TransitionInput) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
}
