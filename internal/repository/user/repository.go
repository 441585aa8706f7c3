package user

import (
	"context"
	"time"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

// Repository persists accounts and their bearer tokens.
type Repository interface {
	// Create inserts the account. A duplicate email, phone or username
	// returns domain.ErrAlreadyExists.
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByLogin resolves an identifier against email, phone and username,
	// email and username case-insensitively.
	GetByLogin(ctx context.Context, identifier string) (*domain.User, error)

	InsertToken(ctx context.Context, t domain.AuthToken) error
	// GetToken returns the token row together with its owner.
	GetToken(ctx context.Context, token string) (*domain.AuthToken, *domain.User, error)
	DeleteToken(ctx context.Context, token string) error
	// DeleteExpiredTokens removes every token past the given time and
	// reports how many went.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
