package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id::text, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(username, ''),
       password_hash, first_name, last_name, is_active, is_staff, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	// Identity fields are stored as NULL when empty so the unique indexes
	// only bite on real values.
	const q = `
INSERT INTO users (email, phone, username, password_hash, first_name, last_name, is_staff)
VALUES (NULLIF(lower($1), ''), NULLIF($2, ''), NULLIF(lower($3), ''), $4, $5, $6, $7)
RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, q,
		u.Email, u.Phone, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: create email=%s error=%v", u.Email, err)
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1
`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = lower($1) OR phone = $1 OR username = lower($1)
LIMIT 1
`
	return scanUser(r.pool.QueryRow(ctx, q, strings.TrimSpace(identifier)))
}

func (r *postgresRepo) InsertToken(ctx context.Context, t domain.AuthToken) error {
	const q = `
INSERT INTO auth_tokens (token, user_id, expires_at)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, t.Token, t.UserID, t.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) GetToken(ctx context.Context, token string) (*domain.AuthToken, *domain.User, error) {
	const q = `
SELECT t.token, t.user_id::text, t.expires_at, t.created_at,
       u.id::text, COALESCE(u.email, ''), COALESCE(u.phone, ''), COALESCE(u.username, ''),
       u.password_hash, u.first_name, u.last_name, u.is_active, u.is_staff, u.created_at
FROM auth_tokens t
JOIN users u ON u.id = t.user_id
WHERE t.token = $1
LIMIT 1
`
	var tok domain.AuthToken
	var u domain.User
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&tok.Token, &tok.UserID, &tok.ExpiresAt, &tok.CreatedAt,
		&u.ID, &u.Email, &u.Phone, &u.Username,
		&u.PasswordHash, &u.FirstName, &u.LastName, &u.IsActive, &u.IsStaff, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	return &tok, &u, nil
}

func (r *postgresRepo) DeleteToken(ctx context.Context, token string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n := cmd.RowsAffected()
	if n > 0 {
		r.logger.Printf("user repo: purged %d expired tokens", n)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsActive,
		&u.IsStaff,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
