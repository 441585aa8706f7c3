package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	cart, err := fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// Merge with any existing line. The captured price stays the one from
	// the first add.
	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity, price_cents)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id) DO UPDATE SET
    quantity = cart_items.quantity + EXCLUDED.quantity,
    updated_at = now()
`, cartID, product.ID, quantity, product.PriceCents); err != nil {
		r.logger.Printf("cart repo: add item user_id=%s product_id=%s error=%v", userID, product.ID, err)
		return nil, err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	cart, err := fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("cart repo: added user_id=%s product_id=%s qty=%d", userID, product.ID, quantity)
	return cart, nil
}

func (r *postgresRepo) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $1, updated_at = now()
WHERE cart_id = $2 AND product_id = $3
`, quantity, cartID, productID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	cart, err := fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	cart, err := fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, err
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	cart, err := fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("cart repo: cleared user_id=%s", userID)
	return cart, nil
}

// ensureCart returns the id of the user's cart, creating the row on first
// use. The upsert keeps concurrent first-adds from racing on the unique
// user_id constraint.
func ensureCart(ctx context.Context, tx pgx.Tx, userID string) (string, error) {
	var cartID string
	err := tx.QueryRow(ctx, `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
RETURNING id::text
`, userID).Scan(&cartID)
	return cartID, err
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func fetchCart(ctx context.Context, tx pgx.Tx, cartID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := tx.QueryRow(ctx, `
SELECT id::text, user_id::text, created_at, updated_at
FROM carts
WHERE id = $1
`, cartID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT ci.id::text, ci.cart_id::text, ci.product_id::text, p.name, p.slug, p.image_url,
       ci.quantity, ci.price_cents, p.stock_quantity, p.is_active, ci.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC
`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.ProductName,
			&line.ProductSlug,
			&line.ImageURL,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.StockQuantity,
			&line.IsActive,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}
