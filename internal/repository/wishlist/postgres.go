package wishlist

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

func (r *postgresRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Wishlist, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	listID, err := ensureWishlist(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	list, err := fetchWishlist(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, userID, productID string) (*domain.Wishlist, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	listID, err := ensureWishlist(ctx, tx, userID)
	if err != nil {
		return nil, false, err
	}

	cmd, err := tx.Exec(ctx, `
INSERT INTO wishlist_items (wishlist_id, product_id)
VALUES ($1, $2)
ON CONFLICT (wishlist_id, product_id) DO NOTHING
`, listID, productID)
	if err != nil {
		r.logger.Printf("wishlist repo: add item user_id=%s product_id=%s error=%v", userID, productID, err)
		return nil, false, err
	}
	added := cmd.RowsAffected() > 0

	if added {
		if err := touchWishlist(ctx, tx, listID); err != nil {
			return nil, false, err
		}
	}
	list, err := fetchWishlist(ctx, tx, listID)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	if added {
		r.logger.Printf("wishlist repo: added user_id=%s product_id=%s", userID, productID)
	}
	return list, added, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	listID, err := ensureWishlist(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `
DELETE FROM wishlist_items
WHERE wishlist_id = $1 AND product_id = $2
`, listID, productID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := touchWishlist(ctx, tx, listID); err != nil {
		return nil, err
	}
	list, err := fetchWishlist(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) (*domain.Wishlist, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	listID, err := ensureWishlist(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1`, listID); err != nil {
		return nil, err
	}
	if err := touchWishlist(ctx, tx, listID); err != nil {
		return nil, err
	}
	list, err := fetchWishlist(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("wishlist repo: cleared user_id=%s", userID)
	return list, nil
}

func ensureWishlist(ctx context.Context, tx pgx.Tx, userID string) (string, error) {
	var listID string
	err := tx.QueryRow(ctx, `
INSERT INTO wishlists (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = wishlists.updated_at
RETURNING id::text
`, userID).Scan(&listID)
	return listID, err
}

func touchWishlist(ctx context.Context, tx pgx.Tx, listID string) error {
	_, err := tx.Exec(ctx, `UPDATE wishlists SET updated_at = now() WHERE id = $1`, listID)
	return err
}

// fetchWishlist joins product data in fresh so price and availability always
// reflect the catalog, not the moment the item was added.
func fetchWishlist(ctx context.Context, tx pgx.Tx, listID string) (*domain.Wishlist, error) {
	var list domain.Wishlist
	err := tx.QueryRow(ctx, `
SELECT id::text, user_id::text, created_at, updated_at
FROM wishlists
WHERE id = $1
`, listID).Scan(&list.ID, &list.UserID, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT wi.id::text, wi.wishlist_id::text, wi.product_id::text, p.name, p.slug,
       p.price_cents, p.image_url, p.stock_quantity, p.is_active, wi.added_at
FROM wishlist_items wi
JOIN products p ON p.id = wi.product_id
WHERE wi.wishlist_id = $1
ORDER BY wi.added_at DESC
`, list.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(
			&item.ID,
			&item.WishlistID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductSlug,
			&item.PriceCents,
			&item.ImageURL,
			&item.StockQuantity,
			&item.IsActive,
			&item.AddedAt,
		); err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &list, nil
}
