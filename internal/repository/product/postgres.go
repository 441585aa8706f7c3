package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, slug, sku, name, short_description, description, price_cents, compare_price_cents, currency, stock_quantity, is_active, is_featured, image_url, created_at, updated_at`

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE is_active
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result, err := scanProducts(rows)
	if err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	return r.getOne(ctx, q, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE slug = $1
`
	return r.getOne(ctx, q, slug)
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = ANY($1::uuid[])
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: get by ids error=%v", err)
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (slug, sku, name, short_description, description, price_cents, compare_price_cents, currency, stock_quantity, is_active, is_featured, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (slug) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    short_description = EXCLUDED.short_description,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    compare_price_cents = EXCLUDED.compare_price_cents,
    currency = EXCLUDED.currency,
    stock_quantity = EXCLUDED.stock_quantity,
    is_active = EXCLUDED.is_active,
    is_featured = EXCLUDED.is_featured,
    image_url = EXCLUDED.image_url,
    updated_at = now()
RETURNING ` + productColumns + `
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q,
		product.Slug,
		product.SKU,
		product.Name,
		product.ShortDescription,
		product.Description,
		product.PriceCents,
		product.ComparePriceCents,
		product.Currency,
		product.StockQuantity,
		product.IsActive,
		product.IsFeatured,
		product.ImageURL,
	).Scan(scanTargets(&p)...)
	if err != nil {
		r.logger.Printf("product repo: upsert slug=%s error=%v", product.Slug, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted slug=%s id=%s", p.Slug, p.ID)
	return &p, nil
}

func (r *postgresRepo) getOne(ctx context.Context, q, arg string) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, arg).Scan(scanTargets(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get %s error=%v", arg, err)
		return nil, err
	}
	return &p, nil
}

func scanTargets(p *domain.Product) []interface{} {
	return []interface{}{
		&p.ID, &p.Slug, &p.SKU, &p.Name, &p.ShortDescription, &p.Description,
		&p.PriceCents, &p.ComparePriceCents, &p.Currency, &p.StockQuantity,
		&p.IsActive, &p.IsFeatured, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(scanTargets(&p)...); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
