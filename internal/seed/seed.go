package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type userSeed struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	IsStaff   bool
}

type productSeed struct {
	Slug        string
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Featured    bool
}

// Apply inserts demo accounts, a small parts catalog and an active dummy
// payment gateway for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	users := []userSeed{
		{Email: "admin@autozen.dev", Username: "admin", Password: "Admin123!", FirstName: "Admin", LastName: "User", IsStaff: true},
		{Email: "pat@autozen.dev", Username: "pat", Password: "Customer123!", FirstName: "Pat", LastName: "Doe"},
	}
	for _, u := range users {
		if err := upsertUser(ctx, pool, u); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
	}

	products := []productSeed{
		{Slug: "brake-pad-set-front", SKU: "AZ-BRK-001", Name: "Front Brake Pad Set", Description: "Ceramic front brake pads, low dust", PriceCents: 4599, Stock: 40, Featured: true},
		{Slug: "oil-filter-standard", SKU: "AZ-OIL-010", Name: "Oil Filter", Description: "Spin-on oil filter for most sedans", PriceCents: 899, Stock: 200},
		{Slug: "spark-plug-iridium", SKU: "AZ-SPK-004", Name: "Iridium Spark Plug", Description: "Long-life iridium spark plug", PriceCents: 1250, Stock: 160},
		{Slug: "wiper-blade-22in", SKU: "AZ-WPR-022", Name: "Wiper Blade 22\"", Description: "All-season beam wiper blade", PriceCents: 1499, Stock: 80},
		{Slug: "cabin-air-filter", SKU: "AZ-FLT-031", Name: "Cabin Air Filter", Description: "Activated carbon cabin filter", PriceCents: 1799, Stock: 60},
		{Slug: "car-battery-12v", SKU: "AZ-BAT-012", Name: "12V Car Battery", Description: "Maintenance-free 60Ah battery", PriceCents: 12999, Stock: 15, Featured: true},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	if err := upsertDummyGateway(ctx, pool); err != nil {
		return fmt.Errorf("upsert dummy gateway: %w", err)
	}

	return nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u userSeed) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (email, username, password_hash, first_name, last_name, is_staff)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (email) DO UPDATE
SET username   = EXCLUDED.username,
    first_name = EXCLUDED.first_name,
    last_name  = EXCLUDED.last_name,
    is_staff   = EXCLUDED.is_staff
`
	_, err = pool.Exec(ctx, q, u.Email, u.Username, string(hash), u.FirstName, u.LastName, u.IsStaff)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (slug, sku, name, short_description, description, price_cents, stock_quantity, is_featured)
VALUES ($1, $2, $3, $4, $4, $5, $6, $7)
ON CONFLICT (slug) DO UPDATE
SET sku            = EXCLUDED.sku,
    name           = EXCLUDED.name,
    description    = EXCLUDED.description,
    price_cents    = EXCLUDED.price_cents,
    stock_quantity = EXCLUDED.stock_quantity,
    is_featured    = EXCLUDED.is_featured,
    updated_at     = now()
`
	_, err := pool.Exec(ctx, q, p.Slug, p.SKU, p.Name, p.Description, p.PriceCents, p.Stock, p.Featured)
	return err
}

func upsertDummyGateway(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO payment_configurations (gateway, is_active, merchant_id, currency)
VALUES ('dummy', TRUE, 'autozen-demo', 'USD')
ON CONFLICT (gateway) DO UPDATE
SET is_active  = TRUE,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q)
	return err
}
