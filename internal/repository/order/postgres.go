package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, order_number, user_id::text, email, first_name, last_name, phone,
       billing_line1, billing_line2, billing_city, billing_state, billing_postal_code, billing_country,
       shipping_line1, shipping_line2, shipping_city, shipping_state, shipping_postal_code, shipping_country,
       status, payment_method, paid,
       subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
       notes, internal_notes, created_at, updated_at, shipped_at, delivered_at`

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

func (r *postgresRepo) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var orderID string
	err = tx.QueryRow(ctx, `
INSERT INTO orders (
    order_number, user_id, email, first_name, last_name, phone,
    billing_line1, billing_line2, billing_city, billing_state, billing_postal_code, billing_country,
    shipping_line1, shipping_line2, shipping_city, shipping_state, shipping_postal_code, shipping_country,
    status, payment_method, subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents, notes
) VALUES (
    $1, $2, $3, $4, $5, $6,
    $7, $8, $9, $10, $11, $12,
    $13, $14, $15, $16, $17, $18,
    $19, $20, $21, $22, $23, $24, $25, $26
)
RETURNING id::text
`,
		order.OrderNumber, order.UserID, order.Email, order.FirstName, order.LastName, order.Phone,
		order.BillingAddress.Line1, order.BillingAddress.Line2, order.BillingAddress.City,
		order.BillingAddress.State, order.BillingAddress.PostalCode, order.BillingAddress.Country,
		order.ShippingAddress.Line1, order.ShippingAddress.Line2, order.ShippingAddress.City,
		order.ShippingAddress.State, order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.Status, order.PaymentMethod,
		order.SubtotalCents, order.TaxCents, order.ShippingCents, order.DiscountCents, order.TotalCents,
		order.Notes,
	).Scan(&orderID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert order_number=%s error=%v", order.OrderNumber, err)
		return nil, err
	}

	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if err := decrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, product_sku, unit_price_cents, quantity, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, orderID, item.ProductID, item.ProductName, item.ProductSKU, item.UnitPriceCents, item.Quantity, item.TotalCents); err != nil {
			r.logger.Printf("order repo: insert item order_id=%s product_id=%s error=%v", orderID, item.ProductID, err)
			return nil, err
		}
		productIDs = append(productIDs, item.ProductID)
	}

	// Drop only the purchased products from the cart. Anything else the
	// user had in there stays.
	if _, err := tx.Exec(ctx, `
DELETE FROM cart_items ci
USING carts c
WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_id = ANY($2::uuid[])
`, order.UserID, productIDs); err != nil {
		r.logger.Printf("order repo: prune cart user_id=%s error=%v", order.UserID, err)
		return nil, err
	}

	created, err := fetchOrder(ctx, tx, `WHERE id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order_number=%s user_id=%s total_cents=%d", created.OrderNumber, created.UserID, created.TotalCents)
	return created, nil
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := fetchOrder(ctx, r.pool, `WHERE lower(order_number) = lower($1)`, orderNumber)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("order repo: get order_number=%s error=%v", orderNumber, err)
		}
		return nil, err
	}
	return order, nil
}

func (r *postgresRepo) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := r.listOrders(ctx, `WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Printf("order repo: list user_id=%s error=%v", userID, err)
	}
	return orders, err
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.listOrders(ctx, ``)
	if err != nil {
		r.logger.Printf("order repo: list all error=%v", err)
	}
	return orders, err
}

func (r *postgresRepo) listOrders(ctx context.Context, where string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
`+where+`
ORDER BY created_at DESC
`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	byID := make(map[string]int)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(scanTargets(&o)...); err != nil {
			return nil, err
		}
		byID[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, product_sku, unit_price_cents, quantity, total_cents, created_at
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY created_at ASC
`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductSKU,
			&item.UnitPriceCents, &item.Quantity, &item.TotalCents, &item.CreatedAt); err != nil {
			return nil, err
		}
		if idx, ok := byID[item.OrderID]; ok {
			orders[idx].Items = append(orders[idx].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) TransitionStatus(ctx context.Context, in TransitionInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Compare-and-swap on the current status so two concurrent transitions
	// cannot both apply.
	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = $1,
    updated_at = now(),
    shipped_at = CASE WHEN $1 = 'shipped' THEN now() ELSE shipped_at END,
    delivered_at = CASE WHEN $1 = 'delivered' THEN now() ELSE delivered_at END
WHERE id = $2 AND status = $3
`, in.To, in.OrderID, in.From)
	if err != nil {
		r.logger.Printf("order repo: transition order_id=%s to=%s error=%v", in.OrderID, in.To, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrInvalidTransition
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO order_status_logs (order_id, old_status, new_status, notes)
VALUES ($1, $2, $3, $4)
`, in.OrderID, in.From, in.To, in.Notes); err != nil {
		return nil, err
	}

	if in.RestoreStock {
		if _, err := tx.Exec(ctx, `
UPDATE products p
SET stock_quantity = p.stock_quantity + oi.quantity,
    updated_at = now()
FROM order_items oi
WHERE oi.order_id = $1 AND p.id = oi.product_id
`, in.OrderID); err != nil {
			r.logger.Printf("order repo: restore stock order_id=%s error=%v", in.OrderID, err)
			return nil, err
		}
	}

	updated, err := fetchOrder(ctx, tx, `WHERE id = $1`, in.OrderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: transitioned order_number=%s %s -> %s", updated.OrderNumber, in.From, in.To)
	return updated, nil
}

func (r *postgresRepo) MarkPaid(ctx context.Context, orderID string) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET paid = TRUE, updated_at = now()
WHERE id = $1
`, orderID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return fetchOrder(ctx, r.pool, `WHERE id = $1`, orderID)
}

// decrementStock takes qty units off the product inside the checkout
// transaction. The WHERE clause is the stock check: no row updated means
// the product is gone, inactive or short on stock, and the fresh read
// explains which.
func decrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	cmd, err := tx.Exec(ctx, `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = now()
WHERE id = $1 AND is_active AND stock_quantity >= $2
`, productID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var name string
	var stock int
	var active bool
	err = tx.QueryRow(ctx, `SELECT name, stock_quantity, is_active FROM products WHERE id = $1`, productID).Scan(&name, &stock, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if !active {
		stock = 0
	}
	return &domain.StockError{ProductID: productID, ProductName: name, Available: stock, Requested: qty}
}

// querier lets fetchOrder run against either the pool or an open
// transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func fetchOrder(ctx context.Context, q querier, where string, arg interface{}) (*domain.Order, error) {
	var o domain.Order
	err := q.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
`+where, arg).Scan(scanTargets(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	itemRows, err := q.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, product_sku, unit_price_cents, quantity, total_cents, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at ASC
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductSKU,
			&item.UnitPriceCents, &item.Quantity, &item.TotalCents, &item.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	logRows, err := q.Query(ctx, `
SELECT id::text, order_id::text, old_status, new_status, notes, created_at
FROM order_status_logs
WHERE order_id = $1
ORDER BY created_at ASC
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer logRows.Close()

	for logRows.Next() {
		var entry domain.OrderStatusLog
		if err := logRows.Scan(&entry.ID, &entry.OrderID, &entry.OldStatus, &entry.NewStatus, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, err
		}
		o.StatusLogs = append(o.StatusLogs, entry)
	}
	if err := logRows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func scanTargets(o *domain.Order) []interface{} {
	return []interface{}{
		&o.ID, &o.OrderNumber, &o.UserID, &o.Email, &o.FirstName, &o.LastName, &o.Phone,
		&o.BillingAddress.Line1, &o.BillingAddress.Line2, &o.BillingAddress.City,
		&o.BillingAddress.State, &o.BillingAddress.PostalCode, &o.BillingAddress.Country,
		&o.ShippingAddress.Line1, &o.ShippingAddress.Line2, &o.ShippingAddress.City,
		&o.ShippingAddress.State, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.Status, &o.PaymentMethod, &o.Paid,
		&o.SubtotalCents, &o.TaxCents, &o.ShippingCents, &o.DiscountCents, &o.TotalCents,
		&o.Notes, &o.InternalNotes, &o.CreatedAt, &o.UpdatedAt, &o.ShippedAt, &o.DeliveredAt,
	}
}
