package payment

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

const configColumns = `id::text, gateway, is_active, merchant_id, public_key, secret_key, webhook_secret, currency, created_at, updated_at`

const txnColumns = `id::text, transaction_id, order_id::text, user_id::text, gateway, gateway_txn_id, amount_cents, currency, status, error_message, created_at, updated_at`

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

func (r *postgresRepo) GetConfig(ctx context.Context, gateway domain.PaymentGateway) (*domain.PaymentConfiguration, error) {
	const q = `
SELECT ` + configColumns + `
FROM payment_configurations
WHERE gateway = $1
LIMIT 1
`
	return scanConfig(r.pool.QueryRow(ctx, q, gateway))
}

func (r *postgresRepo) ListConfigs(ctx context.Context) ([]domain.PaymentConfiguration, error) {
	const q = `
SELECT ` + configColumns + `
FROM payment_configurations
ORDER BY gateway ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []domain.PaymentConfiguration
	for rows.Next() {
		var cfg domain.PaymentConfiguration
		if err := rows.Scan(
			&cfg.ID, &cfg.Gateway, &cfg.IsActive, &cfg.MerchantID, &cfg.PublicKey,
			&cfg.SecretKey, &cfg.WebhookSecret, &cfg.Currency, &cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *postgresRepo) UpsertConfig(ctx context.Context, cfg domain.PaymentConfiguration) (*domain.PaymentConfiguration, error) {
	const q = `
INSERT INTO payment_configurations (gateway, is_active, merchant_id, public_key, secret_key, webhook_secret, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (gateway) DO UPDATE SET
    is_active = EXCLUDED.is_active,
    merchant_id = EXCLUDED.merchant_id,
    public_key = EXCLUDED.public_key,
    secret_key = EXCLUDED.secret_key,
    webhook_secret = EXCLUDED.webhook_secret,
    currency = EXCLUDED.currency,
    updated_at = now()
RETURNING ` + configColumns
	updated, err := scanConfig(r.pool.QueryRow(ctx, q,
		cfg.Gateway, cfg.IsActive, cfg.MerchantID, cfg.PublicKey, cfg.SecretKey, cfg.WebhookSecret, cfg.Currency))
	if err != nil {
		r.logger.Printf("payment repo: upsert config gateway=%s error=%v", cfg.Gateway, err)
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) CreateTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	const q = `
INSERT INTO payment_transactions (transaction_id, order_id, user_id, gateway, gateway_txn_id, amount_cents, currency, status, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + txnColumns
	created, err := scanTransaction(r.pool.QueryRow(ctx, q,
		txn.TransactionID, txn.OrderID, txn.UserID, txn.Gateway, txn.GatewayTxnID,
		txn.AmountCents, txn.Currency, txn.Status, txn.ErrorMessage))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("payment repo: create txn transaction_id=%s error=%v", txn.TransactionID, err)
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, gatewayTxnID, errorMessage string) (*domain.Transaction, error) {
	const q = `
UPDATE payment_transactions
SET status = $2,
    gateway_txn_id = CASE WHEN $3 <> '' THEN $3 ELSE gateway_txn_id END,
    error_message = $4,
    updated_at = now()
WHERE transaction_id = $1
RETURNING ` + txnColumns
	updated, err := scanTransaction(r.pool.QueryRow(ctx, q, transactionID, status, gatewayTxnID, errorMessage))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("payment repo: update txn transaction_id=%s error=%v", transactionID, err)
		}
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) ListTransactionsForOrder(ctx context.Context, orderID string) ([]domain.Transaction, error) {
	const q = `
SELECT ` + txnColumns + `
FROM payment_transactions
WHERE order_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.TransactionID, &txn.OrderID, &txn.UserID, &txn.Gateway, &txn.GatewayTxnID,
			&txn.AmountCents, &txn.Currency, &txn.Status, &txn.ErrorMessage, &txn.CreatedAt, &txn.UpdatedAt,
		); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

func scanConfig(row pgx.Row) (*domain.PaymentConfiguration, error) {
	var cfg domain.PaymentConfiguration
	err := row.Scan(
		&cfg.ID, &cfg.Gateway, &cfg.IsActive, &cfg.MerchantID, &cfg.PublicKey,
		&cfg.SecretKey, &cfg.WebhookSecret, &cfg.Currency, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.ID, &txn.TransactionID, &txn.OrderID, &txn.UserID, &txn.Gateway, &txn.GatewayTxnID,
		&txn.AmountCents, &txn.Currency, &txn.Status, &txn.ErrorMessage, &txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}
