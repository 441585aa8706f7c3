package payment

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

// Repository persists gateway configuration and payment transactions.
type Repository interface {
	GetConfig(ctx context.Context, gateway domain.PaymentGateway) (*domain.PaymentConfiguration, error)
	ListConfigs(ctx context.Context) ([]domain.PaymentConfiguration, error)
	UpsertConfig(ctx context.Context, cfg domain.PaymentConfiguration) (*domain.PaymentConfiguration, error)

	CreateTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)
	// UpdateTransactionStatus moves the transaction to status and records
	// the gateway reference or error message.
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, gatewayTxnID, errorMessage string) (*domain.Transaction, error)
	ListTransactionsForOrder(ctx context.Context, orderID string) ([]domain.Transaction, error)
}
