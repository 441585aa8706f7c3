package payment

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

// Gateway charges a prepared transaction against a payment provider and
// returns the provider's reference for it.
type Gateway interface {
	Name() domain.PaymentGateway
	Charge(ctx context.Context, txn domain.Transaction) (string, error)
}

// Dummy is the development gateway. Every charge succeeds.
type Dummy struct{}

func (Dummy) Name() domain.PaymentGateway { return domain.GatewayDummy }

func (Dummy) Charge(_ context.Context, txn domain.Transaction) (string, error) {
	return "dummy_" + txn.TransactionID, nil
}
