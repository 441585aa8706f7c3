package domain

import "time"

// PaymentGateway identifies a payment provider integration.
type PaymentGateway string

const (
	GatewayStripe      PaymentGateway = "stripe"
	GatewayPayPal      PaymentGateway = "paypal"
	GatewayRazorpay    PaymentGateway = "razorpay"
	GatewayFlutterwave PaymentGateway = "flutterwave"
	GatewayDummy       PaymentGateway = "dummy"
)

var paymentGateways = map[PaymentGateway]struct{}{
	GatewayStripe:      {},
	GatewayPayPal:      {},
	GatewayRazorpay:    {},
	GatewayFlutterwave: {},
	GatewayDummy:       {},
}

// Valid reports whether g is a known gateway.
func (g PaymentGateway) Valid() bool {
	_, ok := paymentGateways[g]
	return ok
}

// TransactionStatus is the lifecycle state of a payment transaction.
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnSuccess   TransactionStatus = "success"
	TxnFailed    TransactionStatus = "failed"
	TxnCancelled TransactionStatus = "cancelled"
	TxnRefunded  TransactionStatus = "refunded"
)

// PaymentConfiguration holds the per-gateway credentials. Secret fields are
// never serialized.
type PaymentConfiguration struct {
	ID            string         `json:"id"`
	Gateway       PaymentGateway `json:"gateway"`
	IsActive      bool           `json:"isActive"`
	MerchantID    string         `json:"merchantId,omitempty"`
	PublicKey     string         `json:"publicKey,omitempty"`
	SecretKey     string         `json:"-"`
	WebhookSecret string         `json:"-"`
	Currency      string         `json:"currency"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Transaction records one payment attempt against an order.
type Transaction struct {
	ID            string            `json:"id"`
	TransactionID string            `json:"transactionId"`
	OrderID       string            `json:"orderId"`
	UserID        string            `json:"-"`
	Gateway       PaymentGateway    `json:"gateway"`
	GatewayTxnID  string            `json:"gatewayTransactionId,omitempty"`
	AmountCents   int64             `json:"amountCents"`
	Currency      string            `json:"currency"`
	Status        TransactionStatus `json:"status"`
	ErrorMessage  string            `json:"errorMessage,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Successful reports whether the transaction completed.
func (t Transaction) Successful() bool {
	return t.Status == TxnSuccess
}
