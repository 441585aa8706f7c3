package domain

import "time"

// OrderStatus is the lifecycle state of an order. Values are stored as-is,
// so they never change once released.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
	StatusRefunded       OrderStatus = "refunded"
)

// statusTransitions maps each status to its legal successors. The success
// path only moves forward; cancellation is possible until fulfilment starts,
// refunds follow a return. cancelled and refunded are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped},
	StatusShipped:        {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusReturned},
	StatusCancelled:      {},
	StatusReturned:       {StatusRefunded},
	StatusRefunded:       {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanBeCancelled reports whether the order may still be cancelled. Once
// fulfilment starts it cannot.
func (s OrderStatus) CanBeCancelled() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanBeReturned reports whether the order is eligible for a return.
func (s OrderStatus) CanBeReturned() bool {
	return s == StatusDelivered
}

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentUPI            PaymentMethod = "upi"
)

var paymentMethods = map[PaymentMethod]struct{}{
	PaymentCreditCard:     {},
	PaymentDebitCard:      {},
	PaymentPayPal:         {},
	PaymentBankTransfer:   {},
	PaymentCashOnDelivery: {},
	PaymentUPI:            {},
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethods[m]
	return ok
}

// Address is one postal address block on an order.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order is a placed order. Customer and address fields are copied at
// checkout time so later profile edits do not rewrite history.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	UserID      string `json:"-"`

	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`

	BillingAddress  Address `json:"billingAddress"`
	ShippingAddress Address `json:"shippingAddress"`

	Status        OrderStatus   `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Paid          bool          `json:"paid"`

	SubtotalCents int64 `json:"subtotalCents"`
	TaxCents      int64 `json:"taxCents"`
	ShippingCents int64 `json:"shippingCents"`
	DiscountCents int64 `json:"discountCents"`
	TotalCents    int64 `json:"totalCents"`

	Notes         string `json:"notes,omitempty"`
	InternalNotes string `json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`

	Items      []OrderItem      `json:"items,omitempty"`
	StatusLogs []OrderStatusLog `json:"statusLogs,omitempty"`
}

// FullName joins the customer name fields for display.
func (o Order) FullName() string {
	if o.FirstName == "" {
		return o.LastName
	}
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

// OrderItem is one purchased line. Product name, SKU and unit price are
// snapshots taken when the order was placed.
type OrderItem struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	ProductSKU     string    `json:"productSku,omitempty"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int       `json:"quantity"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

// OrderStatusLog is one row of the append-only status audit trail.
type OrderStatusLog struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	OldStatus OrderStatus `json:"oldStatus"`
	NewStatus OrderStatus `json:"newStatus"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
