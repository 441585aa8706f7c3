package notify

import (
	"context"
	"time"
)

// OrderCreatedEvent announces a freshly placed order.
type OrderCreatedEvent struct {
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	TotalCents  int64     `json:"totalCents"`
	ItemsCount  int       `json:"itemsCount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// OrderStatusChangedEvent announces a lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	Notes       string    `json:"notes,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher pushes order events to interested consumers. Publishing is
// best-effort: callers log failures but never roll back the order.
type Publisher interface {
	OrderCreated(ctx context.Context, event OrderCreatedEvent) error
	OrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error
	Close() error
}

// Nop is the publisher used when no broker is configured.
type Nop struct{}

func (Nop) OrderCreated(context.Context, OrderCreatedEvent) error { return nil }

func (Nop) OrderStatusChanged(context.Context, OrderStatusChangedEvent) error { return nil }

func (Nop) Close() error { return nil }
