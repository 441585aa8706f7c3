package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuantity indicates a quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrEmptyOrder indicates a checkout with no purchasable lines.
	ErrEmptyOrder = errors.New("no items selected for checkout")
	// ErrInvalidTransition indicates an order status change the lifecycle
	// does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrCancellationNotAllowed indicates the order has progressed past the
	// point where the customer may cancel it.
	ErrCancellationNotAllowed = errors.New("order can no longer be cancelled")
	// ErrVerificationFailed indicates a tracking lookup whose verification
	// email did not match the order.
	ErrVerificationFailed = errors.New("order email verification failed")
)

// ValidationError reports a missing or malformed input field by name.
// Message overrides the default "is required" phrasing when the field is
// present but malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// StockError reports a requested quantity that exceeds availability.
// Available is the stock level observed at check time.
type StockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", name, e.Available, e.Requested)
}
