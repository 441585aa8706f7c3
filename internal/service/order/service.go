package order

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/SUHAIBCHEMBAN/autozen/internal/notify"
	orderrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/order"
)

// Service drives the order lifecycle after checkout: reads, the status
// state machine, cancellation and public tracking.
type Service struct {
	repo   orderRepo
	cache  *cache.Store
	events notify.Publisher
	logger *log.Logger
}

type orderRepo interface {
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	TransitionStatus(ctx context.Context, in orderrepo.TransitionInput) (*domain.Order, error)
}

func New(repo orderrepo.Repository, store *cache.Store, events notify.Publisher, logger *log.Logger) *Service {
	if events == nil {
		events = notify.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, cache: store, events: events, logger: logger}
}

// Get returns one order by its public number, from cache when fresh. The
// lookup is case-insensitive.
func (s *Service) Get(ctx context.Context, orderNumber string) (*domain.Order, error) {
	key := cache.OrderKey(orderNumber)
	if order, ok := cache.Lookup[domain.Order](s.cache, key); ok {
		return &order, nil
	}
	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, *order)
	return order, nil
}

// ListForUser returns the user's orders, newest first, from cache when
// fresh.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	key := cache.UserOrdersKey(userID)
	if orders, ok := cache.Lookup[[]domain.Order](s.cache, key); ok {
		return orders, nil
	}
	orders, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, orders)
	return orders, nil
}

// ListAll returns every order for staff. Always reads the store directly.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus moves the order to next when the lifecycle allows it. The
// store applies the change only while the order is still in its observed
// status, so a concurrent transition surfaces as ErrInvalidTransition
// rather than a silent overwrite.
func (s *Service) UpdateStatus(ctx context.Context, orderNumber string, next domain.OrderStatus, notes string) (*domain.Order, error) {
	if !next.Valid() {
		return nil, &domain.ValidationError{Field: "status"}
	}
	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}
	return s.transition(ctx, order, next, notes)
}

// Cancel cancels the order and restores its stock. Only orders that have
// not entered fulfilment can be cancelled.
func (s *Service) Cancel(ctx context.Context, orderNumber, notes string) (*domain.Order, error) {
	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanBeCancelled() {
		return nil, domain.ErrCancellationNotAllowed
	}
	if notes == "" {
		notes = "cancelled by customer"
	}
	return s.transition(ctx, order, domain.StatusCancelled, notes)
}

// Track is the public lookup by order number. When an email is supplied it
// must match the order's email, compared case-insensitively.
func (s *Service) Track(ctx context.Context, orderNumber, email string) (*domain.Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, &domain.ValidationError{Field: "orderNumber"}
	}
	order, err := s.Get(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if email != "" && !strings.EqualFold(strings.TrimSpace(email), order.Email) {
		return nil, domain.ErrVerificationFailed
	}
	return order, nil
}

func (s *Service) transition(ctx context.Context, order *domain.Order, next domain.OrderStatus, notes string) (*domain.Order, error) {
	updated, err := s.repo.TransitionStatus(ctx, orderrepo.TransitionInput{
		OrderID:      order.ID,
		From:         order.Status,
		To:           next,
		Notes:        notes,
		RestoreStock: next == domain.StatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	s.cache.Delete(cache.OrderKey(updated.OrderNumber), cache.UserOrdersKey(updated.UserID))

	if err := s.events.OrderStatusChanged(ctx, notify.OrderStatusChangedEvent{
		OrderNumber: updated.OrderNumber,
		UserID:      updated.UserID,
		OldStatus:   string(order.Status),
		NewStatus:   string(next),
		Notes:       notes,
		OccurredAt:  time.Now(),
	}); err != nil {
		s.logger.Printf("order: publish status change %s: %v", updated.OrderNumber, err)
	}
	return updated, nil
}
