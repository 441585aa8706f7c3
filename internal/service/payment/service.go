package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/SUHAIBCHEMBAN/autozen/internal/notify"
	orderrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/order"
	paymentrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/payment"
)

var (
	// ErrAlreadyPaid indicates a payment attempt on a settled order.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrGatewayDisabled indicates the gateway has no active configuration.
	ErrGatewayDisabled = errors.New("payment gateway is not configured or not active")
	// ErrPaymentFailed indicates the gateway declined the charge.
	ErrPaymentFailed = errors.New("payment processing failed")
)

const txnAttempts = 5

// Service charges orders through a payment gateway and records the attempt
// trail. Gateway configuration is read through the long cache tier since it
// changes rarely.
type Service struct {
	orders    orderRepo
	repo      paymentRepo
	gateways  map[domain.PaymentGateway]Gateway
	cache     *cache.Store
	events    notify.Publisher
	configTTL time.Duration
	logger    *log.Logger
}

type orderRepo interface {
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, in orderrepo.TransitionInput) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
}

type paymentRepo interface {
	GetConfig(ctx context.Context, gateway domain.PaymentGateway) (*domain.PaymentConfiguration, error)
	ListConfigs(ctx context.Context) ([]domain.PaymentConfiguration, error)
	UpsertConfig(ctx context.Context, cfg domain.PaymentConfiguration) (*domain.PaymentConfiguration, error)
	CreateTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, gatewayTxnID, errorMessage string) (*domain.Transaction, error)
	ListTransactionsForOrder(ctx context.Context, orderID string) ([]domain.Transaction, error)
}

func New(orders orderrepo.Repository, repo paymentrepo.Repository, store *cache.Store, configTTL time.Duration, events notify.Publisher, logger *log.Logger, gateways ...Gateway) *Service {
	if events == nil {
		events = notify.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if configTTL <= 0 {
		configTTL = time.Hour
	}
	byName := make(map[domain.PaymentGateway]Gateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	if len(byName) == 0 {
		byName[domain.GatewayDummy] = Dummy{}
	}
	return &Service{
		orders:    orders,
		repo:      repo,
		gateways:  byName,
		cache:     store,
		events:    events,
		configTTL: configTTL,
		logger:    logger,
	}
}

// Config returns the gateway configuration through the long cache tier.
func (s *Service) Config(ctx context.Context, gateway domain.PaymentGateway) (*domain.PaymentConfiguration, error) {
	key := cache.PaymentConfigKey(string(gateway))
	if cfg, ok := cache.Lookup[domain.PaymentConfiguration](s.cache, key); ok {
		return &cfg, nil
	}
	cfg, err := s.repo.GetConfig(ctx, gateway)
	if err != nil {
		return nil, err
	}
	s.cache.SetTTL(key, *cfg, s.configTTL)
	return cfg, nil
}

// ListConfigs returns every stored gateway configuration. Staff listing,
// always fresh.
func (s *Service) ListConfigs(ctx context.Context) ([]domain.PaymentConfiguration, error) {
	return s.repo.ListConfigs(ctx)
}

// UpsertConfig stores a gateway configuration and drops its cached copy, so
// an activation or key rotation takes effect on the next payment rather than
// after the cache tier expires.
func (s *Service) UpsertConfig(ctx context.Context, cfg domain.PaymentConfiguration) (*domain.PaymentConfiguration, error) {
	if !cfg.Gateway.Valid() {
		return nil, &domain.ValidationError{Field: "gateway"}
	}
	updated, err := s.repo.UpsertConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(cache.PaymentConfigKey(string(updated.Gateway)))
	s.logger.Printf("payment: config upserted gateway=%s active=%v", updated.Gateway, updated.IsActive)
	return updated, nil
}

// TransactionsForOrder returns the payment attempts recorded against the
// order. Callers outside staff must own the order.
func (s *Service) TransactionsForOrder(ctx context.Context, userID, orderNumber string, staff bool) ([]domain.Transaction, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !staff && order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.repo.ListTransactionsForOrder(ctx, order.ID)
}

// Pay charges the order's total through the named gateway, records the
// transaction and marks the order paid. A still-pending order is confirmed
// on successful payment.
func (s *Service) Pay(ctx context.Context, userID, orderNumber string, gateway domain.PaymentGateway) (*domain.Transaction, *domain.Order, error) {
	if !gateway.Valid() {
		return nil, nil, &domain.ValidationError{Field: "gateway"}
	}
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, nil, err
	}
	// Orders are payable only by their owner.
	if order.UserID != userID {
		return nil, nil, domain.ErrNotFound
	}
	if order.Paid {
		return nil, nil, ErrAlreadyPaid
	}
	gw, ok := s.gateways[gateway]
	if !ok {
		return nil, nil, ErrGatewayDisabled
	}
	cfg, err := s.Config(ctx, gateway)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrGatewayDisabled
		}
		return nil, nil, err
	}
	if !cfg.IsActive {
		return nil, nil, ErrGatewayDisabled
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}

	txn, err := s.createTransaction(ctx, domain.Transaction{
		OrderID:     order.ID,
		UserID:      userID,
		Gateway:     gateway,
		AmountCents: order.TotalCents,
		Currency:    currency,
		Status:      domain.TxnPending,
	})
	if err != nil {
		return nil, nil, err
	}

	gatewayRef, chargeErr := gw.Charge(ctx, *txn)
	if chargeErr != nil {
		if _, err := s.repo.UpdateTransactionStatus(ctx, txn.TransactionID, domain.TxnFailed, "", chargeErr.Error()); err != nil {
			s.logger.Printf("payment: record failure %s: %v", txn.TransactionID, err)
		}
		return nil, nil, ErrPaymentFailed
	}

	txn, err = s.repo.UpdateTransactionStatus(ctx, txn.TransactionID, domain.TxnSuccess, gatewayRef, "")
	if err != nil {
		return nil, nil, err
	}
	order, err = s.orders.MarkPaid(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	if order.Status == domain.StatusPending {
		order = s.confirm(ctx, order)
	}
	s.cache.Delete(cache.OrderKey(order.OrderNumber), cache.UserOrdersKey(order.UserID))
	return txn, order, nil
}

// confirm moves a freshly paid pending order to confirmed. Losing the race
// to a concurrent transition is fine, the payment itself already settled.
func (s *Service) confirm(ctx context.Context, order *domain.Order) *domain.Order {
	updated, err := s.orders.TransitionStatus(ctx, orderrepo.TransitionInput{
		OrderID: order.ID,
		From:    domain.StatusPending,
		To:      domain.StatusConfirmed,
		Notes:   "payment received",
	})
	if err != nil {
		s.logger.Printf("payment: confirm %s: %v", order.OrderNumber, err)
		return order
	}
	if err := s.events.OrderStatusChanged(ctx, notify.OrderStatusChangedEvent{
		OrderNumber: updated.OrderNumber,
		UserID:      updated.UserID,
		OldStatus:   string(domain.StatusPending),
		NewStatus:   string(domain.StatusConfirmed),
		Notes:       "payment received",
		OccurredAt:  time.Now(),
	}); err != nil {
		s.logger.Printf("payment: publish status change %s: %v", updated.OrderNumber, err)
	}
	return updated
}

func (s *Service) createTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	for attempt := 0; attempt < txnAttempts; attempt++ {
		txn.TransactionID = newTransactionID()
		created, err := s.repo.CreateTransaction(ctx, txn)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, fmt.Errorf("payment: could not allocate a unique transaction id after %d attempts", txnAttempts)
}

func newTransactionID() string {
	id := uuid.New()
	return fmt.Sprintf("TXN-%X", id[:6])
}
