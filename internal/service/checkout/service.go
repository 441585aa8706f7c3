package checkout

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
	productrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/product"
)

const numberAttempts = 5

// Service turns a set of selected cart lines into an order. Everything the
// order records is re-read from the catalog at checkout time; cart snapshots
// are never trusted for pricing or stock.
type Service struct {
	orders   orderRepo
	products productRepo
	cache    *cache.Store
	pricing  PricingPolicy
	events   notify.Publisher
	logger   *log.Logger
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
}

type productRepo interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

func New(orders orderrepo.Repository, products productrepo.Repository, store *cache.Store, pricing PricingPolicy, events notify.Publisher, logger *log.Logger) *Service {
	if events == nil {
		events = notify.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:   orders,
		products: products,
		cache:    store,
		pricing:  pricing,
		events:   events,
		logger:   logger,
	}
}

// SelectedLine picks one product for purchase.
type SelectedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Input is the full checkout request. Address line 2 and notes are the only
// optional fields.
type Input struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`

	BillingAddress  domain.Address `json:"billingAddress"`
	ShippingAddress domain.Address `json:"shippingAddress"`

	PaymentMethod string `json:"paymentMethod"`

	Items []SelectedLine `json:"items"`
	Notes string         `json:"notes"`
}

func (in Input) validate() error {
	if len(in.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	required := []struct {
		field string
		value string
	}{
		{"email", in.Email},
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"phone", in.Phone},
		{"billingAddress.line1", in.BillingAddress.Line1},
		{"billingAddress.city", in.BillingAddress.City},
		{"billingAddress.state", in.BillingAddress.State},
		{"billingAddress.postalCode", in.BillingAddress.PostalCode},
		{"billingAddress.country", in.BillingAddress.Country},
		{"shippingAddress.line1", in.ShippingAddress.Line1},
		{"shippingAddress.city", in.ShippingAddress.City},
		{"shippingAddress.state", in.ShippingAddress.State},
		{"shippingAddress.postalCode", in.ShippingAddress.PostalCode},
		{"shippingAddress.country", in.ShippingAddress.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return &domain.ValidationError{Field: r.field}
		}
	}
	if !domain.PaymentMethod(in.PaymentMethod).Valid() {
		return &domain.ValidationError{Field: "paymentMethod"}
	}
	for _, line := range in.Items {
		if line.ProductID == "" {
			return &domain.ValidationError{Field: "productId"}
		}
		if line.Quantity < 1 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

// Checkout places an order for the selected lines, atomically with the
// stock decrement and cart pruning. On any stock failure nothing is
// committed and the cart is untouched.
func (s *Service) Checkout(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lines := mergeSelected(in.Items)

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Authoritative re-pricing: every line is priced from the catalog as it
	// is right now, never from the cart snapshot.
	items := make([]domain.OrderItem, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsActive {
			return nil, &domain.StockError{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Available:   0,
				Requested:   line.Quantity,
			}
		}
		if product.StockQuantity < line.Quantity {
			return nil, &domain.StockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.StockQuantity,
				Requested:   line.Quantity,
			}
		}
		lineTotal := product.PriceCents * int64(line.Quantity)
		items = append(items, domain.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			ProductSKU:     product.SKU,
			UnitPriceCents: product.PriceCents,
			Quantity:       line.Quantity,
			TotalCents:     lineTotal,
		})
		subtotal += lineTotal
	}
	totals := s.pricing.Price(subtotal)

	order := domain.Order{
		UserID:          userID,
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Phone:           in.Phone,
		BillingAddress:  in.BillingAddress,
		ShippingAddress: in.ShippingAddress,
		Status:          domain.StatusPending,
		PaymentMethod:   domain.PaymentMethod(in.PaymentMethod),
		SubtotalCents:   totals.SubtotalCents,
		TaxCents:        totals.TaxCents,
		ShippingCents:   totals.ShippingCents,
		DiscountCents:   totals.DiscountCents,
		TotalCents:      totals.TotalCents,
		Notes:           in.Notes,
		Items:           items,
	}

	created, err := s.create(ctx, order)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(cache.CartKey(userID), cache.UserOrdersKey(userID))

	if err := s.events.OrderCreated(ctx, notify.OrderCreatedEvent{
		OrderNumber: created.OrderNumber,
		UserID:      created.UserID,
		Email:       created.Email,
		TotalCents:  created.TotalCents,
		ItemsCount:  len(created.Items),
		OccurredAt:  time.Now(),
	}); err != nil {
		s.logger.Printf("checkout: publish order created %s: %v", created.OrderNumber, err)
	}
	return created, nil
}

// create persists the order, regenerating the order number on the rare
// collision.
func (s *Service) create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber()
		created, err := s.orders.Create(ctx, order)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, fmt.Errorf("checkout: could not allocate a unique order number after %d attempts", numberAttempts)
}

// mergeSelected folds duplicate product lines into one, preserving the
// order of first appearance.
func mergeSelected(items []SelectedLine) []SelectedLine {
	merged := make([]SelectedLine, 0, len(items))
	index := make(map[string]int, len(items))
	for _, line := range items {
		if at, ok := index[line.ProductID]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func newOrderNumber() string {
	id := uuid.New()
	return fmt.Sprintf("ORD-%X", id[:4])
}
