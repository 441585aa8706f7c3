package cart

import (
	"context"
	"errors"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	cartrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/cart"
	productrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/product"
)

// Service owns the per-user shopping cart. Stock checks here are advisory;
// checkout re-validates against live stock before committing.
type Service struct {
	repo     cartRepo
	products productRepo
	cache    *cache.Store
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, products productrepo.Repository, store *cache.Store) *Service {
	return &Service{repo: repo, products: products, cache: store}
}

// Summary carries the cart aggregates without the line detail.
type Summary struct {
	ItemsCount    int   `json:"itemsCount"`
	TotalQuantity int   `json:"totalQuantity"`
	SubtotalCents int64 `json:"subtotalCents"`
}

// Get returns the user's cart view, from cache when fresh.
func (s *Service) Get(ctx context.Context, userID string) (domain.CartView, error) {
	key := cache.CartKey(userID)
	if view, ok := cache.Lookup[domain.CartView](s.cache, key); ok {
		return view, nil
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	view := domain.BuildCartView(*cart)
	s.cache.Set(key, view)
	return view, nil
}

// AddItem puts quantity units of a product in the cart, merging with an
// existing line. The merged total is checked against current stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.CartView, error) {
	if quantity < 1 {
		return domain.CartView{}, domain.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.CartView{}, err
	}
	if !product.IsActive {
		return domain.CartView{}, domain.ErrNotFound
	}

	current, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	merged := quantity
	for _, line := range current.Lines {
		if line.ProductID == productID {
			merged += line.Quantity
			break
		}
	}
	if !product.InStock(merged) {
		return domain.CartView{}, &domain.StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   merged,
		}
	}

	cart, err := s.repo.AddItem(ctx, userID, *product, quantity)
	if err != nil {
		return domain.CartView{}, err
	}
	s.cache.Delete(cache.CartKey(userID))
	return domain.BuildCartView(*cart), nil
}

// UpdateItemQuantity sets an existing line to quantity.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (domain.CartView, error) {
	if quantity < 1 {
		return domain.CartView{}, domain.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.CartView{}, err
	}
	if !product.InStock(quantity) {
		return domain.CartView{}, &domain.StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   quantity,
		}
	}

	cart, err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return domain.CartView{}, err
	}
	s.cache.Delete(cache.CartKey(userID))
	return domain.BuildCartView(*cart), nil
}

// RemoveItem drops a line. Removing a product that is not in the cart is a
// no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (domain.CartView, error) {
	cart, err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.Get(ctx, userID)
		}
		return domain.CartView{}, err
	}
	s.cache.Delete(cache.CartKey(userID))
	return domain.BuildCartView(*cart), nil
}

// Clear empties the cart. Clearing an already empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID string) (domain.CartView, error) {
	cart, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	s.cache.Delete(cache.CartKey(userID))
	return domain.BuildCartView(*cart), nil
}

// GetSummary returns the aggregate totals only.
func (s *Service) GetSummary(ctx context.Context, userID string) (Summary, error) {
	view, err := s.Get(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		ItemsCount:    view.ItemsCount,
		TotalQuantity: view.TotalQuantity,
		SubtotalCents: view.SubtotalCents,
	}, nil
}

// Contains reports whether the product currently sits in the cart.
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	view, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, line := range view.Cart.Lines {
		if line.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}
