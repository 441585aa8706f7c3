package wishlist

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	productrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/product"
	wishlistrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/wishlist"
)

// Service owns the per-user wishlist. Items carry live catalog data, so a
// saved product always shows its current price and availability.
type Service struct {
	repo     wishlistRepo
	products productRepo
	cache    *cache.Store
}

type wishlistRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userID, productID string) (*domain.Wishlist, bool, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	Clear(ctx context.Context, userID string) (*domain.Wishlist, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo wishlistrepo.Repository, products productrepo.Repository, store *cache.Store) *Service {
	return &Service{repo: repo, products: products, cache: store}
}

// Get returns the user's wishlist, from cache when fresh.
func (s *Service) Get(ctx context.Context, userID string) (domain.Wishlist, error) {
	key := cache.WishlistKey(userID)
	if list, ok := cache.Lookup[domain.Wishlist](s.cache, key); ok {
		return list, nil
	}
	list, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	s.cache.Set(key, *list)
	return *list, nil
}

// Add saves a product to the wishlist. The boolean reports whether it was
// newly added; saving an already-saved product changes nothing.
func (s *Service) Add(ctx context.Context, userID, productID string) (domain.Wishlist, bool, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.Wishlist{}, false, err
	}
	if !product.IsActive {
		return domain.Wishlist{}, false, domain.ErrNotFound
	}
	list, added, err := s.repo.AddItem(ctx, userID, productID)
	if err != nil {
		return domain.Wishlist{}, false, err
	}
	if added {
		s.cache.Delete(cache.WishlistKey(userID))
	}
	return *list, added, nil
}

// Remove takes a product off the wishlist. Removing a product that is not
// on the list fails with ErrNotFound.
func (s *Service) Remove(ctx context.Context, userID, productID string) (domain.Wishlist, error) {
	list, err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	s.cache.Delete(cache.WishlistKey(userID))
	return *list, nil
}

// Clear empties the wishlist.
func (s *Service) Clear(ctx context.Context, userID string) (domain.Wishlist, error) {
	list, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	s.cache.Delete(cache.WishlistKey(userID))
	return *list, nil
}

// Contains reports whether the product is currently saved.
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	list, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, item := range list.Items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}
