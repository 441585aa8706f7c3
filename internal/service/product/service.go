package product

import (
	"context"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	productrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/product"
)

// Service serves the public catalog. Listings come from cache when fresh;
// inactive products read as absent.
type Service struct {
	repo  productRepo
	cache *cache.Store
}

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

func New(repo productrepo.Repository, store *cache.Store) *Service {
	return &Service{repo: repo, cache: store}
}

// List returns the active catalog, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	key := cache.ProductsKey()
	if list, ok := cache.Lookup[[]domain.Product](s.cache, key); ok {
		return list, nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, list)
	return list, nil
}

// GetBySlug returns one product by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
