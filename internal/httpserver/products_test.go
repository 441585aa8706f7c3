package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

type stubProductService struct {
	list    []domain.Product
	product *domain.Product
	err     error
}

func (s *stubProductService) List(_ context.Context) ([]domain.Product, error) {
	return s.list, s.err
}

func (s *stubProductService) GetBySlug(_ context.Context, _ string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func TestListProductsHandler_Public(t *testing.T) {
	deps := testDeps()
	deps.ProductSvc = &stubProductService{list: []domain.Product{
		{ID: "p1", Slug: "brake-pad-set-front", Name: "Front Brake Pad Set", PriceCents: 4599, IsActive: true},
	}}

	rec := serve(t, deps, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"slug":"brake-pad-set-front"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetProductHandler(t *testing.T) {
	deps := testDeps()
	deps.ProductSvc = &stubProductService{product: &domain.Product{
		ID: "p1", Slug: "oil-filter-standard", Name: "Oil Filter", PriceCents: 899, IsActive: true,
	}}

	rec := serve(t, deps, httptest.NewRequest(http.MethodGet, "/products/oil-filter-standard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"name":"Oil Filter"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetProductHandler_Unknown(t *testing.T) {
	deps := testDeps()
	deps.ProductSvc = &stubProductService{err: domain.ErrNotFound}

	rec := serve(t, deps, httptest.NewRequest(http.MethodGet, "/products/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}
