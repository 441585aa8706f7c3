package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SUHAIBCHEMBAN/autozen/internal/cache"
	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

type stubRepo struct {
	cart          *domain.Cart
	getErr        error
	getCalls      int
	addCart       *domain.Cart
	addErr        error
	lastAddUser   string
	lastAddProd   domain.Product
	lastAddQty    int
	updateCart    *domain.Cart
	updateErr     error
	lastUpdateQty int
	removeCart    *domain.Cart
	removeErr     error
	lastRemoveID  string
	clearCart     *domain.Cart
	clearErr      error
}

func (s *stubRepo) GetOrCreate(_ context.Context, _ string) (*domain.Cart, error) {
	s.getCalls++
	return s.cart, s.getErr
}

func (s *stubRepo) AddItem(_ context.Context, userID string, product domain.Product, quantity int) (*domain.Cart, error) {
	s.lastAddUser = userID
	s.lastAddProd = product
	s.lastAddQty = quantity
	return s.addCart, s.addErr
}

func (s *stubRepo) UpdateItemQuantity(_ context.Context, _, _ string, quantity int) (*domain.Cart, error) {
	s.lastUpdateQty = quantity
	return s.updateCart, s.updateErr
}

func (s *stubRepo) RemoveItem(_ context.Context, _, productID string) (*domain.Cart, error) {
	s.lastRemoveID = productID
	return s.removeCart, s.removeErr
}

func (s *stubRepo) Clear(_ context.Context, _ string) (*domain.Cart, error) {
	return s.clearCart, s.clearErr
}

type stubProducts struct {
	product *domain.Product
	err     error
	lastID  string
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func testStore() *cache.Store {
	return cache.New(time.Minute)
}

func activeProduct(stock int) *domain.Product {
	return &domain.Product{ID: "p1", Name: "brake pad", PriceCents: 2500, StockQuantity: stock, IsActive: true}
}

func cartWith(lines ...domain.CartLine) *domain.Cart {
	return &domain.Cart{ID: "c1", UserID: "u1", Lines: lines}
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, products: &stubProducts{}, cache: testStore()}
	_, err := svc.AddItem(context.Background(), "u1", "p1", 0)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, products: &stubProducts{err: domain.ErrNotFound}, cache: testStore()}
	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddItemInactiveProduct(t *testing.T) {
	p := activeProduct(5)
	p.IsActive = false
	svc := &Service{repo: &stubRepo{}, products: &stubProducts{product: p}, cache: testStore()}
	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive product, got %v", err)
	}
}

func TestAddItemChecksMergedQuantityAgainstStock(t *testing.T) {
	// Three already in the cart, stock of five, adding three more must fail.
	repo := &stubRepo{cart: cartWith(domain.CartLine{ProductID: "p1", Quantity: 3})}
	svc := &Service{repo: repo, products: &stubProducts{product: activeProduct(5)}, cache: testStore()}

	_, err := svc.AddItem(context.Background(), "u1", "p1", 3)
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("unexpected stock error %+v", stockErr)
	}
}

func TestAddItemReturnsFreshViewAndInvalidates(t *testing.T) {
	after := cartWith(domain.CartLine{ProductID: "p1", Quantity: 2, UnitPriceCents: 2500})
	repo := &stubRepo{cart: cartWith(), addCart: after}
	store := testStore()
	store.Set(cache.CartKey("u1"), domain.CartView{ItemsCount: 99})

	svc := &Service{repo: repo, products: &stubProducts{product: activeProduct(5)}, cache: store}
	view, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ItemsCount != 1 || view.TotalQuantity != 2 || view.SubtotalCents != 5000 {
		t.Fatalf("unexpected view %+v", view)
	}
	if repo.lastAddQty != 2 || repo.lastAddProd.ID != "p1" {
		t.Fatalf("unexpected repo call qty=%d product=%+v", repo.lastAddQty, repo.lastAddProd)
	}
	if _, ok := store.Get(cache.CartKey("u1")); ok {
		t.Fatalf("expected stale cart view evicted")
	}
}

func TestUpdateItemQuantityStockBound(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, products: &stubProducts{product: activeProduct(2)}, cache: testStore()}
	_, err := svc.UpdateItemQuantity(context.Background(), "u1", "p1", 4)
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if stockErr.Available != 2 || stockErr.Requested != 4 {
		t.Fatalf("unexpected stock error %+v", stockErr)
	}
}

func TestUpdateItemQuantityMissingLine(t *testing.T) {
	repo := &stubRepo{updateErr: domain.ErrNotFound}
	svc := &Service{repo: repo, products: &stubProducts{product: activeProduct(10)}, cache: testStore()}
	_, err := svc.UpdateItemQuantity(context.Background(), "u1", "p1", 2)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItemQuantityInvalid(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, products: &stubProducts{}, cache: testStore()}
	_, err := svc.UpdateItemQuantity(context.Background(), "u1", "p1", 0)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	repo := &stubRepo{removeErr: domain.ErrNotFound, cart: cartWith()}
	svc := &Service{repo: repo, products: &stubProducts{}, cache: testStore()}

	view, err := svc.RemoveItem(context.Background(), "u1", "p1")
	if err != nil {
		t.Fatalf("expected idempotent remove, got %v", err)
	}
	if view.ItemsCount != 0 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestRemoveItemInvalidates(t *testing.T) {
	repo := &stubRepo{removeCart: cartWith()}
	store := testStore()
	store.Set(cache.CartKey("u1"), domain.CartView{ItemsCount: 99})

	svc := &Service{repo: repo, products: &stubProducts{}, cache: store}
	if _, err := svc.RemoveItem(context.Background(), "u1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get(cache.CartKey("u1")); ok {
		t.Fatalf("expected stale cart view evicted")
	}
	if repo.lastRemoveID != "p1" {
		t.Fatalf("unexpected remove target %q", repo.lastRemoveID)
	}
}

func TestGetReadsThroughCache(t *testing.T) {
	repo := &stubRepo{cart: cartWith(domain.CartLine{ProductID: "p1", Quantity: 1, UnitPriceCents: 100})}
	svc := &Service{repo: repo, products: &stubProducts{}, cache: testStore()}

	first, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.getCalls)
	}
	if first.SubtotalCents != 100 || second.SubtotalCents != 100 {
		t.Fatalf("unexpected views %+v %+v", first, second)
	}
}

func TestAddThenGetNeverServesStaleView(t *testing.T) {
	// The round trip: populate the cache, mutate, read again. The second
	// read must come from the repository, not the pre-mutation snapshot.
	before := cartWith(domain.CartLine{ProductID: "p1", Quantity: 1, UnitPriceCents: 100})
	after := cartWith(
		domain.CartLine{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
		domain.CartLine{ProductID: "p2", Quantity: 2, UnitPriceCents: 200},
	)
	repo := &stubRepo{cart: before, addCart: after}
	store := testStore()
	svc := &Service{repo: repo, products: &stubProducts{product: &domain.Product{ID: "p2", Name: "oil filter", PriceCents: 200, StockQuantity: 9, IsActive: true}}, cache: store}

	if _, err := svc.Get(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), "u1", "p2", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.cart = after
	view, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ItemsCount != 2 || view.SubtotalCents != 500 {
		t.Fatalf("stale view served: %+v", view)
	}
}

func TestClearInvalidates(t *testing.T) {
	repo := &stubRepo{clearCart: cartWith()}
	store := testStore()
	store.Set(cache.CartKey("u1"), domain.CartView{ItemsCount: 99})

	svc := &Service{repo: repo, products: &stubProducts{}, cache: store}
	view, err := svc.Clear(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ItemsCount != 0 {
		t.Fatalf("unexpected view %+v", view)
	}
	if _, ok := store.Get(cache.CartKey("u1")); ok {
		t.Fatalf("expected cart view evicted")
	}
}

func TestGetSummaryAndContains(t *testing.T) {
	repo := &stubRepo{cart: cartWith(
		domain.CartLine{ProductID: "p1", Quantity: 2, UnitPriceCents: 100},
		domain.CartLine{ProductID: "p2", Quantity: 1, UnitPriceCents: 300},
	)}
	svc := &Service{repo: repo, products: &stubProducts{}, cache: testStore()}

	sum, err := svc.GetSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.ItemsCount != 2 || sum.TotalQuantity != 3 || sum.SubtotalCents != 500 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	in, err := svc.Contains(context.Background(), "u1", "p2")
	if err != nil || !in {
		t.Fatalf("expected p2 in cart, got %v %v", in, err)
	}
	in, err = svc.Contains(context.Background(), "u1", "p9")
	if err != nil || in {
		t.Fatalf("expected p9 absent, got %v %v", in, err)
	}
}
