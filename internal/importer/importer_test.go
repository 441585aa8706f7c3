package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `slug,sku,name,short_description,price_cents,compare_price_cents,currency,stock_quantity,is_active,is_featured,image_url
brake-pad-set-front,AZ-BRK-001,Front Brake Pad Set,Ceramic low dust,4599,5299,USD,40,true,true,https://example.com/brake.jpg
,,,,,,,,,,
oil-filter-standard,AZ-OIL-010,Oil Filter,Spin-on filter,899,,,200,,,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.Slug != "brake-pad-set-front" || first.SKU != "AZ-BRK-001" || first.PriceCents != 4599 {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if first.ComparePriceCents == nil || *first.ComparePriceCents != 5299 {
		t.Fatalf("expected compare price 5299, got %+v", first.ComparePriceCents)
	}
	if !first.IsActive || !first.IsFeatured || first.StockQuantity != 40 {
		t.Fatalf("unexpected flags: %+v", first)
	}

	second := repo.items[1]
	if second.Currency != "USD" {
		t.Fatalf("expected default currency USD, got %q", second.Currency)
	}
	if !second.IsActive || second.IsFeatured {
		t.Fatalf("expected active non-featured defaults, got %+v", second)
	}
	if second.ComparePriceCents != nil {
		t.Fatalf("expected no compare price, got %v", *second.ComparePriceCents)
	}
}

func TestCSVImporter_ExplicitInactive(t *testing.T) {
	csvData := `slug,sku,name,price_cents,is_active
discontinued-part,AZ-OLD-001,Discontinued Part,1000,false`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("import run: %v", err)
	}
	if repo.items[0].IsActive {
		t.Fatalf("expected product to be imported inactive")
	}
}

func TestCSVImporter_RejectsRowWithoutPrice(t *testing.T) {
	csvData := `slug,sku,name,price_cents
brake-pad-set-front,AZ-BRK-001,Front Brake Pad Set,4599
free-part,AZ-FREE-001,Free Part,0`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err == nil {
		t.Fatalf("expected an error for the priceless row")
	}
	if count != 1 {
		t.Fatalf("expected 1 product imported before the failure, got %d", count)
	}
}

func TestCSVImporter_RejectsRowWithoutSKU(t *testing.T) {
	csvData := `slug,sku,name,price_cents
brake-pad-set-front,,Front Brake Pad Set,4599`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{})

	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected an error for the row without a sku")
	}
}
