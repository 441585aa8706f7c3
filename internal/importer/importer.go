package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a flat catalog export and inserts/updates products,
// matched by slug. One row is one product.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		products: repo,
	}
}

// Run parses CSV rows and upserts products. It returns the number of
// products written before the first failure.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		product, ok := parseRow(record, index)
		if !ok {
			continue
		}
		if err := validate(product); err != nil {
			return imported, err
		}
		if _, err := i.products.Upsert(ctx, product); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", product.Slug, err)
		}
		imported++
	}

	return imported, nil
}

func validate(p domain.Product) error {
	if p.SKU == "" || p.Name == "" {
		return fmt.Errorf("invalid product row (missing required fields) for slug %q", p.Slug)
	}
	if p.PriceCents <= 0 {
		return fmt.Errorf("invalid price for slug %q: %d", p.Slug, p.PriceCents)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// parseRow maps one record onto a product. Blank rows report ok=false and
// are skipped.
func parseRow(record []string, index map[string]int) (domain.Product, bool) {
	slug := pick(record, index, "slug")
	if slug == "" {
		return domain.Product{}, false
	}

	p := domain.Product{
		Slug:             slug,
		SKU:              pick(record, index, "sku"),
		Name:             pick(record, index, "name"),
		ShortDescription: pick(record, index, "short_description"),
		Description:      pick(record, index, "description"),
		PriceCents:       pickInt64(record, index, "price_cents"),
		Currency:         pick(record, index, "currency"),
		StockQuantity:    int(pickInt64(record, index, "stock_quantity")),
		IsActive:         pickBool(record, index, "is_active", true),
		IsFeatured:       pickBool(record, index, "is_featured", false),
		ImageURL:         pick(record, index, "image_url"),
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if cmp := pickInt64(record, index, "compare_price_cents"); cmp > 0 {
		p.ComparePriceCents = &cmp
	}
	return p, true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func pickInt64(record []string, index map[string]int, key string) int64 {
	v := pick(record, index, key)
	if v == "" {
		return 0
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func pickBool(record []string, index map[string]int, key string, def bool) bool {
	v := pick(record, index, key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}
