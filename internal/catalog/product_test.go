package catalog

import (
	"errors"
	"testing"

	"showcase/internal/core"
)

func TestNewRejectsBadProducts(t *testing.T) {
	dup := []Product{
		{ID: 1, Name: "A", Category: Home},
		{ID: 1, Name: "B", Category: Home},
	}
	if _, err := New(dup); !errors.Is(err, ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}
	if _, err := New([]Product{{ID: 1, Name: "A", Category: "garden"}}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := New([]Product{{ID: 1, Name: "A", Category: Home, Price: core.Money{Cents: -1}}}); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	src := sampleProducts()
	c, err := New(src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src[0].Name = "changed"
	got := c.Products()
	got[1].Name = "changed too"

	if p, _ := c.Lookup(1); p.Name != "Wireless Headphones" {
		t.Fatalf("catalog shares the caller's slice: %q", p.Name)
	}
	if p, _ := c.Lookup(2); p.Name != "Running Shoes" {
		t.Fatalf("Products leaks internal storage: %q", p.Name)
	}
	if c.Len() != 10 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestViewRecomputesOnlyOnChange(t *testing.T) {
	c, err := New(sampleProducts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var v View
	criteria := DefaultCriteria()

	first := v.Visible(c, criteria)
	v.Visible(c, criteria)
	if v.Computes() != 1 {
		t.Fatalf("expected 1 compute, got %d", v.Computes())
	}

	criteria.SortBy = SortByPrice
	second := v.Visible(c, criteria)
	if v.Computes() != 2 {
		t.Fatalf("expected recompute on criteria change, got %d", v.Computes())
	}
	if first[0].ID == second[0].ID {
		t.Fatalf("expected different ordering after sort change")
	}

	other, _ := New(sampleProducts()[:3])
	v.Visible(other, criteria)
	if v.Computes() != 3 {
		t.Fatalf("expected recompute on catalog change, got %d", v.Computes())
	}
}
