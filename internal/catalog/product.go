// Package catalog holds the immutable product catalog and the filter/sort
// pipeline that derives the visible product list from user criteria.
package catalog

import (
	"errors"
	"fmt"
	"hash/fnv"

	"showcase/internal/core"
)

type Category string

const (
	Electronics Category = "electronics"
	Sports      Category = "sports"
	Home        Category = "home"

	// AllCategories is the criteria wildcard; it is never a product category.
	AllCategories Category = "all"
)

var ErrUnknownCategory = errors.New("unknown category")

// Categories lists the product categories in display order.
func Categories() []Category {
	return []Category{Electronics, Sports, Home}
}

func (c Category) Validate() error {
	switch c {
	case Electronics, Sports, Home:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
}

type Product struct {
	ID       int        `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Category Category   `json:"category" yaml:"category"`
	Price    core.Money `json:"price" yaml:"price"`
	Image    string     `json:"image" yaml:"image"`
}

// Catalog is created once at startup and never mutated afterwards.
type Catalog struct {
	products    []Product
	byID        map[int]Product
	fingerprint uint64
}

var (
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrNegativePrice    = errors.New("negative product price")
)

// New validates the products and freezes them into a Catalog.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		byID:     make(map[int]Product, len(products)),
	}
	copy(c.products, products)

	h := fnv.New64a()
	for _, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
		}
		if err := p.Category.Validate(); err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		if p.Price.Cents < 0 {
			return nil, fmt.Errorf("product %d: %w", p.ID, ErrNegativePrice)
		}
		c.byID[p.ID] = p
		fmt.Fprintf(h, "%d|%s|%s|%d|%s;", p.ID, p.Name, p.Category, p.Price.Cents, p.Image)
	}
	c.fingerprint = h.Sum64()
	return c, nil
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Lookup(id int) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) Len() int { return len(c.products) }

// Fingerprint identifies the catalog contents; two catalogs with the same
// products in the same order share a fingerprint.
func (c *Catalog) Fingerprint() uint64 { return c.fingerprint }
