package catalog

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"showcase/internal/core"
)

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
	// SortNone keeps catalog order.
	SortNone SortKey = ""
)

// MaxPrice is the upper end of the price slider.
var MaxPrice = core.Dollars(1000)

var (
	ErrUnknownSort  = errors.New("unknown sort key")
	ErrPriceOutside = errors.New("price limit out of range")
)

type FilterCriteria struct {
	Category Category   `json:"category"`
	PriceMax core.Money `json:"priceMax"`
	SortBy   SortKey    `json:"sortBy"`
}

// DefaultCriteria shows everything sorted by name.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Category: AllCategories, PriceMax: MaxPrice, SortBy: SortByName}
}

func (f FilterCriteria) Validate() error {
	if f.Category != AllCategories {
		if err := f.Category.Validate(); err != nil {
			return err
		}
	}
	switch f.SortBy {
	case SortByName, SortByPrice, SortNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSort, f.SortBy)
	}
	if f.PriceMax.Cents < 0 || f.PriceMax.Cents > MaxPrice.Cents {
		return fmt.Errorf("%w: %s not in [$0.00, %s]", ErrPriceOutside, f.PriceMax, MaxPrice)
	}
	return nil
}

// Matches reports whether p passes the inclusion predicate.
func (f FilterCriteria) Matches(p Product) bool {
	categoryMatch := f.Category == AllCategories || p.Category == f.Category
	return categoryMatch && p.Price.Cents >= 0 && p.Price.Cents <= f.PriceMax.Cents
}

// FilterAndSort returns the products matching criteria in the order the
// criteria ask for. The input slice is left untouched. Sorting is stable so
// ties keep catalog order.
func FilterAndSort(products []Product, criteria FilterCriteria) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if criteria.Matches(p) {
			out = append(out, p)
		}
	}

	switch criteria.SortBy {
	case SortByPrice:
		slices.SortStableFunc(out, func(a, b Product) int {
			switch {
			case a.Price.Cents < b.Price.Cents:
				return -1
			case a.Price.Cents > b.Price.Cents:
				return 1
			}
			return 0
		})
	case SortByName:
		// Collators carry scratch buffers, so each call gets its own.
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
	return out
}
