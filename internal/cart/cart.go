// Package cart implements the shopping cart as an immutable, ordered
// collection of lines keyed by product id.
//
// Every operation returns a new Cart and leaves the receiver untouched, so a
// cart value read during rendering never changes under the reader.
package cart

import (
	"errors"
	"fmt"

	"showcase/internal/catalog"
	"showcase/internal/core"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

// MaxQuantity bounds a line so price times quantity stays far from overflow.
const MaxQuantity = 999

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Price    core.Money `json:"price"`
	Image    string     `json:"image"`
	Quantity int        `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() core.Money {
	return l.Price.Times(l.Quantity)
}

// Cart is a value type; the zero value is an empty cart.
type Cart struct {
	lines []Line
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Len() int { return len(c.lines) }

func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c Cart) indexOf(id int) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Line returns the line for a product id.
func (c Cart) Line(id int) (Line, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Add increments the product's line or appends a new line with quantity 1.
// A line already at MaxQuantity stays there.
func (c Cart) Add(p catalog.Product) Cart {
	lines := c.Lines()
	if i := c.indexOf(p.ID); i >= 0 {
		if lines[i].Quantity < MaxQuantity {
			lines[i].Quantity++
		}
		return Cart{lines: lines}
	}
	return Cart{lines: append(lines, Line{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	})}
}

// Remove drops the line for id. Removing an absent id is a no-op.
func (c Cart) Remove(id int) Cart {
	lines := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ID != id {
			lines = append(lines, l)
		}
	}
	return Cart{lines: lines}
}

// SetQuantity replaces a line's quantity. Zero removes the line; negative
// quantities and quantities above MaxQuantity are refused and the cart is
// returned unchanged.
func (c Cart) SetQuantity(id, qty int) (Cart, error) {
	switch {
	case qty < 0:
		return c, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	case qty > MaxQuantity:
		return c, fmt.Errorf("%w: %d exceeds %d", ErrInvalidQuantity, qty, MaxQuantity)
	case qty == 0:
		return c.Remove(id), nil
	}
	lines := c.Lines()
	if i := c.indexOf(id); i >= 0 {
		lines[i].Quantity = qty
	}
	return Cart{lines: lines}, nil
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart { return Cart{} }

// Total is the sum of price × quantity over every line.
func (c Cart) Total() core.Money {
	var total core.Money
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
