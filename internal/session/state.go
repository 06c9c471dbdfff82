package session

import (
	"showcase/internal/cart"
	"showcase/internal/catalog"
	"showcase/internal/chat"
	"showcase/internal/kanban"
	"showcase/internal/ledger"
	"showcase/internal/rates"
)

// Shop is the storefront demo: filter criteria over the shared catalog and
// the session's cart.
type Shop struct {
	Criteria catalog.FilterCriteria
	Cart     cart.Cart
	view     catalog.View
}

// Visible returns the filtered and sorted products for the current criteria.
func (s *Shop) Visible(c *catalog.Catalog) []catalog.Product {
	return s.view.Visible(c, s.Criteria)
}

type Tasks struct {
	Board kanban.Board
}

type Budget struct {
	Ledger ledger.Ledger
}

type Chat struct {
	Room chat.Room
}

type Converter struct {
	Conversion rates.Conversion
	History    []rates.Point
}

// State is everything a session owns. It is only touched under the
// session lock.
type State struct {
	Shop      Shop
	Tasks     Tasks
	Budget    Budget
	Chat      Chat
	Converter Converter
}
