package http

import (
	"fmt"
	"net/http"

	"showcase/internal/activity"
	"showcase/internal/cart"
	"showcase/internal/catalog"
	"showcase/internal/core"
	"showcase/internal/session"
)

type cartLineView struct {
	cart.Line
	Subtotal core.Money `json:"subtotal"`
}

type cartView struct {
	Lines []cartLineView `json:"lines"`
	Total core.Money     `json:"total"`
	Count int            `json:"count"`
}

type shopView struct {
	Criteria   catalog.FilterCriteria `json:"criteria"`
	Categories []catalog.Category     `json:"categories"`
	MaxPrice   core.Money             `json:"maxPrice"`
	Products   []catalog.Product      `json:"products"`
	Cart       cartView               `json:"cart"`
}

// shopViewOf derives everything the storefront shows from st. Call it with
// the session lock held.
func (s *Server) shopViewOf(st *session.State) shopView {
	products := st.Shop.Visible(s.seed.Catalog())
	visible := make([]catalog.Product, len(products))
	copy(visible, products)

	lines := st.Shop.Cart.Lines()
	cv := cartView{
		Lines: make([]cartLineView, 0, len(lines)),
		Total: st.Shop.Cart.Total(),
		Count: st.Shop.Cart.Count(),
	}
	for _, l := range lines {
		cv.Lines = append(cv.Lines, cartLineView{Line: l, Subtotal: l.Subtotal()})
	}

	return shopView{
		Criteria:   st.Shop.Criteria,
		Categories: append([]catalog.Category{catalog.AllCategories}, catalog.Categories()...),
		MaxPrice:   catalog.MaxPrice,
		Products:   visible,
		Cart:       cv,
	}
}

// updateShop applies fn under the session lock and answers with the
// re-derived storefront.
func (s *Server) updateShop(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(*session.State) error) bool {
	var view shopView
	err := sess.Update(func(st *session.State) error {
		if err := fn(st); err != nil {
			return err
		}
		view = s.shopViewOf(st)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	NewJSONResponse().Body(view).Write(w)
	return true
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.updateShop(w, r, sess, func(*session.State) error { return nil })
}

type filterRequest struct {
	Category string   `json:"category" validate:"required"`
	PriceMax *float64 `json:"priceMax" validate:"required"`
	SortBy   string   `json:"sortBy"`
}

func (s *Server) handleShopFilter(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req filterRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	criteria := catalog.FilterCriteria{
		Category: catalog.Category(req.Category),
		PriceMax: DollarsToMoney(*req.PriceMax),
		SortBy:   catalog.SortKey(req.SortBy),
	}
	if err := criteria.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	ok := s.updateShop(w, r, sess, func(st *session.State) error {
		st.Shop.Criteria = criteria
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoShop, activity.KindFilterChanged,
			fmt.Sprintf("category=%s max=%s sort=%s", criteria.Category, criteria.PriceMax, criteria.SortBy))
	}
}

type cartAddRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req cartAddRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, found := s.seed.Catalog().Lookup(req.ProductID)
	if !found {
		s.fail(w, r, fmt.Errorf("%w: %d", errProductNotFound, req.ProductID))
		return
	}
	ok := s.updateShop(w, r, sess, func(st *session.State) error {
		st.Shop.Cart = st.Shop.Cart.Add(p)
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoShop, activity.KindCartAdded, fmt.Sprintf("product=%d", p.ID))
	}
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// handleCartQuantity sets a line's quantity. Zero removes the line; a
// negative quantity or one above cart.MaxQuantity is refused without
// touching the cart.
func (s *Server) handleCartQuantity(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := PathInt(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req quantityRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	ok := s.updateShop(w, r, sess, func(st *session.State) error {
		next, err := st.Shop.Cart.SetQuantity(id, *req.Quantity)
		if err != nil {
			return err
		}
		st.Shop.Cart = next
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoShop, activity.KindCartQuantity, fmt.Sprintf("product=%d qty=%d", id, *req.Quantity))
	}
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := PathInt(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok := s.updateShop(w, r, sess, func(st *session.State) error {
		st.Shop.Cart = st.Shop.Cart.Remove(id)
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoShop, activity.KindCartRemoved, fmt.Sprintf("product=%d", id))
	}
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if s.updateShop(w, r, sess, func(st *session.State) error {
		st.Shop.Cart = st.Shop.Cart.Clear()
		return nil
	}) {
		s.record(r, sess, activity.DemoShop, activity.KindCartCleared, "")
	}
}
