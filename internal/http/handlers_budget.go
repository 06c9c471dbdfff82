package http

import (
	"fmt"
	"net/http"

	"showcase/internal/activity"
	"showcase/internal/core"
	"showcase/internal/ledger"
	"showcase/internal/session"
)

type budgetView struct {
	Budget         core.Money             `json:"budget"`
	Summary        ledger.MonthSummary    `json:"summary"`
	CategoryTotals []ledger.CategoryTotal `json:"categoryTotals"`
	Categories     []ledger.Category      `json:"categories"`
	Transactions   []ledger.Transaction   `json:"transactions"`
}

func (s *Server) budgetViewOf(l ledger.Ledger) budgetView {
	return budgetView{
		Budget:         l.Budget(),
		Summary:        l.Summary(s.now()),
		CategoryTotals: l.CategoryTotals(),
		Categories:     l.Categories(),
		Transactions:   l.Recent(),
	}
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(*session.State) error) bool {
	var view budgetView
	err := sess.Update(func(st *session.State) error {
		if err := fn(st); err != nil {
			return err
		}
		view = s.budgetViewOf(st.Budget.Ledger)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	NewJSONResponse().Body(view).Write(w)
	return true
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.updateBudget(w, r, sess, func(*session.State) error { return nil })
}

type transactionRequest struct {
	Type        string `json:"type" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	CategoryID  int    `json:"categoryId" validate:"required"`
	Description string `json:"description" validate:"required,max=200"`
}

// handleTransactionAdd appends a transaction. Amounts are decimal strings
// such as "12.50" so no float rounding reaches the ledger.
func (s *Server) handleTransactionAdd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	draft := ledger.Draft{
		Type:        ledger.Type(req.Type),
		Amount:      core.Money{Cents: cents},
		CategoryID:  req.CategoryID,
		Description: sanitizeInput(req.Description),
	}

	var tx ledger.Transaction
	ok := s.updateBudget(w, r, sess, func(st *session.State) error {
		next, t, err := st.Budget.Ledger.Add(draft, s.now())
		if err != nil {
			return err
		}
		st.Budget.Ledger, tx = next, t
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoBudget, activity.KindTransactionAdded,
			fmt.Sprintf("id=%d %s %s category=%d", tx.ID, tx.Type, tx.Amount, tx.CategoryID))
	}
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok := s.updateBudget(w, r, sess, func(st *session.State) error {
		st.Budget.Ledger = st.Budget.Ledger.Delete(id)
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoBudget, activity.KindTransactionDeleted, fmt.Sprintf("id=%d", id))
	}
}

type budgetLimitRequest struct {
	Budget string `json:"budget" validate:"required"`
}

func (s *Server) handleBudgetLimit(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req budgetLimitRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	budget, err := core.ParseMoney(req.Budget)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok := s.updateBudget(w, r, sess, func(st *session.State) error {
		next, err := st.Budget.Ledger.SetBudget(budget)
		if err != nil {
			return err
		}
		st.Budget.Ledger = next
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoBudget, activity.KindBudgetChanged, budget.String())
	}
}
