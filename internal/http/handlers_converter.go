package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"showcase/internal/activity"
	applog "showcase/internal/log"
	"showcase/internal/rates"
	"showcase/internal/session"
)

// historyDays is how far back the converter's trend looks.
const historyDays = 7

type converterView struct {
	Conversion rates.Conversion `json:"conversion"`
	FromName   string           `json:"fromName"`
	ToName     string           `json:"toName"`
	Currencies []rates.Currency `json:"currencies"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	History    []rates.Point    `json:"history"`
	Trend      rates.Direction  `json:"trend"`
}

func converterViewOf(c session.Converter, snap rates.Snapshot) converterView {
	history := c.History
	if history == nil {
		history = []rates.Point{}
	}
	return converterView{
		Conversion: c.Conversion,
		FromName:   rates.CurrencyName(c.Conversion.From),
		ToName:     rates.CurrencyName(c.Conversion.To),
		Currencies: rates.Currencies(snap),
		UpdatedAt:  snap.UpdatedAt,
		History:    history,
		Trend:      rates.Trend(c.History),
	}
}

// snapshot returns rates for base. Without any known snapshot the error
// wraps rates.ErrUnavailable so the caller answers with the loading state.
func (s *Server) snapshot(ctx context.Context, base string) (rates.Snapshot, error) {
	if s.rates == nil {
		return rates.Snapshot{}, rates.ErrUnavailable
	}
	snap, err := s.rates.Get(ctx, base)
	if len(snap.Rates) > 0 {
		return snap, nil
	}
	if err == nil {
		err = fmt.Errorf("%w: empty snapshot for %s", rates.ErrUnavailable, base)
	}
	if !errors.Is(err, rates.ErrUnavailable) {
		err = fmt.Errorf("%w: %v", rates.ErrUnavailable, err)
	}
	return rates.Snapshot{}, err
}

func (s *Server) currentConversion(sess *session.Session) rates.Conversion {
	var conv rates.Conversion
	_ = sess.Update(func(st *session.State) error {
		conv = st.Converter.Conversion
		return nil
	})
	return conv
}

// applyConversion recomputes conv from snap and stores it, dropping the
// history when the currency pair changed.
func (s *Server) applyConversion(w http.ResponseWriter, r *http.Request, sess *session.Session, conv rates.Conversion, snap rates.Snapshot) bool {
	applied, err := conv.Apply(snap)
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	var view converterView
	_ = sess.Update(func(st *session.State) error {
		old := st.Converter.Conversion
		if old.From != applied.From || old.To != applied.To {
			st.Converter.History = nil
		}
		st.Converter.Conversion = applied
		view = converterViewOf(st.Converter, snap)
		return nil
	})
	NewJSONResponse().Body(view).Write(w)
	return true
}

// storePending keeps conv without a result while the rates are missing.
func storePending(sess *session.Session, conv rates.Conversion) {
	conv.Result = 0
	_ = sess.Update(func(st *session.State) error {
		old := st.Converter.Conversion
		if old.From != conv.From || old.To != conv.To {
			st.Converter.History = nil
		}
		st.Converter.Conversion = conv
		return nil
	})
}

func (s *Server) handleConverter(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conv := s.currentConversion(sess)
	snap, err := s.snapshot(r.Context(), conv.From)
	if err != nil {
		LoadingResponse().Write(w)
		return
	}
	s.applyConversion(w, r, sess, conv, snap)
}

type conversionRequest struct {
	From   string   `json:"fromCurrency" validate:"required,len=3,alpha"`
	To     string   `json:"toCurrency" validate:"required,len=3,alpha"`
	Amount *float64 `json:"amount" validate:"required,gte=0,lte=1e12"`
}

func (s *Server) handleConverterUpdate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req conversionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	conv := rates.Conversion{
		From:   strings.ToUpper(req.From),
		To:     strings.ToUpper(req.To),
		Amount: *req.Amount,
	}
	if err := s.checkKnown(sess, conv.From); err != nil {
		s.fail(w, r, err)
		return
	}

	detail := fmt.Sprintf("%g %s->%s", conv.Amount, conv.From, conv.To)
	snap, err := s.snapshot(r.Context(), conv.From)
	if err != nil {
		storePending(sess, conv)
		s.record(r, sess, activity.DemoConverter, activity.KindConversionChanged, detail)
		LoadingResponse().Write(w)
		return
	}
	if s.applyConversion(w, r, sess, conv, snap) {
		s.record(r, sess, activity.DemoConverter, activity.KindConversionChanged, detail)
	}
}

// checkKnown rejects a base currency that the snapshot of the current base
// does not list, so a typo does not leave the converter loading forever.
// With no snapshot at hand the code is let through.
func (s *Server) checkKnown(sess *session.Session, code string) error {
	if s.rates == nil {
		return nil
	}
	current := s.currentConversion(sess).From
	snap, ok := s.rates.Snapshot(current)
	if !ok || strings.EqualFold(snap.Base, code) {
		return nil
	}
	if _, known := snap.Rate(code); !known {
		return fmt.Errorf("%w: %s", rates.ErrUnknownCurrency, code)
	}
	return nil
}

// handleConverterSwap exchanges the currencies and recomputes the result
// against the new base.
func (s *Server) handleConverterSwap(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conv := s.currentConversion(sess).Swap()
	detail := conv.From + "->" + conv.To

	snap, err := s.snapshot(r.Context(), conv.From)
	if err != nil {
		storePending(sess, conv)
		s.record(r, sess, activity.DemoConverter, activity.KindConversionSwapped, detail)
		LoadingResponse().Write(w)
		return
	}
	if s.applyConversion(w, r, sess, conv, snap) {
		s.record(r, sess, activity.DemoConverter, activity.KindConversionSwapped, detail)
	}
}

type historyView struct {
	From   string          `json:"fromCurrency"`
	To     string          `json:"toCurrency"`
	Points []rates.Point   `json:"points"`
	Trend  rates.Direction `json:"trend"`
}

// handleConverterHistory loads the last days of rates for the current pair.
func (s *Server) handleConverterHistory(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if s.history == nil {
		LoadingResponse().Write(w)
		return
	}
	conv := s.currentConversion(sess)
	to := s.now()
	from := to.AddDate(0, 0, -historyDays)

	points, err := s.history.History(r.Context(), conv.From, conv.To, from, to)
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRates).WarnContext(r.Context(),
			"Failed to load rate history", "base", conv.From, "target", conv.To, "error", err)
		s.fail(w, r, fmt.Errorf("%w: %v", rates.ErrUnavailable, err))
		return
	}
	if points == nil {
		points = []rates.Point{}
	}

	_ = sess.Update(func(st *session.State) error {
		cur := st.Converter.Conversion
		if cur.From == conv.From && cur.To == conv.To {
			st.Converter.History = points
		}
		return nil
	})
	NewJSONResponse().Body(historyView{
		From:   conv.From,
		To:     conv.To,
		Points: points,
		Trend:  rates.Trend(points),
	}).Write(w)
}
