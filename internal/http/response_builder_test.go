package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"showcase/internal/cart"
	"showcase/internal/chat"
	"showcase/internal/kanban"
	"showcase/internal/ledger"
	"showcase/internal/rates"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "yes").
		Body(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("X-Test"); got != "yes" {
		t.Errorf("X-Test = %q", got)
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["n"] != 1 {
		t.Errorf("body = %s (%v)", w.Body.String(), err)
	}
}

func TestJSONResponseBuilderNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Allow") != "GET, POST" {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestJSONResponseBuilderEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]float64{"result": math.Inf(1)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error != "internal error" {
		t.Errorf("body = %s (%v)", w.Body.String(), err)
	}
}

func TestLoadingResponse(t *testing.T) {
	w := httptest.NewRecorder()
	LoadingResponse().Write(w)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "loading" {
		t.Errorf("status field = %q, want loading", body.Status)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("move: %w", kanban.ErrTaskNotFound), http.StatusNotFound},
		{errProductNotFound, http.StatusNotFound},
		{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{kanban.ErrUnknownBucket, http.StatusUnprocessableEntity},
		{ledger.ErrCategoryMismatch, http.StatusUnprocessableEntity},
		{chat.ErrEmptyMessage, http.StatusUnprocessableEntity},
		{rates.ErrUnknownCurrency, http.StatusUnprocessableEntity},
		{rates.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{ledger.ErrDescriptionLong, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: bad json", errInvalidRequest), http.StatusUnprocessableEntity},
		{rates.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorForHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorFor(errors.New("secret path /var/lib/x")).Write(w)

	var body ErrorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != "internal error" {
		t.Errorf("error = %q, want generic message", body.Error)
	}
}
