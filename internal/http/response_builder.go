// Package http serves the demo pages and the per-demo JSON API.
//
// This file holds the fluent builder every handler uses to write JSON
// responses and the mapping from domain errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"showcase/internal/cart"
	"showcase/internal/catalog"
	"showcase/internal/chat"
	"showcase/internal/core"
	"showcase/internal/kanban"
	"showcase/internal/ledger"
	"showcase/internal/rates"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes no content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to w.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	data, err := json.Marshal(b.body)
	if err != nil {
		// Nothing is written yet, so the client still gets a well-formed 500.
		slog.Error("Failed to encode response", "error", err, "status", b.statusCode)
		data, _ = json.Marshal(ErrorBody{Error: "internal error"})
		b.statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(data, '\n'))
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

// ErrorResponse creates a JSON error response with message.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(ErrorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// LoadingResponse tells the client the rates have not arrived yet.
func LoadingResponse() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusServiceUnavailable).
		Header("Retry-After", "5").
		Body(ErrorBody{Error: "exchange rates are loading", Status: "loading"})
}

// TooManyRequestsError is written when the rate limiter rejects a request.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}

var validationErrors = []error{
	errInvalidRequest,
	core.ErrInvalidAmount,
	core.ErrNegativeMoney,
	catalog.ErrUnknownCategory,
	catalog.ErrUnknownSort,
	catalog.ErrPriceOutside,
	cart.ErrInvalidQuantity,
	kanban.ErrEmptyText,
	kanban.ErrUnknownBucket,
	kanban.ErrUnknownPriority,
	ledger.ErrEmptyDescription,
	ledger.ErrDescriptionLong,
	ledger.ErrUnknownType,
	ledger.ErrUnknownCategory,
	ledger.ErrCategoryMismatch,
	ledger.ErrNegativeBudget,
	chat.ErrEmptyMessage,
	rates.ErrUnknownCurrency,
	rates.ErrInvalidAmount,
}

// statusFor maps a domain error to the HTTP status the API reports.
func statusFor(err error) int {
	switch {
	case errors.Is(err, kanban.ErrTaskNotFound), errors.Is(err, errProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, rates.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// ErrorFor builds the response for err. Internal errors hide their text.
func ErrorFor(err error) *JSONResponseBuilder {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		return InternalServerError("internal error")
	}
	return ErrorResponse(status, err.Error())
}
