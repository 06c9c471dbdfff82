package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required,max=5"`
	Count *int   `json:"count" validate:"required,gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"abc","count":2}`, ""},
		{"empty body", ``, "empty body"},
		{"malformed", `{"name":`, "invalid request"},
		{"unknown field", `{"name":"a","count":1,"extra":true}`, "unknown field"},
		{"missing required", `{"count":1}`, "name is required"},
		{"too long", `{"name":"abcdefg","count":1}`, "name must be at most 5"},
		{"missing pointer", `{"name":"a"}`, "count is required"},
		{"negative", `{"name":"a","count":-1}`, "count must be 0 or more"},
		{"trailing data", `{"name":"a","count":1} {}`, "trailing data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("DecodeJSON() error = %v, want containing %q", err, tt.wantErr)
			}
			if !errors.Is(err, errInvalidRequest) {
				t.Errorf("error %v does not wrap errInvalidRequest", err)
			}
		})
	}
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	big := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `","count":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	var dst sampleRequest
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst); !errors.Is(err, errInvalidRequest) {
		t.Fatalf("DecodeJSON() error = %v, want errInvalidRequest", err)
	}
}

func TestPathInt64(t *testing.T) {
	mux := http.NewServeMux()
	var got int64
	var gotErr error
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = PathInt64(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1712345678901", nil))
	if gotErr != nil || got != 1712345678901 {
		t.Errorf("PathInt64 = %d, %v", got, gotErr)
	}

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	if !errors.Is(gotErr, errInvalidRequest) {
		t.Errorf("PathInt64(abc) error = %v", gotErr)
	}
}

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"?limit=5", 5},
		{"?limit=500", 100},
		{"?limit=0", 20},
		{"?limit=-3", 20},
		{"?limit=ten", 20},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/activity"+tt.query, nil)
		if got := QueryLimit(req, 20, 100); got != tt.want {
			t.Errorf("QueryLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestDollarsToMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1000, 100000},
		{12.345, 1235},
		{0.1 + 0.2, 30},
	}
	for _, tt := range tests {
		if got := DollarsToMoney(tt.in).Cents; got != tt.want {
			t.Errorf("DollarsToMoney(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hi\x00 there\x07\n "); got != "hi there" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
