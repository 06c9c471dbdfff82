package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	applog "showcase/internal/log"
	"showcase/internal/metrics"
)

func TestMiddlewareTagsRequestAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.NewText(&buf, slog.LevelDebug, applog.ComponentHTTP)
	collector := metrics.New()
	m := NewMiddleware(func(*http.Request) string { return "10.1.2.3" }, logger, collector)

	var seenID string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		applog.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	m.Middleware(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(seenID, "req_") {
		t.Errorf("request id = %q, want req_ prefix", seenID)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seenID {
		t.Errorf("%s header = %q, want %q", RequestIDHeader, got, seenID)
	}

	out := buf.String()
	for _, want := range []string{"HTTP request started", "HTTP request completed", "status_code=418", "client_ip=10.1.2.3", "request_id=" + seenID} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", "GET /items/{id}", "418"))
	if got != 1 {
		t.Errorf("requests counter = %v, want 1", got)
	}
}

func TestUnmatchedRoute(t *testing.T) {
	collector := metrics.New()
	m := NewMiddleware(nil, applog.Discard(), collector)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/whatever", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", "unmatched", "200")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
