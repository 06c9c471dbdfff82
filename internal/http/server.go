package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"showcase/internal/activity"
	applog "showcase/internal/log"
	"showcase/internal/metrics"
	"showcase/internal/middleware/ratelimit"
	"showcase/internal/middleware/security"
	"showcase/internal/middleware/trace"
	"showcase/internal/rates"
	"showcase/internal/seed"
	"showcase/internal/session"
	appweb "showcase/web"
)

// ActivityRecorder journals demo mutations. *activity.Recorder satisfies it.
type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Event)
	Recent(ctx context.Context, limit int) ([]activity.Event, error)
	Ping(ctx context.Context) error
}

// RatesSource serves exchange rate snapshots. *rates.Tracker satisfies it.
type RatesSource interface {
	Snapshot(base string) (rates.Snapshot, bool)
	Get(ctx context.Context, base string) (rates.Snapshot, error)
}

// HistorySource serves daily rate history. *rates.Client satisfies it.
type HistorySource interface {
	History(ctx context.Context, base, target string, from, to time.Time) ([]rates.Point, error)
}

type Options struct {
	Seed       *seed.Data
	Sessions   *session.Store
	SessionTTL time.Duration
	Activity   ActivityRecorder
	Rates      RatesSource
	History    HistorySource
	// Limiter throttles mutating requests when set. The caller runs it.
	Limiter *ratelimit.Limiter
	Metrics *metrics.Collector
	Logger  *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template

	seed       *seed.Data
	sessions   *session.Store
	sessionTTL time.Duration
	activity   ActivityRecorder
	rates      RatesSource
	history    HistorySource
	metrics    *metrics.Collector
	logger     *applog.Logger
	detector   *security.Detector

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Seed == nil || opts.Sessions == nil || opts.Activity == nil {
		return nil, fmt.Errorf("new server: seed, sessions and activity are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:  t,
		seed:       opts.Seed,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
		activity:   opts.Activity,
		rates:      opts.Rates,
		history:    opts.History,
		metrics:    opts.Metrics,
		logger:     opts.Logger.WithComponent(applog.ComponentHTTP),
		detector:   security.NewDetector().OnSuspicious(opts.Metrics.SuspiciousRequests.Inc),
		started:    time.Now(),
		now:        time.Now,
	}
	s.metrics.Gauge("sessions_active", "Live demo sessions", func() float64 {
		return float64(s.sessions.Len())
	})

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	if opts.Limiter != nil {
		handler = opts.Limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(handler)
	}
	handler = s.detector.Middleware(handler)
	handler = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger, s.metrics).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /projects/{id}", s.handleProject)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/activity", s.handleActivity)
	mux.HandleFunc("DELETE /api/session", s.handleResetSession)

	mux.HandleFunc("GET /api/shop", s.withSession(s.handleShop))
	mux.HandleFunc("PUT /api/shop/filter", s.withSession(s.handleShopFilter))
	mux.HandleFunc("POST /api/shop/cart", s.withSession(s.handleCartAdd))
	mux.HandleFunc("PUT /api/shop/cart/{id}", s.withSession(s.handleCartQuantity))
	mux.HandleFunc("DELETE /api/shop/cart/{id}", s.withSession(s.handleCartRemove))
	mux.HandleFunc("DELETE /api/shop/cart", s.withSession(s.handleCartClear))

	mux.HandleFunc("GET /api/tasks", s.withSession(s.handleTasks))
	mux.HandleFunc("POST /api/tasks", s.withSession(s.handleTaskAdd))
	mux.HandleFunc("POST /api/tasks/{id}/move", s.withSession(s.handleTaskMove))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.withSession(s.handleTaskDelete))

	mux.HandleFunc("GET /api/budget", s.withSession(s.handleBudget))
	mux.HandleFunc("POST /api/budget/transactions", s.withSession(s.handleTransactionAdd))
	mux.HandleFunc("DELETE /api/budget/transactions/{id}", s.withSession(s.handleTransactionDelete))
	mux.HandleFunc("PUT /api/budget/limit", s.withSession(s.handleBudgetLimit))

	mux.HandleFunc("GET /api/chat", s.withSession(s.handleChat))
	mux.HandleFunc("POST /api/chat/messages", s.withSession(s.handleChatSend))

	mux.HandleFunc("GET /api/converter", s.withSession(s.handleConverter))
	mux.HandleFunc("PUT /api/converter", s.withSession(s.handleConverterUpdate))
	mux.HandleFunc("POST /api/converter/swap", s.withSession(s.handleConverterSwap))
	mux.HandleFunc("GET /api/converter/history", s.withSession(s.handleConverterHistory))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves the caller's session from the cookie, creating one
// when it is missing or expired, and refreshes the cookie so its lifetime
// follows the session's idle timeout.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(session.CookieName); err == nil {
			id = c.Value
		}
		sess, created, err := s.sessions.Resolve(id)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to create session", "error", err)
			InternalServerError("could not start a session").Write(w)
			return
		}
		http.SetCookie(w, sessionCookie(sess.ID, s.sessionTTL, r.TLS != nil))

		logger := applog.FromContext(r.Context()).With(applog.FieldSessionID, sess.ID)
		if created {
			logger.DebugContext(r.Context(), "Session started")
		}
		next(w, r.WithContext(applog.NewContext(r.Context(), logger)), sess)
	}
}

// record journals a mutation of sess.
func (s *Server) record(r *http.Request, sess *session.Session, demo, kind, detail string) {
	s.activity.Record(r.Context(), activity.Event{
		SessionID: sess.ID,
		Demo:      demo,
		Kind:      kind,
		Detail:    detail,
		At:        s.now(),
	})
}

// fail writes the response for err, logging only unexpected failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err)
	}
	ErrorFor(err).Write(w)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited.Inc()
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// disposes every session so no chat reply fires afterwards.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		s.sessions.Close()
	})
	return err
}
