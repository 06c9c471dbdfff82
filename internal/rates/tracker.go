package rates

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher is the part of Client the Tracker needs.
type Fetcher interface {
	Latest(ctx context.Context, base string) (Snapshot, error)
}

// Tracker caches the last successful snapshot per base currency. Watched
// bases are refreshed on an interval; others are fetched on first use.
// Failed fetches are logged and the previous snapshot keeps serving.
type Tracker struct {
	fetcher  Fetcher
	interval time.Duration
	watch    []string
	logger   *slog.Logger
	onError  func(base string, err error)

	group singleflight.Group

	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewTracker(fetcher Fetcher, interval time.Duration, watch []string, logger *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	norm := make([]string, 0, len(watch))
	for _, w := range watch {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			norm = append(norm, w)
		}
	}
	return &Tracker{
		fetcher:   fetcher,
		interval:  interval,
		watch:     norm,
		logger:    logger.With("component", "rates"),
		snapshots: make(map[string]Snapshot),
	}
}

// OnError registers fn to observe failed refreshes. Call before Run.
func (t *Tracker) OnError(fn func(base string, err error)) *Tracker {
	t.onError = fn
	return t
}

// Snapshot returns the last known rates for base without fetching.
func (t *Tracker) Snapshot(base string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.snapshots[strings.ToUpper(base)]
	return s, ok
}

// Get returns the cached snapshot, fetching it if none exists yet.
func (t *Tracker) Get(ctx context.Context, base string) (Snapshot, error) {
	if s, ok := t.Snapshot(base); ok {
		return s, nil
	}
	return t.Refresh(ctx, base)
}

// Refresh fetches base now. Concurrent refreshes of the same base share one
// request. On failure the last known snapshot, if any, is returned with the error.
func (t *Tracker) Refresh(ctx context.Context, base string) (Snapshot, error) {
	base = strings.ToUpper(base)
	v, err, _ := t.group.Do(base, func() (interface{}, error) {
		s, err := t.fetcher.Latest(ctx, base)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.snapshots[base] = s
		t.mu.Unlock()
		return s, nil
	})
	if err != nil {
		t.logger.Warn("Failed to refresh rates", "base", base, "error", err)
		if t.onError != nil {
			t.onError(base, err)
		}
		last, _ := t.Snapshot(base)
		return last, err
	}
	return v.(Snapshot), nil
}

// Ready reports whether every watched base has a snapshot.
func (t *Tracker) Ready() bool {
	for _, base := range t.watch {
		if _, ok := t.Snapshot(base); !ok {
			return false
		}
	}
	return true
}

// Run refreshes the watched bases immediately and then every interval
// until ctx is cancelled. It always returns nil.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Info("Rates tracker started", "interval", t.interval, "watch", t.watch)
	t.refreshWatched(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Rates tracker stopped")
			return nil
		case <-ticker.C:
			t.refreshWatched(ctx)
		}
	}
}

func (t *Tracker) refreshWatched(ctx context.Context) {
	for _, base := range t.watch {
		if ctx.Err() != nil {
			return
		}
		t.Refresh(ctx, base)
	}
}
