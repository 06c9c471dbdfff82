// Package worker consumes activity events published by the web process
// and copies them into the worker's own journal.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"showcase/internal/activity"
	"showcase/internal/amqp"
)

// Pruner is implemented by journals that can drop old events.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Counter is implemented by journals that can report per-demo counts.
type Counter interface {
	CountByDemo(ctx context.Context) (map[string]int64, error)
}

// ActivityWorker journals consumed messages and keeps per-demo totals.
type ActivityWorker struct {
	journal   activity.Journal
	retention time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	totals map[string]int64
}

func NewActivityWorker(journal activity.Journal, retention time.Duration, logger *slog.Logger) *ActivityWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityWorker{
		journal:   journal,
		retention: retention,
		logger:    logger.With("component", "worker"),
		totals:    make(map[string]int64),
	}
}

// HandleActivity is an amqp.ActivityHandler. Journal failures are returned
// so the message is requeued.
func (w *ActivityWorker) HandleActivity(ctx context.Context, msg *amqp.ActivityMessage) error {
	e := msg.Event
	// The publisher's id belongs to its own journal.
	e.ID = 0
	if _, err := w.journal.Record(ctx, e); err != nil {
		return fmt.Errorf("journal activity: %w", err)
	}

	w.mu.Lock()
	w.totals[e.Demo]++
	w.mu.Unlock()

	w.logger.DebugContext(ctx, "Journaled activity",
		"demo", e.Demo,
		"kind", e.Kind,
		"source", msg.Source,
		"session_id", e.SessionID)
	return nil
}

// RestoreTotals seeds the per-demo totals from the journal so they survive
// a restart. Journals without counts leave the totals at zero.
func (w *ActivityWorker) RestoreTotals(ctx context.Context) error {
	c, ok := w.journal.(Counter)
	if !ok {
		return nil
	}
	counts, err := c.CountByDemo(ctx)
	if err != nil {
		return fmt.Errorf("restore totals: %w", err)
	}
	w.mu.Lock()
	for demo, n := range counts {
		w.totals[demo] = n
	}
	w.mu.Unlock()
	w.logger.InfoContext(ctx, "Restored activity totals", "totals", counts)
	return nil
}

// Totals returns how many events each demo produced.
func (w *ActivityWorker) Totals() map[string]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int64, len(w.totals))
	for k, v := range w.totals {
		out[k] = v
	}
	return out
}

// PruneOld removes events older than the retention window, if the journal
// supports it. It returns the number removed.
func (w *ActivityWorker) PruneOld(ctx context.Context, now time.Time) (int64, error) {
	p, ok := w.journal.(Pruner)
	if !ok || w.retention <= 0 {
		return 0, nil
	}
	n, err := p.Prune(ctx, now.Add(-w.retention))
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	if n > 0 {
		w.logger.InfoContext(ctx, "Pruned old activity", "removed", n, "retention", w.retention)
	}
	return n, nil
}

// RunMaintenance prunes every interval and logs totals until ctx is done.
func (w *ActivityWorker) RunMaintenance(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := w.PruneOld(ctx, now); err != nil {
				w.logger.ErrorContext(ctx, "Journal maintenance failed", "error", err)
			}
			w.logger.InfoContext(ctx, "Activity totals", "totals", w.Totals())
		}
	}
}
