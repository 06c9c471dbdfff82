package activity

import (
	"context"
	"time"

	applog "showcase/internal/log"
)

// Recorder logs, journals and publishes events. Failures are logged and
// never reach the caller: a broken journal must not break a demo.
type Recorder struct {
	journal    Journal
	publisher  Publisher
	logger     *applog.Logger
	structured *applog.StructuredLogger
	onRecord   func(Event)
	now        func() time.Time
}

// NewRecorder wires a journal and an optional publisher.
func NewRecorder(journal Journal, publisher Publisher, logger *applog.Logger) *Recorder {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Recorder{
		journal:    journal,
		publisher:  publisher,
		logger:     logger.WithComponent(applog.ComponentActivity),
		structured: applog.NewStructuredLogger(logger),
		now:        time.Now,
	}
}

// OnRecord registers fn to observe every event. Call before use.
func (r *Recorder) OnRecord(fn func(Event)) *Recorder {
	r.onRecord = fn
	return r
}

// Record stamps e with the current time when unset and fans it out.
func (r *Recorder) Record(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = r.now()
	}
	r.structured.LogActivity(ctx, e.SessionID, e.Demo, e.Kind, e.Detail)
	if r.onRecord != nil {
		r.onRecord(e)
	}

	stored, err := r.journal.Record(ctx, e)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to journal activity", "error", err, applog.FieldEventKind, e.Kind)
		stored = e
	}

	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishActivity(ctx, stored); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish activity", "error", err, applog.FieldEventKind, e.Kind)
	}
}

// Recent lists the newest events from the journal.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	return r.journal.Recent(ctx, limit)
}

// Ping checks the journal is reachable.
func (r *Recorder) Ping(ctx context.Context) error {
	return r.journal.Ping(ctx)
}
