package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"showcase/internal/activity"
	"showcase/internal/amqp"
	"showcase/internal/storage"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHandleActivity(t *testing.T) {
	j := activity.NewMemoryJournal(10)
	w := NewActivityWorker(j, 0, quiet())
	ctx := context.Background()

	for _, demo := range []string{activity.DemoShop, activity.DemoShop, activity.DemoChat} {
		msg := amqp.NewActivityMessage(activity.Event{ID: 42, Demo: demo, Kind: "x"}, "showcase")
		if err := w.HandleActivity(ctx, msg); err != nil {
			t.Fatalf("HandleActivity() error = %v", err)
		}
	}

	recent, _ := j.Recent(ctx, 10)
	if len(recent) != 3 {
		t.Fatalf("journaled %d events", len(recent))
	}
	if recent[0].ID != 3 {
		t.Errorf("worker journal should assign its own ids, got %d", recent[0].ID)
	}
	totals := w.Totals()
	if totals[activity.DemoShop] != 2 || totals[activity.DemoChat] != 1 {
		t.Errorf("Totals() = %v", totals)
	}
}

type brokenJournal struct{ *activity.MemoryJournal }

func (brokenJournal) Record(context.Context, activity.Event) (activity.Event, error) {
	return activity.Event{}, errors.New("locked")
}

func TestHandleActivityRequeuesOnFailure(t *testing.T) {
	w := NewActivityWorker(brokenJournal{activity.NewMemoryJournal(1)}, 0, quiet())
	err := w.HandleActivity(context.Background(), amqp.NewActivityMessage(activity.Event{Demo: "shop", Kind: "x"}, "t"))
	if err == nil {
		t.Fatal("HandleActivity() error = nil")
	}
	if len(w.Totals()) != 0 {
		t.Error("failed message was counted")
	}
}

func TestPruneOld(t *testing.T) {
	j, err := storage.NewSQLiteJournal(filepath.Join(t.TempDir(), "w.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	j.Record(ctx, activity.Event{Demo: "shop", Kind: "old", At: now.Add(-48 * time.Hour)})
	j.Record(ctx, activity.Event{Demo: "shop", Kind: "new", At: now.Add(-time.Hour)})

	w := NewActivityWorker(j, 24*time.Hour, quiet())
	n, err := w.PruneOld(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("PruneOld() = %d, %v", n, err)
	}
	left, _ := j.Recent(ctx, 10)
	if len(left) != 1 || left[0].Kind != "new" {
		t.Errorf("remaining = %+v", left)
	}

	mem := NewActivityWorker(activity.NewMemoryJournal(1), time.Hour, quiet())
	if n, err := mem.PruneOld(ctx, now); n != 0 || err != nil {
		t.Errorf("PruneOld() on memory journal = %d, %v", n, err)
	}
}

func TestRestoreTotals(t *testing.T) {
	j, err := storage.NewSQLiteJournal(filepath.Join(t.TempDir(), "w.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	ctx := context.Background()
	for _, demo := range []string{activity.DemoShop, activity.DemoShop, activity.DemoChat} {
		if _, err := j.Record(ctx, activity.Event{Demo: demo, Kind: "x", At: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}

	w := NewActivityWorker(j, 0, quiet())
	if err := w.RestoreTotals(ctx); err != nil {
		t.Fatalf("RestoreTotals() error = %v", err)
	}
	msg := amqp.NewActivityMessage(activity.Event{Demo: activity.DemoChat, Kind: "y"}, "showcase")
	if err := w.HandleActivity(ctx, msg); err != nil {
		t.Fatal(err)
	}
	totals := w.Totals()
	if totals[activity.DemoShop] != 2 || totals[activity.DemoChat] != 2 {
		t.Errorf("Totals() = %v", totals)
	}

	mem := NewActivityWorker(activity.NewMemoryJournal(1), 0, quiet())
	if err := mem.RestoreTotals(ctx); err != nil || len(mem.Totals()) != 0 {
		t.Errorf("RestoreTotals() on memory journal = %v, %v", mem.Totals(), err)
	}
}
