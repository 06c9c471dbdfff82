package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	applog "showcase/internal/log"
)

func TestMemoryJournalRing(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal(3)

	if got, _ := j.Recent(ctx, 10); len(got) != 0 {
		t.Fatalf("Recent() on empty journal = %v", got)
	}
	for _, kind := range []string{"a", "b", "c", "d"} {
		if _, err := j.Record(ctx, Event{Kind: kind}); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := j.Recent(ctx, 0)
	kinds := make([]string, len(got))
	for i, e := range got {
		kinds[i] = e.Kind
	}
	if diff := cmp.Diff([]string{"d", "c", "b"}, kinds); diff != "" {
		t.Errorf("Recent() mismatch (-want +got):\n%s", diff)
	}
	if got[0].ID != 4 {
		t.Errorf("newest id = %d, want 4", got[0].ID)
	}

	two, _ := j.Recent(ctx, 2)
	if len(two) != 2 || two[1].Kind != "c" {
		t.Errorf("Recent(2) = %+v", two)
	}
}

type failingJournal struct{ *MemoryJournal }

func (f *failingJournal) Record(context.Context, Event) (Event, error) {
	return Event{}, errors.New("disk full")
}

type capturePublisher struct {
	events []Event
	err    error
}

func (c *capturePublisher) PublishActivity(_ context.Context, e Event) error {
	c.events = append(c.events, e)
	return c.err
}

func TestRecorderFansOut(t *testing.T) {
	j := NewMemoryJournal(10)
	pub := &capturePublisher{}
	r := NewRecorder(j, pub, applog.Discard())
	r.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	r.Record(context.Background(), Event{SessionID: "s", Demo: DemoTasks, Kind: KindTaskMoved})

	recent, err := r.Recent(context.Background(), 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("Recent() = %v, %v", recent, err)
	}
	if recent[0].At.IsZero() || recent[0].ID == 0 {
		t.Errorf("journaled event = %+v", recent[0])
	}
	if len(pub.events) != 1 || pub.events[0].ID != recent[0].ID {
		t.Errorf("published = %+v", pub.events)
	}
	if err := r.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestRecorderSwallowsFailures(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	r := NewRecorder(&failingJournal{NewMemoryJournal(1)}, pub, applog.Discard())

	r.Record(context.Background(), Event{Demo: DemoChat, Kind: KindMessageSent})

	if len(pub.events) != 1 {
		t.Errorf("event should still be published when the journal fails")
	}
}

func TestRecorderWithoutPublisher(t *testing.T) {
	r := NewRecorder(NewMemoryJournal(1), nil, applog.Discard())
	r.Record(context.Background(), Event{Kind: KindCartCleared})
	if got, _ := r.Recent(context.Background(), 1); len(got) != 1 {
		t.Errorf("Recent() = %v", got)
	}
}

func TestRecorderOnRecord(t *testing.T) {
	var seen []string
	r := NewRecorder(NewMemoryJournal(4), nil, applog.Discard()).
		OnRecord(func(e Event) { seen = append(seen, e.Demo+"/"+e.Kind) })

	r.Record(context.Background(), Event{Demo: DemoShop, Kind: KindCartAdded})
	r.Record(context.Background(), Event{Demo: DemoConverter, Kind: KindConversionSwapped})

	if diff := cmp.Diff([]string{"shop/cart.added", "converter/conversion.swapped"}, seen); diff != "" {
		t.Errorf("OnRecord mismatch (-want +got):\n%s", diff)
	}
}
