package rates

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakeFetcher struct {
	calls atomic.Int32
	mu    sync.Mutex
	err   error
	block chan struct{}
}

func (f *fakeFetcher) Latest(ctx context.Context, base string) (Snapshot, error) {
	n := f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Snapshot{}, f.err
	}
	return Snapshot{Base: base, Rates: map[string]float64{"EUR": float64(n)}}, nil
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTrackerKeepsLastKnown(t *testing.T) {
	f := &fakeFetcher{}
	tr := NewTracker(f, time.Minute, nil, quietLogger())

	first, err := tr.Get(context.Background(), "usd")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := tr.Get(context.Background(), "USD"); err != nil || f.calls.Load() != 1 {
		t.Fatalf("Get() should be served from cache, calls = %d", f.calls.Load())
	}

	boom := errors.New("boom")
	f.fail(boom)
	var failed []string
	tr.OnError(func(base string, err error) { failed = append(failed, base) })
	got, err := tr.Refresh(context.Background(), "USD")
	if !errors.Is(err, boom) {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got.Rates["EUR"] != first.Rates["EUR"] {
		t.Errorf("Refresh() on failure = %v, want last known %v", got.Rates, first.Rates)
	}
	if len(failed) != 1 || failed[0] != "USD" {
		t.Errorf("OnError saw %v, want [USD]", failed)
	}
	if s, ok := tr.Snapshot("USD"); !ok || s.Rates["EUR"] != 1 {
		t.Errorf("Snapshot() = %v, %v", s, ok)
	}
}

func TestTrackerDeduplicatesRefresh(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	tr := NewTracker(f, time.Minute, nil, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Refresh(context.Background(), "EUR")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(f.block)
	wg.Wait()

	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestTrackerRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{}
	tr := NewTracker(f, 10*time.Millisecond, []string{"usd", " eur "}, quietLogger())
	if tr.Ready() {
		t.Fatal("Ready() before first refresh")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if !tr.Ready() {
		t.Error("Ready() = false after refreshes")
	}
	if f.calls.Load() < 4 {
		t.Errorf("fetch calls = %d, want periodic refreshes", f.calls.Load())
	}
}
