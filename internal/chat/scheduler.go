package chat

import (
	"sync"
	"time"
)

// Scheduler runs delayed callbacks that can be cancelled individually or all
// at once. Once Close returns no callback is running and none will start,
// so a disposed room never receives a late reply.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	nextKey uint64
	closed  bool
	wg      sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[uint64]*time.Timer)}
}

// After schedules fn to run once after d. The returned cancel func is safe
// to call at any time; it reports whether it prevented fn from running.
// After returns ok=false if the scheduler is already closed.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func() bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() bool { return false }, false
	}

	key := s.nextKey
	s.nextKey++
	s.wg.Add(1)
	s.timers[key] = time.AfterFunc(d, func() {
		defer s.wg.Done()
		s.mu.Lock()
		if _, pending := s.timers[key]; !pending || s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})

	return func() bool { return s.cancel(key) }, true
}

func (s *Scheduler) cancel(key uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, pending := s.timers[key]
	if !pending {
		return false
	}
	delete(s.timers, key)
	if t.Stop() {
		s.wg.Done()
	}
	return true
}

// Pending is the number of callbacks that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels every pending callback and waits for running ones to
// return. Callbacks must not call Close themselves.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for key, t := range s.timers {
		delete(s.timers, key)
		if t.Stop() {
			s.wg.Done()
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}
