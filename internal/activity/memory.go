package activity

import (
	"context"
	"sync"
)

// MemoryJournal keeps the last size events in a ring buffer.
type MemoryJournal struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
	lastID int64
}

func NewMemoryJournal(size int) *MemoryJournal {
	if size < 1 {
		size = 1
	}
	return &MemoryJournal{events: make([]Event, size)}
}

func (m *MemoryJournal) Record(_ context.Context, e Event) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	e.ID = m.lastID
	m.events[m.next] = e
	m.next = (m.next + 1) % len(m.events)
	if m.next == 0 {
		m.full = true
	}
	return e, nil
}

func (m *MemoryJournal) Recent(_ context.Context, limit int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.next
	if m.full {
		n = len(m.events)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.events)) % len(m.events)
		out = append(out, m.events[idx])
	}
	return out, nil
}

func (m *MemoryJournal) Ping(context.Context) error { return nil }

func (m *MemoryJournal) Close() error { return nil }
