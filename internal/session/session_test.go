package session

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"showcase/internal/chat"
	"showcase/internal/core"
	"showcase/internal/kanban"
	"showcase/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	data, err := seed.Default()
	if err != nil {
		t.Fatalf("seed.Default() error = %v", err)
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Responder == nil {
		opts.Responder = chat.NewResponder(rand.New(rand.NewPCG(1, 1)), nil)
	}
	st := NewStore(data, opts)
	t.Cleanup(st.Close)
	return st
}

func TestResolve(t *testing.T) {
	st := newTestStore(t, Options{})

	s, created, err := st.Resolve("")
	if err != nil || !created {
		t.Fatalf("Resolve(\"\") = %v, %v", created, err)
	}
	again, created, _ := st.Resolve(s.ID)
	if created || again != s {
		t.Error("Resolve(existing id) created a new session")
	}
	other, created, _ := st.Resolve("not-a-session")
	if !created || other.ID == s.ID {
		t.Error("Resolve(unknown id) should create a fresh session")
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	st := newTestStore(t, Options{})
	a, _ := st.Create()
	b, _ := st.Create()

	err := a.Update(func(s *State) error {
		var err error
		s.Tasks.Board, err = s.Tasks.Board.Move(1, kanban.Todo, kanban.Done)
		return err
	})
	if err != nil {
		t.Fatalf("Move error = %v", err)
	}

	b.Update(func(s *State) error {
		if n := len(s.Tasks.Board.Tasks(kanban.Todo)); n != 2 {
			t.Errorf("other session todo = %d, want 2", n)
		}
		return nil
	})
}

func TestBudgetOverride(t *testing.T) {
	st := newTestStore(t, Options{Budget: core.Dollars(1000)})
	s, _ := st.Create()
	s.Update(func(state *State) error {
		if got := state.Budget.Ledger.Budget(); got != core.Dollars(1000) {
			t.Errorf("Budget() = %s", got)
		}
		return nil
	})
}

func TestSendChatSchedulesReply(t *testing.T) {
	var mu sync.Mutex
	var replies []chat.Message
	done := make(chan struct{}, 1)

	st := newTestStore(t, Options{
		ReplyDelay: 5 * time.Millisecond,
		OnReply: func(id string, m chat.Message) {
			mu.Lock()
			replies = append(replies, m)
			mu.Unlock()
			done <- struct{}{}
		},
	})
	s, _ := st.Create()

	if _, err := s.SendChat("hi all"); err != nil {
		t.Fatalf("SendChat() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no reply delivered")
	}

	s.Update(func(state *State) error {
		msgs := state.Chat.Room.Messages()
		last := msgs[len(msgs)-1]
		if last.IsOwn || last.Author == chat.Self {
			t.Errorf("last message = %+v, want a reply", last)
		}
		if msgs[len(msgs)-2].Text != "hi all" {
			t.Errorf("own message missing before reply")
		}
		return nil
	})
}

func TestSendChatRejectsBlank(t *testing.T) {
	st := newTestStore(t, Options{})
	s, _ := st.Create()
	if _, err := s.SendChat("  "); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Errorf("SendChat() error = %v", err)
	}
	if s.PendingReplies() != 0 {
		t.Error("blank message scheduled a reply")
	}
}

func TestEvictionCancelsReplies(t *testing.T) {
	st := newTestStore(t, Options{MaxSessions: 1, ReplyDelay: time.Hour})
	first, _ := st.Create()
	if _, err := first.SendChat("hello"); err != nil {
		t.Fatal(err)
	}
	if first.PendingReplies() != 1 {
		t.Fatalf("PendingReplies() = %d", first.PendingReplies())
	}

	st.Create() // evicts first
	if _, ok := st.Get(first.ID); ok {
		t.Error("first session still present")
	}
	if first.PendingReplies() != 0 {
		t.Errorf("evicted session still has %d pending replies", first.PendingReplies())
	}
}
