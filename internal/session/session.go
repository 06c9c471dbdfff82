// Package session keeps per-visitor demo state in memory. Sessions are
// identified by a random cookie value and expire after a period of
// inactivity; nothing is persisted.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"showcase/internal/cache"
	"showcase/internal/catalog"
	"showcase/internal/chat"
	"showcase/internal/core"
	"showcase/internal/rates"
	"showcase/internal/seed"
)

// CookieName is the cookie carrying the session id.
const CookieName = "showcase_session"

// ReplyFunc observes simulated chat replies after they are appended.
type ReplyFunc func(sessionID string, msg chat.Message)

// Session serialises every update to its State with one mutex so events
// apply in the order they arrive.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	state     State
	scheduler *chat.Scheduler
	store     *Store
}

// Update runs fn with exclusive access to the state.
func (s *Session) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// SendChat appends the visitor's message and schedules a reply from a
// random participant after the store's reply delay.
func (s *Session) SendChat(text string) (chat.Message, error) {
	st := s.store
	now := st.now()

	s.mu.Lock()
	room, msg, err := s.state.Chat.Room.Send(text, now)
	if err != nil {
		s.mu.Unlock()
		return chat.Message{}, err
	}
	s.state.Chat.Room = room
	users := room.Users()
	s.mu.Unlock()

	reply, ok := st.responder.Pick(users)
	if !ok {
		return msg, nil
	}
	s.scheduler.After(st.replyDelay, func() {
		s.mu.Lock()
		room, m := s.state.Chat.Room.Receive(reply.Author, reply.Text, st.now())
		s.state.Chat.Room = room
		s.mu.Unlock()
		if st.onReply != nil {
			st.onReply(s.ID, m)
		}
	})
	return msg, nil
}

// PendingReplies is the number of scheduled chat replies not yet delivered.
func (s *Session) PendingReplies() int { return s.scheduler.Pending() }

// close cancels outstanding replies. Must not be called with s.mu held.
func (s *Session) close() {
	s.scheduler.Close()
}

type Options struct {
	MaxSessions int
	TTL         time.Duration
	ReplyDelay  time.Duration
	// Budget overrides the seeded ledger budget when non-zero.
	Budget    core.Money
	Responder *chat.Responder
	OnReply   ReplyFunc
	Logger    *slog.Logger
}

// Store creates sessions from seed data and evicts them when idle or when
// the store is full.
type Store struct {
	seed       *seed.Data
	sessions   *cache.LRUCache[*Session]
	responder  *chat.Responder
	replyDelay time.Duration
	budget     core.Money
	onReply    ReplyFunc
	logger     *slog.Logger
	now        func() time.Time
}

func NewStore(data *seed.Data, opts Options) *Store {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = 2 * time.Second
	}
	if opts.Responder == nil {
		opts.Responder = chat.NewResponder(nil, nil)
	}
	if opts.Budget.IsZero() {
		opts.Budget = data.Budget()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	st := &Store{
		seed:       data,
		responder:  opts.Responder,
		replyDelay: opts.ReplyDelay,
		budget:     opts.Budget,
		onReply:    opts.OnReply,
		logger:     opts.Logger.With("component", "session"),
		now:        time.Now,
	}
	st.sessions = cache.NewLRUCache[*Session](opts.MaxSessions, opts.TTL).
		OnEvict(func(id string, s *Session) {
			s.close()
			st.logger.Debug("Session disposed", "session_id", id)
		})
	return st
}

// Cleaner exposes the session cache to a cache.Manager.
func (st *Store) Cleaner() cache.Cleaner { return st.sessions }

func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return st.sessions.Get(id)
}

// Create starts a new session from the seed data.
func (st *Store) Create() (*Session, error) {
	now := st.now()
	board, err := st.seed.Board(now)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	ledger, err := st.seed.Ledger(now, st.budget)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		scheduler: chat.NewScheduler(),
		store:     st,
		state: State{
			Shop:      Shop{Criteria: catalog.DefaultCriteria()},
			Tasks:     Tasks{Board: board},
			Budget:    Budget{Ledger: ledger},
			Chat:      Chat{Room: st.seed.Room(now)},
			Converter: Converter{Conversion: rates.DefaultConversion()},
		},
	}
	st.sessions.Set(s.ID, s)
	st.logger.Debug("Session created", "session_id", s.ID)
	return s, nil
}

// Resolve returns the session for id, creating a fresh one when id is
// unknown or expired. created reports which happened.
func (st *Store) Resolve(id string) (s *Session, created bool, err error) {
	if s, ok := st.Get(id); ok {
		return s, false, nil
	}
	s, err = st.Create()
	return s, err == nil, err
}

// Delete disposes a session immediately.
func (st *Store) Delete(id string) { st.sessions.Delete(id) }

func (st *Store) Len() int { return st.sessions.Size() }

// Close disposes every session, cancelling their pending chat replies.
func (st *Store) Close() { st.sessions.Purge() }
