package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/reviewbot/core/logger"
	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Options configures the in-memory manager.
type Options struct {
	// TTL bounds how long an untouched session survives; 0 keeps sessions forever.
	TTL time.Duration
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

type memoryManager[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]*Session[T]
	ttl      time.Duration
	now      func() time.Time

	handlersMu sync.RWMutex
	handlers   map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager.
func NewMemoryManager[T any](opts Options) Manager[T] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &memoryManager[T]{
		sessions: make(map[int64]*Session[T]),
		ttl:      opts.TTL,
		now:      now,
		handlers: make(map[State]tele.HandlerFunc),
	}
}

func (m *memoryManager[T]) expired(s *Session[T], now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.UpdatedAt) > m.ttl
}

// live returns the session if it exists and has not expired. Callers hold mu.
func (m *memoryManager[T]) live(userID int64) (*Session[T], bool) {
	s, ok := m.sessions[userID]
	if !ok || m.expired(s, m.now()) {
		return nil, false
	}
	return s, true
}

func (m *memoryManager[T]) Start(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session[T]{State: st, UpdatedAt: m.now()}
}

func (m *memoryManager[T]) Get(userID int64) (Session[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.live(userID); ok {
		return *s, true
	}
	return Session[T]{State: StateIdle}, false
}

// Advance applies fn and moves the session to next only if it is still in from.
func (m *memoryManager[T]) Advance(userID int64, from, next State, fn func(*T)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(userID)
	if !ok || s.State != from {
		return false
	}
	if fn != nil {
		fn(&s.Data)
	}
	s.State = next
	s.UpdatedAt = m.now()
	return true
}

// Take removes and returns the session data if the session is in st.
// Of two concurrent callers at most one gets ok.
func (m *memoryManager[T]) Take(userID int64, st State) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(userID)
	if !ok || s.State != st {
		var zero T
		return zero, false
	}
	delete(m.sessions, userID)
	return s.Data, true
}

func (m *memoryManager[T]) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryManager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	n := 0
	for _, s := range m.sessions {
		if !m.expired(s, now) {
			n++
		}
	}
	return n
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager[T]) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.live(userID); ok {
		return s.State
	}
	return StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager[T]) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

func (m *memoryManager[T]) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[st] = h
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (m *memoryManager[T]) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	current := m.GetState(sender.ID)
	ctx := tghelpers.BuildContext(c)

	m.handlersMu.RLock()
	handler, ok := m.handlers[current]
	m.handlersMu.RUnlock()

	status := "ok"
	if !ok {
		status = "skip"
	}
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", status),
		slog.Int64("user_id", sender.ID),
		slog.String("state", string(current)),
	)
	if !ok {
		return nil
	}
	return handler(c)
}

func (m *memoryManager[T]) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper[T any](ctx context.Context, mgr Manager[T], every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mgr.Sweep(); n > 0 {
				logger.Info(ctx, "tg", "fsm.expired",
					slog.Int("count", n),
					slog.Int("active", mgr.Len()),
				)
			}
		}
	}
}
