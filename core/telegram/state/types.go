package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and the draft collected so far for a user.
type Session[T any] struct {
	State     State
	Data      T
	UpdatedAt time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager[T any] interface {
	// Start replaces any existing session with a fresh one in the given state.
	Start(userID int64, st State)
	Get(userID int64) (Session[T], bool)
	// Advance is a compare-and-set transition: fn runs and the state moves to
	// next only while the session is still in from.
	Advance(userID int64, from, next State, fn func(*T)) bool
	// Take atomically ends a session that is in st and returns its data.
	Take(userID int64, st State) (T, bool)
	Clear(userID int64)
	Len() int

	GetState(userID int64) State
	InProgress(userID int64) bool

	// Handle binds a text handler to a state; ManagerHandler dispatches to it.
	Handle(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error

	// Sweep drops sessions idle for longer than the configured TTL.
	Sweep() int
}
