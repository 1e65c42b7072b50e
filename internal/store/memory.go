// internal/store/memory.go
//
// In-memory session store: the single-writer slot that holds the "current"
// Game of every player.
//
// Characteristics:
//   - Sessions are keyed by a random hex ID.
//   - Apply runs one transition under the store lock and swaps the slot, so
//     concurrent inputs for a session are serialized.
//   - Games are immutable, so handing out the stored *game.Game is safe.
//   - An optional commit hook sees every Apply result while the lock is still
//     held, so observers receive the sessions in the order they were written.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Session is one player's current state.
type Session struct {
	ID        string
	Game      *game.Game
	Message   string // last failure message, cleared by the next successful input
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition computes the next game from the current one.
type Transition func(*game.Game) (*game.Game, error)

// Store defines the session persistence interface.
type Store interface {
	// Create stores g under a new ID.
	Create(ctx context.Context, g *game.Game) (Session, error)

	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// Apply runs fn on the current game. On success the result replaces the
	// game and clears Message; on failure the game is kept, Message is set to
	// the error text and the error is returned unchanged.
	Apply(ctx context.Context, id string, fn Transition) (Session, error)

	// Publish passes the current session to the commit hook, under the same
	// lock as Apply.
	Publish(ctx context.Context, id string) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Prune removes sessions not updated since before and returns how many.
	Prune(ctx context.Context, before time.Time) int

	// Len returns the number of sessions.
	Len() int
}

// CommitHook observes a session after Apply or Publish. It runs with the
// store locked and must not call back into the store.
type CommitHook func(Session)

// Option configures NewMemoryStore.
type Option func(*memory)

// WithCommitHook installs fn as the commit hook.
func WithCommitHook(fn CommitHook) Option {
	return func(m *memory) { m.onCommit = fn }
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
	onCommit CommitHook
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{sessions: make(map[string]*Session), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *memory) Create(ctx context.Context, g *game.Game) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := randomID()
	for m.sessions[id] != nil {
		id = randomID()
	}
	now := m.now()
	s := &Session{ID: id, Game: g, CreatedAt: now, UpdatedAt: now}
	m.sessions[id] = s
	return *s, nil
}

func (m *memory) Get(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *s, nil
}

func (m *memory) Apply(ctx context.Context, id string, fn Transition) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return *s, err
	}

	s.UpdatedAt = m.now()
	next, err := fn(s.Game)
	if err != nil {
		s.Message = err.Error()
	} else {
		s.Game = next
		s.Message = ""
	}
	m.commit(s)
	return *s, err
}

func (m *memory) Publish(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	m.commit(s)
	return nil
}

func (m *memory) commit(s *Session) {
	if m.onCommit != nil {
		m.onCommit(*s)
	}
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
