// internal/store/memory.go
//
// In-memory implementation of the round session Store.
// This is the default persistence layer for in-flight rounds, used in
// development/testing or when a single server process is enough.
//
// Characteristics:
//   - Stores round snapshots keyed by round ID in a map, so callers never
//     share a *game.Round with another request.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Optional TTL: sessions idle longer than ttl read as missing.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is one player's in-flight round.
type Session struct {
	Round  *game.Round
	UserID string // empty for guests
}

// record is the stored form of a Session.
type record struct {
	Round  game.Snapshot `json:"round"`
	UserID string        `json:"userId,omitempty"`
}

func toRecord(s *Session) record {
	return record{Round: s.Round.Snapshot(), UserID: s.UserID}
}

func (r record) session() (*Session, error) {
	round, err := game.Restore(r.Round)
	if err != nil {
		return nil, err
	}
	return &Session{Round: round, UserID: r.UserID}, nil
}

// Store defines the persistence interface for round sessions.
// Implementations may be backed by memory (this file) or Valkey.
type Store interface {
	// Save persists or updates a session, keyed by its round ID.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by round ID.
	// Returns ErrNotFound if the session is missing or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	rec     record
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu        sync.RWMutex        // guards sessions
	sessions  map[string]memEntry // keyed by round ID
	ttl       time.Duration       // 0 = never expire
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore constructs a new in-memory Store. A ttl of 0 keeps
// sessions until they are deleted.
func NewMemoryStore(ttl time.Duration) Store {
	return &memory{sessions: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

// Save adds or updates the session in the map. At most once per ttl it
// also drops every expired session.
func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweepLocked(now)
	m.sessions[s.Round.ID] = memEntry{rec: toRecord(s), touched: now}
	return nil
}

// sweepLocked removes expired sessions. Caller holds mu.
func (m *memory) sweepLocked(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, e := range m.sessions {
		if now.Sub(e.touched) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

// Get looks up a session by round ID and returns a private copy.
func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if m.ttl > 0 && m.now().Sub(e.touched) > m.ttl {
		_ = m.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return e.rec.session()
}

// Delete drops the session.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
