// Package session tracks live games: one session per user holding the
// opponent's behavioral memory and the nudge timer state for that game.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/engine"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/nudge"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/metrics"
)

// Session is the per-game state for one user. Memory and Nudge are
// mutated only through Manager.Update / Manager.UpdateByUser, which hold
// the manager lock for the whole mutation.
type Session struct {
	ID        string
	UserID    string
	GameID    string
	StartedAt time.Time

	Memory engine.Memory
	Nudge  nudge.State

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is canceled when the session is superseded or ended. Long
// operations tied to the session (opponent think delay) run under it.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Manager owns all live sessions. A user has at most one: beginning a new
// session supersedes and cancels the previous one.
type Manager struct {
	mu     sync.Mutex
	base   context.Context
	byID   map[string]*Session
	byUser map[string]*Session
}

// NewManager creates a manager whose sessions derive from base.
func NewManager(base context.Context) *Manager {
	if base == nil {
		base = context.Background()
	}
	return &Manager{
		base:   base,
		byID:   make(map[string]*Session),
		byUser: make(map[string]*Session),
	}
}

// Begin starts a session for the user and game, superseding any prior
// session the user had.
func (m *Manager) Begin(userID, gameID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prior, ok := m.byUser[userID]; ok {
		prior.cancel()
		delete(m.byID, prior.ID)
	}

	ctx, cancel := context.WithCancel(m.base)
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		GameID:    gameID,
		StartedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	m.byID[s.ID] = s
	m.byUser[userID] = s

	metrics.UpdateActiveSessions(len(m.byID))
	return s
}

// Get returns the session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	return s, ok
}

// ByUser returns the user's live session.
func (m *Manager) ByUser(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[userID]
	return s, ok
}

// Update mutates the session under the manager lock.
func (m *Manager) Update(id string, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(s)
}

// UpdateByUser mutates the user's live session under the manager lock.
func (m *Manager) UpdateByUser(userID string, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byUser[userID]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(s)
}

// End cancels and removes the session.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.cancel()
	delete(m.byID, s.ID)
	delete(m.byUser, s.UserID)

	metrics.UpdateActiveSessions(len(m.byID))
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Close cancels every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.byID {
		s.cancel()
		delete(m.byID, id)
		delete(m.byUser, s.UserID)
	}
	metrics.UpdateActiveSessions(0)
}
