package auth

import (
	"context"
	"sync"

	"github.com/rantsmith/backend/internal/models"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]models.Session)}
}

// InMemorySessionStore implements SessionStore for tests and local development.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// Save persists the provided session record.
func (s *InMemorySessionStore) Save(_ context.Context, session models.Session) error {
	s.mu.Lock()
	s.sessions[session.TokenID] = session
	s.mu.Unlock()
	return nil
}

// Find retrieves a session by token id.
func (s *InMemorySessionStore) Find(_ context.Context, tokenID string) (models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[tokenID]
	s.mu.RUnlock()
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session associated with the token id.
func (s *InMemorySessionStore) Delete(_ context.Context, tokenID string) error {
	s.mu.Lock()
	delete(s.sessions, tokenID)
	s.mu.Unlock()
	return nil
}

// Has reports whether a session exists. Useful for tests.
func (s *InMemorySessionStore) Has(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[tokenID]
	return ok
}
