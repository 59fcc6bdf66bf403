package session

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

// MemoryStore keeps sessions in process memory. Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

// Create stores a copy of the session keyed by its token.
func (s *MemoryStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.Token]; exists {
		return domain.ErrDuplicateSession
	}
	s.sessions[session.Token] = *session
	return nil
}

// Lookup returns the stored row, lapsed or not.
func (s *MemoryStore) Lookup(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Revoke deletes the row; absent tokens are not an error.
func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Stats counts all rows and those still live at now.
func (s *MemoryStore) Stats(_ context.Context, now time.Time) (domain.SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.SessionStats{Total: int64(len(s.sessions))}
	for _, session := range s.sessions {
		if !session.ExpiredAt(now) {
			stats.Active++
		}
	}
	return stats, nil
}

// PurgeExpired deletes rows lapsed at now.
func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for token, session := range s.sessions {
		if session.ExpiredAt(now) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}
