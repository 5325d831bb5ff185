package session

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/sentinel-portal/internal/domain"
)

// MemoryStore implements Store using in-process storage.
// This is NOT suitable for multi-node deployments: sessions do not survive
// process restarts and are not shared across instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	stopCh   chan struct{}
	stopped  bool
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*domain.Session),
		stopCh:   make(chan struct{}),
	}

	// Start cleanup goroutine.
	go s.cleanupLoop()

	return s
}

// cleanupLoop periodically removes expired sessions.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired sessions.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
		}
	}
}

// Stop stops the cleanup goroutine.
func (s *MemoryStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		close(s.stopCh)
		s.stopped = true
	}
}

// Put stores a session under its token.
func (s *MemoryStore) Put(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent mutation through the caller's pointer.
	copied := *sess
	s.sessions[sess.Token] = &copied
	return nil
}

// Get retrieves a session by token.
func (s *MemoryStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[token]
	if !exists || sess.Expired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}

	copied := *sess
	return &copied, nil
}

// Delete removes a session by token.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Len returns the number of stored sessions, expired included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
