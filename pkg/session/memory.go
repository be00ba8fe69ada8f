package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps session state in process memory. It backs tests and
// ephemeral runs where persistence is not wanted.
type MemoryStore struct {
	mu        sync.RWMutex
	session   *Session
	installID string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNotFound
	}
	clone := *s.session
	return &clone, nil
}

func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	if session == nil {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.session = &clone
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *MemoryStore) InstallID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installID == "" {
		s.installID = uuid.NewString()
	}
	return s.installID, nil
}
