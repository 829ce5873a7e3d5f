package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nicorenaldo/supercell-hackathon/pkg/game"
)

// MemoryStore keeps sessions in process memory. Suitable for local
// development and tests; sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*game.Session
}

var _ Storage = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*game.Session),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// SaveSession stores a deep copy, so later mutation of the caller's
// session does not leak into the store.
func (m *MemoryStore) SaveSession(ctx context.Context, s *game.Session) error {
	clone, err := s.Clone()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = clone
	return nil
}

func (m *MemoryStore) LoadSession(ctx context.Context, id uuid.UUID) (*game.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.Clone()
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
