package portfolio

import (
	"context"
	"sort"
	"sync"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/types"
)

// MemoryStore keeps holdings in process memory. Used for dry runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]types.Holding
}

var _ interfaces.HoldingsStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]types.Holding)}
}

func (m *MemoryStore) Replace(_ context.Context, sessionID string, holdings []types.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append([]types.Holding(nil), holdings...)
	return nil
}

func (m *MemoryStore) List(_ context.Context, sessionID string) ([]types.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hs, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return append([]types.Holding(nil), hs...), nil
}

func (m *MemoryStore) Sessions(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) Close() error { return nil }
