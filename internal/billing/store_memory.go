package billing

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local wiring.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*BillingSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*BillingSession)}
}

func (m *MemoryStore) Create(_ context.Context, b *BillingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.byID[b.SessionID] = &cp
	return nil
}

func (m *MemoryStore) GetBySessionID(_ context.Context, sessionID string) (*BillingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.byID[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}
