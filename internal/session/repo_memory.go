package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository used by tests and local wiring.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]*Session
	byReqID map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]*Session),
		byReqID: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byID[s.ID] = &cp
	r.byReqID[s.RequestID] = s.ID
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepo) GetByRequestID(_ context.Context, requestID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReqID[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string) ([]*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.byID {
		if s.CreatorID == userID || s.FanID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(_ context.Context, id string, status SessionStatus, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = now
	return nil
}
