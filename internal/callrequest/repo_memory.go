package callrequest

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests and early development.
// It enforces the same conditional-update semantics as the Postgres repo.
type MemoryRepo struct {
	mu       sync.Mutex
	requests map[string]CallRequest
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{requests: map[string]CallRequest{}}
}

func (r *MemoryRepo) Create(ctx context.Context, req CallRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; ok {
		return ErrInvalidArgument
	}
	r.requests[req.ID] = req
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (CallRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return CallRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *MemoryRepo) ListByCreator(ctx context.Context, creatorID string, filter ListFilter) ([]CallRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRequest, 0)
	for _, req := range r.requests {
		if req.CreatorID != creatorID {
			continue
		}
		switch filter {
		case FilterPending:
			if req.Status != StatusPending {
				continue
			}
		case FilterAccepted:
			if req.Status != StatusAccepted {
				continue
			}
		case FilterAll:
			// keep all
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, expected, next RequestStatus, reason string, now time.Time) (CallRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return CallRequest{}, ErrNotFound
	}
	if req.Status != expected {
		return CallRequest{}, ErrStatusConflict
	}
	req.Status = next
	if reason != "" {
		req.DecisionReason = reason
	}
	req.UpdatedAt = now
	r.requests[id] = req
	return req, nil
}

func (r *MemoryRepo) SetSchedule(ctx context.Context, id, scheduledDate, scheduledTime string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.ScheduledDate = scheduledDate
	req.ScheduledTime = scheduledTime
	req.UpdatedAt = now
	r.requests[id] = req
	return nil
}

func (r *MemoryRepo) ExpireDue(ctx context.Context, now time.Time, reason string) ([]CallRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expired := make([]CallRequest, 0)
	for id, req := range r.requests {
		if req.Status != StatusPending {
			continue
		}
		if req.ExpiresAt.After(now) {
			continue
		}
		req.Status = StatusExpired
		req.DecisionReason = reason
		req.UpdatedAt = now
		r.requests[id] = req
		expired = append(expired, req)
	}
	return expired, nil
}
