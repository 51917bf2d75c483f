package reporting

import (
	"context"
	"sync"
	"time"

	"creator-platform/internal/callrequest"
	"creator-platform/internal/wallet"
)

// MemoryRepo is an in-memory Repository for tests.

type MemoryRepo struct {
	mu       sync.Mutex
	requests []callrequest.CallRequest
	ledger   []wallet.Ledger
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) AddRequest(req callrequest.CallRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *MemoryRepo) AddLedger(l wallet.Ledger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger = append(r.ledger, l)
}

func (r *MemoryRepo) ListRequests(_ context.Context, creatorID string, from, to time.Time) ([]callrequest.CallRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []callrequest.CallRequest
	for _, req := range r.requests {
		if req.CreatorID != creatorID {
			continue
		}
		if req.CreatedAt.Before(from) || !req.CreatedAt.Before(to) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *MemoryRepo) ListLedger(_ context.Context, userID string, from, to time.Time) ([]wallet.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []wallet.Ledger
	for _, l := range r.ledger {
		if l.UserID != userID {
			continue
		}
		if l.CreatedAt.Before(from) || !l.CreatedAt.Before(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
