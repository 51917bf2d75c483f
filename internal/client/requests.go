package client

import (
	"context"
	"errors"
	"sync"

	"creator-platform/internal/callrequest"
	"creator-platform/internal/session"
)

var (
	// ErrActionInFlight marks a duplicate action (double click) on a request
	// that already has one in flight. No network call was made.
	ErrActionInFlight = errors.New("action already in flight for this request")
	// ErrNotConfirmed marks a cancel whose confirmation step was declined.
	// No network call was made and state is unchanged.
	ErrNotConfirmed = errors.New("cancellation not confirmed")
)

// RequestList is the call-requests list state behind the requests modal.
//
// Mutation discipline: the list is only ever replaced wholesale from a
// successful fetch (fetch-then-replace); a failed refresh keeps the previous
// snapshot so the caller can surface the error without losing the view.
// Actions are guarded per request id, so a duplicate accept/decline/cancel
// on one row performs no network call while other rows stay actionable.
type RequestList struct {
	client *Client

	mu       sync.Mutex
	items    []callrequest.CallRequest
	inflight map[string]struct{}
}

func NewRequestList(c *Client) *RequestList {
	return &RequestList{client: c, inflight: map[string]struct{}{}}
}

// Refresh fetches the filtered list and replaces the snapshot on success.
// On failure the previous snapshot is untouched and the error is returned
// for the caller to surface.
func (l *RequestList) Refresh(ctx context.Context, filter callrequest.ListFilter) error {
	items, err := l.client.ListRequests(ctx, filter)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the last successfully fetched list.
func (l *RequestList) Snapshot() []callrequest.CallRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]callrequest.CallRequest, len(l.items))
	copy(out, l.items)
	return out
}

// Processing reports whether an action is in flight for the given id,
// which is what disables that row's controls.
func (l *RequestList) Processing(requestID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.inflight[requestID]
	return ok
}

// Accept accepts a request, optionally with a schedule. Duplicate calls for
// the same id while one is in flight return ErrActionInFlight.
func (l *RequestList) Accept(ctx context.Context, requestID, scheduledDate, scheduledTime string) (session.Session, error) {
	if requestID == "" {
		return session.Session{}, errors.New("request id is required")
	}
	if err := l.begin(requestID); err != nil {
		return session.Session{}, err
	}
	defer l.end(requestID)
	return l.client.Accept(ctx, requestID, scheduledDate, scheduledTime)
}

// Decline declines a pending request with a reason.
func (l *RequestList) Decline(ctx context.Context, requestID, reason string) error {
	if requestID == "" {
		return errors.New("request id is required")
	}
	if reason == "" {
		return errors.New("reason is required")
	}
	if err := l.begin(requestID); err != nil {
		return err
	}
	defer l.end(requestID)
	return l.client.Decline(ctx, requestID, reason)
}

// Cancel cancels an accepted request. It is destructive, so confirm is
// consulted first; if it reports false no network call is issued.
func (l *RequestList) Cancel(ctx context.Context, requestID, reason string, confirm func() bool) error {
	if requestID == "" {
		return errors.New("request id is required")
	}
	if reason == "" {
		return errors.New("reason is required")
	}
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}
	if err := l.begin(requestID); err != nil {
		return err
	}
	defer l.end(requestID)
	return l.client.Cancel(ctx, requestID, reason)
}

func (l *RequestList) begin(requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.inflight[requestID]; ok {
		return ErrActionInFlight
	}
	l.inflight[requestID] = struct{}{}
	return nil
}

func (l *RequestList) end(requestID string) {
	l.mu.Lock()
	delete(l.inflight, requestID)
	l.mu.Unlock()
}
