package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information. Callers treat audit logging as
// best-effort and never fail the originating operation on audit errors.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogRequestDecision records an accept, decline, cancel or expiry outcome for
// a call request. actorUserID is empty for system-originated expiry.
func (s *Service) LogRequestDecision(ctx context.Context, eventType EventType, requestID, actorUserID, actorRole, reason string) error {
	return s.Append(ctx, Event{
		Type:        eventType,
		RequestID:   requestID,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		Reason:      reason,
	})
}

// LogAdminAction records an admin-originated action such as a manual wallet
// credit.
func (s *Service) LogAdminAction(ctx context.Context, actorUserID, actorRole, ip, message, walletID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAdminAction,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Message:     message,
		WalletID:    walletID,
	})
}
