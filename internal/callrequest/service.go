package callrequest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for call requests.
//
// UpdateStatus must be conditional on the expected current status so that
// concurrent decisions on the same request cannot both win.
type Repository interface {
	Create(ctx context.Context, r CallRequest) error
	GetByID(ctx context.Context, id string) (CallRequest, error)
	ListByCreator(ctx context.Context, creatorID string, filter ListFilter) ([]CallRequest, error)

	// UpdateStatus moves id from the expected status to next, recording reason.
	// Returns ErrStatusConflict if the row is no longer in the expected status.
	UpdateStatus(ctx context.Context, id string, expected, next RequestStatus, reason string, now time.Time) (CallRequest, error)

	// SetSchedule persists an accept-time schedule override.
	SetSchedule(ctx context.Context, id, scheduledDate, scheduledTime string, now time.Time) error

	// ExpireDue flips every pending request with expires_at <= now to expired.
	ExpireDue(ctx context.Context, now time.Time, reason string) ([]CallRequest, error)
}

var (
	ErrNotFound          = errors.New("call request not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("request status changed concurrently")
	ErrNotRecipient      = errors.New("only the recipient creator may act on this request")
)

// ExpiryReason is the decision reason recorded when the sweeper expires a request.
const ExpiryReason = "expired — no response before deadline"

// Service owns call-request lifecycle decisions.
//
// Transition invariant: every write goes through CanTransition plus a
// conditional repository update, so an allowed edge is taken at most once.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// CreateRequest describes a new fan-initiated request.
type CreateRequest struct {
	CreatorID   string
	FanID       string
	FanUsername string

	Type            CallType
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	RatePerMinute   int64
	Message         string

	// PendingWindow bounds how long the request may ring unanswered.
	PendingWindow time.Duration
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (CallRequest, error) {
	if req.CreatorID == "" || req.FanID == "" || req.FanUsername == "" {
		return CallRequest{}, ErrInvalidArgument
	}
	if !ValidCallType(req.Type) {
		return CallRequest{}, ErrInvalidArgument
	}
	if req.DurationMinutes <= 0 || req.RatePerMinute <= 0 {
		return CallRequest{}, ErrInvalidArgument
	}
	if req.PendingWindow <= 0 {
		return CallRequest{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	r := CallRequest{
		ID:              uuid.NewString(),
		CreatorID:       req.CreatorID,
		Type:            req.Type,
		Status:          StatusPending,
		FanID:           req.FanID,
		FanUsername:     req.FanUsername,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		RatePerMinute:   req.RatePerMinute,
		ExpiresAt:       now.Add(req.PendingWindow),
		Message:         req.Message,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return CallRequest{}, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (CallRequest, error) {
	if id == "" {
		return CallRequest{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, creatorID string, filter ListFilter) ([]CallRequest, error) {
	if creatorID == "" {
		return nil, ErrInvalidArgument
	}
	if filter == "" {
		filter = FilterAll
	}
	if !ValidFilter(filter) {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByCreator(ctx, creatorID, filter)
}

// Accept moves a pending request to accepted on behalf of its recipient creator.
// An optional schedule override may accompany the acceptance.
func (s *Service) Accept(ctx context.Context, id, actorCreatorID, scheduledDate, scheduledTime string) (CallRequest, error) {
	r, err := s.guardActor(ctx, id, actorCreatorID)
	if err != nil {
		return CallRequest{}, err
	}
	if !CanTransition(r.Status, StatusAccepted) {
		return CallRequest{}, ErrInvalidTransition
	}

	now := s.clock().UTC()
	if scheduledDate != "" || scheduledTime != "" {
		if err := s.repo.SetSchedule(ctx, id, scheduledDate, scheduledTime, now); err != nil {
			return CallRequest{}, err
		}
	}
	return s.repo.UpdateStatus(ctx, id, StatusPending, StatusAccepted, "", now)
}

// Decline moves a pending request to declined with a required reason.
func (s *Service) Decline(ctx context.Context, id, actorCreatorID, reason string) (CallRequest, error) {
	if reason == "" {
		return CallRequest{}, ErrInvalidArgument
	}
	r, err := s.guardActor(ctx, id, actorCreatorID)
	if err != nil {
		return CallRequest{}, err
	}
	if !CanTransition(r.Status, StatusDeclined) {
		return CallRequest{}, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, StatusPending, StatusDeclined, reason, s.clock().UTC())
}

// Cancel moves an accepted request to cancelled with a required reason.
// Cancellation is only valid from accepted.
func (s *Service) Cancel(ctx context.Context, id, actorCreatorID, reason string) (CallRequest, error) {
	if reason == "" {
		return CallRequest{}, ErrInvalidArgument
	}
	r, err := s.guardActor(ctx, id, actorCreatorID)
	if err != nil {
		return CallRequest{}, err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return CallRequest{}, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, StatusAccepted, StatusCancelled, reason, s.clock().UTC())
}

// ExpireDue is invoked by the sweeper only. User actions never expire requests.
func (s *Service) ExpireDue(ctx context.Context) ([]CallRequest, error) {
	return s.repo.ExpireDue(ctx, s.clock().UTC(), ExpiryReason)
}

func (s *Service) guardActor(ctx context.Context, id, actorCreatorID string) (CallRequest, error) {
	if id == "" || actorCreatorID == "" {
		return CallRequest{}, ErrInvalidArgument
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CallRequest{}, err
	}
	if r.CreatorID != actorCreatorID {
		return CallRequest{}, ErrNotRecipient
	}
	return r, nil
}
