package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"creator-platform/internal/callrequest"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	GetByRequestID(ctx context.Context, requestID string) (*Session, error)
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
	UpdateStatus(ctx context.Context, id string, status SessionStatus, now time.Time) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock overrides time source (tests).
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// BookFromRequest materializes a session from a just-accepted call request.
// The request carries the agreed rate and duration. An absent schedule means
// the fan asked for an immediate call, so the session is booked for now.
func (s *Service) BookFromRequest(ctx context.Context, req *callrequest.CallRequest) (*Session, error) {
	if req == nil {
		return nil, ErrInvalidArgument
	}
	if req.Status != callrequest.StatusAccepted {
		return nil, ErrInvalidArgument
	}
	date := strings.TrimSpace(req.ScheduledDate)
	start := strings.TrimSpace(req.ScheduledTime)
	if (date == "") != (start == "") {
		return nil, ErrInvalidArgument
	}

	now := s.clock().UTC()
	if date == "" {
		date = now.Format("2006-01-02")
		start = now.Format("15:04")
	}
	sess := &Session{
		ID:              uuid.NewString(),
		RequestID:       req.ID,
		CreatorID:       req.CreatorID,
		FanID:           req.FanID,
		Type:            string(req.Type),
		ScheduledDate:   date,
		ScheduledTime:   start,
		DurationMinutes: req.DurationMinutes,
		RatePerMinute:   req.RatePerMinute,
		Status:          SessionStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByRequest(ctx context.Context, requestID string) (*Session, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.GetByRequestID(ctx, requestID)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByUser(ctx, userID)
}

// CancelForRequest cancels the booked session when its underlying accepted
// request is cancelled. Missing session is not an error: the request may have
// been cancelled before booking completed.
func (s *Service) CancelForRequest(ctx context.Context, requestID string) error {
	sess, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if sess.Status == SessionStatusCompleted || sess.Status == SessionStatusCancelled {
		return nil
	}
	return s.repo.UpdateStatus(ctx, sess.ID, SessionStatusCancelled, s.clock().UTC())
}
