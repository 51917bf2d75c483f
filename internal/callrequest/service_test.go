package callrequest

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, now time.Time) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return now }
	return svc, repo
}

func createPending(t *testing.T, svc *Service) CallRequest {
	t.Helper()
	r, err := svc.Create(context.Background(), CreateRequest{
		CreatorID:       "creator-1",
		FanID:           "fan-1",
		FanUsername:     "superfan",
		Type:            CallTypeVideo,
		DurationMinutes: 10,
		RatePerMinute:   8,
		PendingWindow:   30 * time.Second,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return r
}

func TestCreate_SetsPendingAndExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	svc, _ := newTestService(t, now)

	r := createPending(t, svc)
	if r.Status != StatusPending {
		t.Fatalf("expected pending, got %s", r.Status)
	}
	if !r.ExpiresAt.Equal(now.Add(30 * time.Second)) {
		t.Fatalf("unexpected expires_at: %v", r.ExpiresAt)
	}
}

func TestCreate_RejectsInvalidArgs(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	cases := []CreateRequest{
		{FanID: "f", FanUsername: "u", Type: CallTypeVideo, DurationMinutes: 10, RatePerMinute: 8, PendingWindow: time.Second},
		{CreatorID: "c", FanID: "f", FanUsername: "u", Type: "group", DurationMinutes: 10, RatePerMinute: 8, PendingWindow: time.Second},
		{CreatorID: "c", FanID: "f", FanUsername: "u", Type: CallTypeVoice, DurationMinutes: 0, RatePerMinute: 8, PendingWindow: time.Second},
		{CreatorID: "c", FanID: "f", FanUsername: "u", Type: CallTypeVoice, DurationMinutes: 10, RatePerMinute: 0, PendingWindow: time.Second},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestAccept_FromPending(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	got, err := svc.Accept(context.Background(), r.ID, "creator-1", "2026-09-01", "18:30")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}
	if got.ScheduledDate != "2026-09-01" || got.ScheduledTime != "18:30" {
		t.Fatalf("schedule not persisted: %+v", got)
	}
}

func TestAccept_RejectsNonRecipient(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	if _, err := svc.Accept(context.Background(), r.ID, "creator-2", "", ""); !errors.Is(err, ErrNotRecipient) {
		t.Fatalf("expected ErrNotRecipient, got %v", err)
	}
}

func TestDecline_RecordsReason(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	got, err := svc.Decline(context.Background(), r.ID, "creator-1", "user declined")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if got.Status != StatusDeclined || got.DecisionReason != "user declined" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDecline_RequiresReason(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	if _, err := svc.Decline(context.Background(), r.ID, "creator-1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNoTransitionOutOfDeclined(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	if _, err := svc.Decline(context.Background(), r.ID, "creator-1", "user declined"); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if _, err := svc.Accept(context.Background(), r.ID, "creator-1", "", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), r.ID, "creator-1", "changed my mind"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancel_OnlyFromAccepted(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	if _, err := svc.Cancel(context.Background(), r.ID, "creator-1", "schedule conflict"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from pending, got %v", err)
	}

	if _, err := svc.Accept(context.Background(), r.ID, "creator-1", "", ""); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, err := svc.Cancel(context.Background(), r.ID, "creator-1", "schedule conflict")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}

func TestExpireDue_OnlyOverduePending(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	svc, _ := newTestService(t, now)

	due := createPending(t, svc)
	accepted := createPending(t, svc)
	if _, err := svc.Accept(context.Background(), accepted.ID, "creator-1", "", ""); err != nil {
		t.Fatalf("accept: %v", err)
	}

	svc.clock = func() time.Time { return now.Add(31 * time.Second) }
	expired, err := svc.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != due.ID {
		t.Fatalf("expected only the pending request to expire, got %+v", expired)
	}
	if expired[0].Status != StatusExpired {
		t.Fatalf("expected expired, got %s", expired[0].Status)
	}

	got, err := svc.Get(context.Background(), accepted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Fatalf("accepted request must not expire, got %s", got.Status)
	}
}

func TestList_FiltersByStatus(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())
	a := createPending(t, svc)
	createPending(t, svc)
	if _, err := svc.Accept(context.Background(), a.ID, "creator-1", "", ""); err != nil {
		t.Fatalf("accept: %v", err)
	}

	pending, err := svc.List(context.Background(), "creator-1", FilterPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(pending))
	}

	accepted, err := svc.List(context.Background(), "creator-1", FilterAccepted)
	if err != nil {
		t.Fatalf("list accepted: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %d", len(accepted))
	}

	all, err := svc.List(context.Background(), "creator-1", FilterAll)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 total, got %d", len(all))
	}

	if _, err := svc.List(context.Background(), "creator-1", "declined"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown filter, got %v", err)
	}
}

func TestUpdateStatus_ConcurrentDecisionConflicts(t *testing.T) {
	svc, repo := newTestService(t, time.Now().UTC())
	r := createPending(t, svc)

	if _, err := repo.UpdateStatus(context.Background(), r.ID, StatusPending, StatusAccepted, "", time.Now()); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := repo.UpdateStatus(context.Background(), r.ID, StatusPending, StatusDeclined, "late", time.Now()); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}
