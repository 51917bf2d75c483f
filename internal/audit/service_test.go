package audit

import (
	"context"
	"testing"
	"time"
)

func TestAppend_FillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	err := svc.LogRequestDecision(context.Background(), EventTypeRequestDeclined, "req-1", "creator-1", "creator", "user declined")
	if err != nil {
		t.Fatalf("LogRequestDecision: %v", err)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !e.CreatedAt.Equal(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %v", e.CreatedAt)
	}
	if e.Type != EventTypeRequestDeclined || e.RequestID != "req-1" || e.Reason != "user declined" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestAppend_RejectsMissingType(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Append(context.Background(), Event{RequestID: "req-1"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestLogAdminAction(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.LogAdminAction(context.Background(), "admin-1", "admin", "203.0.113.9", "manual credit", "wallet-1")
	if err != nil {
		t.Fatalf("LogAdminAction: %v", err)
	}
	events := repo.Events()
	if len(events) != 1 || events[0].Type != EventTypeAdminAction || events[0].WalletID != "wallet-1" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
