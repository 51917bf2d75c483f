package utils

import (
	"context"
	"testing"
	"time"
)

func TestPendingCapKey(t *testing.T) {
	got := PendingCapKey("creator-1")
	if got != "ringcap:creator-1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPendingCapScriptsInitialized(t *testing.T) {
	if pendingCapAcquireScript == nil || pendingCapReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestAcquirePendingCapValidatesArgs(t *testing.T) {
	ctx := context.Background()

	if _, err := AcquirePendingCap(ctx, nil, "k", 1, time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleasePendingCap(ctx, nil, "k"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
