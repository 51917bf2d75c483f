package reporting

import (
	"context"
	"testing"
	"time"

	"creator-platform/internal/callrequest"
	"creator-platform/internal/wallet"
)

func rangeMarch() TimeRange {
	return TimeRange{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func inMarch(day int) time.Time {
	return time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestRequestsSummary(t *testing.T) {
	repo := NewMemoryRepo()
	add := func(status callrequest.RequestStatus, minutes int, day int) {
		repo.AddRequest(callrequest.CallRequest{
			CreatorID:       "creator-1",
			Status:          status,
			DurationMinutes: minutes,
			CreatedAt:       inMarch(day),
		})
	}
	add(callrequest.StatusAccepted, 15, 2)
	add(callrequest.StatusAccepted, 10, 3)
	add(callrequest.StatusDeclined, 20, 4)
	add(callrequest.StatusExpired, 5, 5)
	add(callrequest.StatusCancelled, 30, 6)
	add(callrequest.StatusPending, 10, 7)
	// Different creator, must not count.
	repo.AddRequest(callrequest.CallRequest{CreatorID: "creator-2", Status: callrequest.StatusAccepted, CreatedAt: inMarch(2)})
	// Outside the range, must not count.
	repo.AddRequest(callrequest.CallRequest{CreatorID: "creator-1", Status: callrequest.StatusAccepted, CreatedAt: inMarch(2).AddDate(0, -2, 0)})

	svc := NewService(repo)
	got, err := svc.RequestsSummary(context.Background(), RequestsSummaryRequest{CreatorID: "creator-1", Range: rangeMarch()})
	if err != nil {
		t.Fatalf("RequestsSummary: %v", err)
	}

	if got.TotalRequests != 6 {
		t.Fatalf("total = %d, want 6", got.TotalRequests)
	}
	if got.AcceptedRequests != 2 || got.DeclinedRequests != 1 || got.ExpiredRequests != 1 || got.CancelledRequests != 1 || got.PendingRequests != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.TotalBookedMinutes != 25 {
		t.Fatalf("booked minutes = %d, want 25", got.TotalBookedMinutes)
	}
	// 3 accepted-or-cancelled out of 5 decided.
	if got.AcceptanceRate != 0.6 {
		t.Fatalf("acceptance rate = %v, want 0.6", got.AcceptanceRate)
	}
}

func TestRequestsSummary_RejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.RequestsSummary(context.Background(), RequestsSummaryRequest{Range: rangeMarch()}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.RequestsSummary(context.Background(), RequestsSummaryRequest{CreatorID: "c"}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest for empty range, got %v", err)
	}
}

func TestEarningsSummary(t *testing.T) {
	repo := NewMemoryRepo()
	add := func(amount int64, ref string, day int) {
		repo.AddLedger(wallet.Ledger{
			UserID:       "creator-1",
			AmountTokens: amount,
			Currency:     wallet.TokenCurrency,
			ExternalRef:  ref,
			CreatedAt:    inMarch(day),
		})
	}
	add(80, "sess-1", 2)
	add(120, "sess-2", 3)
	add(-30, "payout-1", 4)
	add(50, AdminLedgerRef, 5)

	svc := NewService(repo)
	got, err := svc.EarningsSummary(context.Background(), EarningsSummaryRequest{CreatorID: "creator-1", Range: rangeMarch()})
	if err != nil {
		t.Fatalf("EarningsSummary: %v", err)
	}

	if got.TotalCreditTokens != 250 || got.TotalDebitTokens != 30 || got.NetTokens != 220 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.SessionEarningsTokens != 200 {
		t.Fatalf("session earnings = %d, want 200", got.SessionEarningsTokens)
	}
	if got.AdminAdjustTokens != 50 {
		t.Fatalf("admin adjust = %d, want 50", got.AdminAdjustTokens)
	}
	if got.Currency != wallet.TokenCurrency {
		t.Fatalf("currency = %q", got.Currency)
	}
}
