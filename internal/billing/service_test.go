package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"creator-platform/internal/session"
	"creator-platform/internal/wallet"
)

type fakeProvider struct {
	calls   int
	lastAmt int64
	lastCur string
	err     error
}

func (f *fakeProvider) CreateIntent(_ context.Context, amountMinor int64, currency, sessionID string) (string, string, error) {
	f.calls++
	f.lastAmt = amountMinor
	f.lastCur = currency
	if f.err != nil {
		return "", "", f.err
	}
	return "pi_" + sessionID, "pi_" + sessionID + "_secret_abc", nil
}

func testRate(t *testing.T) wallet.TokenRate {
	t.Helper()
	rate, err := wallet.NewTokenRate("0.05", "usd", 2)
	if err != nil {
		t.Fatalf("NewTokenRate: %v", err)
	}
	return rate
}

func TestCreateForSession_ComputesTotals(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(NewMemoryStore(), provider, testRate(t)).
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) })

	b, err := svc.CreateForSession(context.Background(), &session.Session{
		ID:              "sess-1",
		RatePerMinute:   8,
		DurationMinutes: 10,
	})
	if err != nil {
		t.Fatalf("CreateForSession: %v", err)
	}

	if b.TotalTokens != 80 {
		t.Fatalf("expected 80 total tokens, got %d", b.TotalTokens)
	}
	// 80 tokens at 0.05 usd/token is 4.00 usd, i.e. 400 cents.
	if b.AmountMinor != 400 {
		t.Fatalf("expected 400 minor units, got %d", b.AmountMinor)
	}
	if provider.lastAmt != 400 || provider.lastCur != "usd" {
		t.Fatalf("provider received %d %s", provider.lastAmt, provider.lastCur)
	}
	if b.ClientSecret == "" || b.PaymentIntentID == "" {
		t.Fatalf("intent fields not recorded: %+v", b)
	}

	got, err := svc.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ClientSecret != b.ClientSecret {
		t.Fatalf("stored session differs: %+v", got)
	}
}

func TestCreateForSession_RejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeProvider{}, testRate(t))

	cases := []*session.Session{
		nil,
		{ID: "s", RatePerMinute: 0, DurationMinutes: 10},
		{ID: "s", RatePerMinute: 8, DurationMinutes: 0},
	}
	for i, sess := range cases {
		if _, err := svc.CreateForSession(context.Background(), sess); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestCreateForSession_ProviderFailureNotStored(t *testing.T) {
	provider := &fakeProvider{err: errors.New("stripe down")}
	store := NewMemoryStore()
	svc := NewService(store, provider, testRate(t))

	_, err := svc.CreateForSession(context.Background(), &session.Session{
		ID:              "sess-1",
		RatePerMinute:   8,
		DurationMinutes: 10,
	})
	if err == nil {
		t.Fatalf("expected provider error")
	}
	if _, err := store.GetBySessionID(context.Background(), "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestDetails_WireShape(t *testing.T) {
	b := BillingSession{
		RatePerMinute:   8,
		DurationMinutes: 10,
		TotalTokens:     80,
		ClientSecret:    "pi_1_secret_2",
	}
	d := b.Details()
	if d.RatePerMinute != 8 || d.DurationMinutes != 10 || d.TotalAmount != 80 || d.ClientSecret != "pi_1_secret_2" {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeProvider{}, testRate(t))
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
