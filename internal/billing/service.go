package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"creator-platform/internal/session"
	"creator-platform/internal/wallet"
)

var (
	ErrNotFound        = errors.New("billing session not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store persists billing sessions keyed by the call session they pay for.
type Store interface {
	Create(ctx context.Context, b *BillingSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*BillingSession, error)
}

// PaymentProvider creates the payment intent a billing session is confirmed
// against. Implemented by Stripe in production and by fakes in tests.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, sessionID string) (intentID, clientSecret string, err error)
}

type Service struct {
	store    Store
	provider PaymentProvider
	rate     wallet.TokenRate
	clock    func() time.Time
}

func NewService(store Store, provider PaymentProvider, rate wallet.TokenRate) *Service {
	return &Service{store: store, provider: provider, rate: rate, clock: time.Now}
}

// WithClock overrides time source (tests).
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// CreateForSession opens a billing session for a freshly booked call session.
// The token total is rate times duration; the charge amount is that total at
// the fixed token rate.
func (s *Service) CreateForSession(ctx context.Context, sess *session.Session) (*BillingSession, error) {
	if sess == nil {
		return nil, ErrInvalidArgument
	}
	if sess.RatePerMinute <= 0 || sess.DurationMinutes <= 0 {
		return nil, ErrInvalidArgument
	}

	totalTokens := sess.RatePerMinute * int64(sess.DurationMinutes)
	amountMinor := s.rate.TokensToMinor(totalTokens)

	intentID, clientSecret, err := s.provider.CreateIntent(ctx, amountMinor, s.rate.Currency, sess.ID)
	if err != nil {
		return nil, err
	}

	b := &BillingSession{
		SessionID:       sess.ID,
		RatePerMinute:   sess.RatePerMinute,
		DurationMinutes: sess.DurationMinutes,
		TotalTokens:     totalTokens,
		AmountMinor:     amountMinor,
		Currency:        s.rate.Currency,
		PaymentIntentID: intentID,
		ClientSecret:    clientSecret,
		CreatedAt:       s.clock().UTC(),
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns the billing session for a call session.
func (s *Service) Get(ctx context.Context, sessionID string) (*BillingSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidArgument
	}
	return s.store.GetBySessionID(ctx, sessionID)
}
