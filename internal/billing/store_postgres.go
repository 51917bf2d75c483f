package billing

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore persists billing sessions in the billing_sessions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, b *BillingSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO billing_sessions (
			session_id, rate_per_minute, duration_minutes, total_tokens,
			amount_minor, currency, payment_intent_id, client_secret, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		b.SessionID, b.RatePerMinute, b.DurationMinutes, b.TotalTokens,
		b.AmountMinor, b.Currency, b.PaymentIntentID, b.ClientSecret, b.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetBySessionID(ctx context.Context, sessionID string) (*BillingSession, error) {
	var b BillingSession
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, rate_per_minute, duration_minutes, total_tokens,
		       amount_minor, currency, payment_intent_id, client_secret, created_at
		FROM billing_sessions
		WHERE session_id = $1
	`, sessionID).Scan(
		&b.SessionID, &b.RatePerMinute, &b.DurationMinutes, &b.TotalTokens,
		&b.AmountMinor, &b.Currency, &b.PaymentIntentID, &b.ClientSecret, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
