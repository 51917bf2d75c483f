package reporting

import (
	"context"
	"database/sql"
	"time"

	"creator-platform/internal/callrequest"
	"creator-platform/internal/wallet"
)

// PostgresRepo reads reporting data straight from the primary tables.
// Aggregation happens in the service; the queries stay simple row scans.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListRequests(ctx context.Context, creatorID string, from, to time.Time) ([]callrequest.CallRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, creator_id, status, duration_minutes, rate_per_minute, created_at
		FROM call_requests
		WHERE creator_id = $1 AND created_at >= $2 AND created_at < $3
	`, creatorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []callrequest.CallRequest
	for rows.Next() {
		var req callrequest.CallRequest
		if err := rows.Scan(&req.ID, &req.CreatorID, &req.Status, &req.DurationMinutes, &req.RatePerMinute, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListLedger(ctx context.Context, userID string, from, to time.Time) ([]wallet.Ledger, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, wallet_id, type, amount_tokens, currency, external_ref, created_at
		FROM wallet_ledger
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wallet.Ledger
	for rows.Next() {
		var l wallet.Ledger
		var externalRef sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.WalletID, &l.Type, &l.AmountTokens, &l.Currency, &externalRef, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.ExternalRef = externalRef.String
		out = append(out, l)
	}
	return out, rows.Err()
}
