package callrequest

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creator-platform/pkg/utils"
)

// PostgresRepo persists call requests in the call_requests table.
//
// Assumed schema:
//   call_requests (
//     id, creator_id, type, status, fan_id, fan_username,
//     scheduled_date, scheduled_time, duration_minutes, rate_per_minute,
//     expires_at, message, decision_reason, created_at, updated_at
//   )
//
// Status updates lock the row (FOR UPDATE) and are conditional on the
// expected status so concurrent decisions serialize per request.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const requestColumns = `
id, creator_id, type, status, fan_id, fan_username,
scheduled_date, scheduled_time, duration_minutes, rate_per_minute,
expires_at, message, decision_reason, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, req CallRequest) error {
	const q = `
INSERT INTO call_requests (
  id, creator_id, type, status, fan_id, fan_username,
  scheduled_date, scheduled_time, duration_minutes, rate_per_minute,
  expires_at, message, decision_reason, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
)
`
	_, err := r.db.ExecContext(ctx, q,
		req.ID,
		req.CreatorID,
		req.Type,
		req.Status,
		req.FanID,
		req.FanUsername,
		req.ScheduledDate,
		req.ScheduledTime,
		req.DurationMinutes,
		req.RatePerMinute,
		req.ExpiresAt,
		req.Message,
		req.DecisionReason,
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (CallRequest, error) {
	const q = `
SELECT ` + requestColumns + `
FROM call_requests
WHERE id = $1
`
	return scanRequest(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) ListByCreator(ctx context.Context, creatorID string, filter ListFilter) ([]CallRequest, error) {
	q := `
SELECT ` + requestColumns + `
FROM call_requests
WHERE creator_id = $1
`
	args := []any{creatorID}
	switch filter {
	case FilterPending:
		q += ` AND status = $2`
		args = append(args, StatusPending)
	case FilterAccepted:
		q += ` AND status = $2`
		args = append(args, StatusAccepted)
	case FilterAll:
		// no status predicate
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, expected, next RequestStatus, reason string, now time.Time) (CallRequest, error) {
	var out CallRequest
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const lockQ = `
SELECT status FROM call_requests WHERE id = $1 FOR UPDATE
`
		var current RequestStatus
		if err := tx.QueryRowContext(ctx, lockQ, id).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if current != expected {
			return ErrStatusConflict
		}

		const updQ = `
UPDATE call_requests
SET status = $2,
    decision_reason = CASE WHEN $3 <> '' THEN $3 ELSE decision_reason END,
    updated_at = $4
WHERE id = $1
RETURNING ` + requestColumns + `
`
		req, err := scanRequest(tx.QueryRowContext(ctx, updQ, id, next, reason, now))
		if err != nil {
			return err
		}
		out = req
		return nil
	})
	return out, err
}

func (r *PostgresRepo) SetSchedule(ctx context.Context, id, scheduledDate, scheduledTime string, now time.Time) error {
	const q = `
UPDATE call_requests
SET scheduled_date = $2, scheduled_time = $3, updated_at = $4
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, scheduledDate, scheduledTime, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ExpireDue(ctx context.Context, now time.Time, reason string) ([]CallRequest, error) {
	const q = `
UPDATE call_requests
SET status = $1, decision_reason = $2, updated_at = $3
WHERE status = $4 AND expires_at <= $3
RETURNING ` + requestColumns + `
`
	rows, err := r.db.QueryContext(ctx, q, StatusExpired, reason, now, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (CallRequest, error) {
	var req CallRequest
	err := row.Scan(
		&req.ID,
		&req.CreatorID,
		&req.Type,
		&req.Status,
		&req.FanID,
		&req.FanUsername,
		&req.ScheduledDate,
		&req.ScheduledTime,
		&req.DurationMinutes,
		&req.RatePerMinute,
		&req.ExpiresAt,
		&req.Message,
		&req.DecisionReason,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRequest{}, ErrNotFound
		}
		return CallRequest{}, err
	}
	return req, nil
}
