package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists sessions in the sessions table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const sessionColumns = `
	id, request_id, creator_id, fan_id, type,
	scheduled_date, scheduled_time, duration_minutes, rate_per_minute,
	status, created_at, updated_at
`

func (r *PostgresRepo) Create(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		s.ID, s.RequestID, s.CreatorID, s.FanID, s.Type,
		s.ScheduledDate, s.ScheduledTime, s.DurationMinutes, s.RatePerMinute,
		s.Status, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = $1
	`, id)
	return scanSession(row)
}

func (r *PostgresRepo) GetByRequestID(ctx context.Context, requestID string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE request_id = $1
	`, requestID)
	return scanSession(row)
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE creator_id = $1 OR fan_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, status SessionStatus, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, now)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.RequestID, &s.CreatorID, &s.FanID, &s.Type,
		&s.ScheduledDate, &s.ScheduledTime, &s.DurationMinutes, &s.RatePerMinute,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
