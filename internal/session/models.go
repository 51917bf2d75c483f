package session

import "time"

// Session is a booked call between a fan and a creator. One is created the
// moment a call request is accepted; the media leg itself is carried by the
// external call SDK and never modeled here.
type Session struct {
	ID        string `json:"id" db:"id"`
	RequestID string `json:"request_id" db:"request_id"`
	CreatorID string `json:"creator_id" db:"creator_id"`
	FanID     string `json:"fan_id" db:"fan_id"`

	Type string `json:"type" db:"type"`

	ScheduledDate string `json:"scheduled_date" db:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time" db:"scheduled_time"`

	DurationMinutes int   `json:"duration_minutes" db:"duration_minutes"`
	RatePerMinute   int64 `json:"rate_per_minute" db:"rate_per_minute"`

	Status SessionStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionStatusScheduled, SessionStatusActive, SessionStatusCompleted, SessionStatusCancelled:
		return true
	default:
		return false
	}
}
