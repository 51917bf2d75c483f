package callrequest

import "time"

// CallRequest is a fan-initiated ask for a paid voice/video session with a creator.
//
// Invariants:
// - A request has exactly one status at any time.
// - Status moves only along allowed edges (see CanTransition).
// - Only the recipient creator may accept/decline/cancel; only elapsed time may expire.
type CallRequest struct {
	ID        string `json:"id" db:"id"`
	CreatorID string `json:"creator_id" db:"creator_id"`

	Type   CallType      `json:"type" db:"type"`
	Status RequestStatus `json:"status" db:"status"`

	FanID       string `json:"fan_id" db:"fan_id"`
	FanUsername string `json:"fan_username" db:"fan_username"`

	// ScheduledDate/ScheduledTime are optional; both empty means an immediate call.
	ScheduledDate string `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time,omitempty" db:"scheduled_time"`

	DurationMinutes int `json:"duration_minutes" db:"duration_minutes"`

	// RatePerMinute is the price in platform tokens per started minute.
	RatePerMinute int64 `json:"rate_per_minute" db:"rate_per_minute"`

	// ExpiresAt: an un-actioned pending request auto-expires after this instant.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// Message is an optional free-text note from the requester.
	Message string `json:"message,omitempty" db:"message"`

	// DecisionReason records why a request was declined or cancelled.
	DecisionReason string `json:"decision_reason,omitempty" db:"decision_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallType string

const (
	CallTypeVideo CallType = "video"
	CallTypeVoice CallType = "voice"
)

func ValidCallType(t CallType) bool {
	switch t {
	case CallTypeVideo, CallTypeVoice:
		return true
	default:
		return false
	}
}

// RequestStatus is a closed set. New statuses must be added here and handled
// exhaustively at every consumer; free-form strings are not accepted.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusDeclined  RequestStatus = "declined"
	StatusExpired   RequestStatus = "expired"
	StatusCancelled RequestStatus = "cancelled"
)

func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusDeclined, StatusExpired, StatusCancelled:
		return true
	case StatusPending, StatusAccepted:
		return false
	default:
		return false
	}
}

// CanTransition reports whether from -> to is an allowed edge.
//
// Allowed edges:
//
//	pending  -> accepted | declined | expired
//	accepted -> cancelled
//
// Terminal states (declined, expired, cancelled) have no exits.
func CanTransition(from, to RequestStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusDeclined || to == StatusExpired
	case StatusAccepted:
		return to == StatusCancelled
	case StatusDeclined, StatusExpired, StatusCancelled:
		return false
	default:
		return false
	}
}

// ListFilter narrows List results. FilterAll returns every status.
type ListFilter string

const (
	FilterPending  ListFilter = "pending"
	FilterAccepted ListFilter = "accepted"
	FilterAll      ListFilter = "all"
)

func ValidFilter(f ListFilter) bool {
	switch f {
	case FilterPending, FilterAccepted, FilterAll:
		return true
	default:
		return false
	}
}
