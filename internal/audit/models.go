package audit

import "time"

// Event is an immutable, append-only audit record of a call-request decision
// or an admin action.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; never block the decision flow on
//   audit failures.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event. Empty for
	// system-originated events like expiry.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress stores the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	RequestID string `json:"request_id,omitempty" db:"request_id"`
	SessionID string `json:"session_id,omitempty" db:"session_id"`
	WalletID  string `json:"wallet_id,omitempty" db:"wallet_id"`

	// Reason carries the decision reason recorded on the request.
	Reason string `json:"reason,omitempty" db:"reason"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRequestAccepted  EventType = "request_accepted"
	EventTypeRequestDeclined  EventType = "request_declined"
	EventTypeRequestCancelled EventType = "request_cancelled"
	EventTypeRequestExpired   EventType = "request_expired"
	EventTypeAdminAction      EventType = "admin_action"
)
