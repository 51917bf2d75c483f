package billing

import "time"

// BillingSession is created server-side when a call request is accepted.
// It is consumed exactly once to confirm a card payment; the call proceeds
// only after that confirmation succeeds.
type BillingSession struct {
	SessionID string `json:"session_id" db:"session_id"`

	// RatePerMinute and TotalTokens are platform tokens.
	RatePerMinute   int64 `json:"rate_per_minute" db:"rate_per_minute"`
	DurationMinutes int   `json:"duration_minutes" db:"duration_minutes"`
	TotalTokens     int64 `json:"total_tokens" db:"total_tokens"`

	// AmountMinor is the charge in real-currency minor units at the fixed
	// token rate; it is what the payment intent is created for.
	AmountMinor int64  `json:"amount_minor" db:"amount_minor"`
	Currency    string `json:"currency" db:"currency"`

	PaymentIntentID string `json:"payment_intent_id" db:"payment_intent_id"`
	ClientSecret    string `json:"client_secret" db:"client_secret"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Details is the wire shape served to (and consumed by) the billing UI.
// Field names follow the public API contract.
type Details struct {
	RatePerMinute   int64  `json:"ratePerMinute"`
	DurationMinutes int    `json:"durationMinutes"`
	TotalAmount     int64  `json:"totalAmount"`
	ClientSecret    string `json:"clientSecret"`
}

// Details projects the session into its public wire shape. TotalAmount is
// the token total (rate times duration), matching what the UI displays.
func (b BillingSession) Details() Details {
	return Details{
		RatePerMinute:   b.RatePerMinute,
		DurationMinutes: b.DurationMinutes,
		TotalAmount:     b.TotalTokens,
		ClientSecret:    b.ClientSecret,
	}
}
