package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// RequestsSummaryRequest asks for aggregated call-request metrics for one
// creator.

type RequestsSummaryRequest struct {
	CreatorID string    `json:"creator_id"`
	Range     TimeRange `json:"range"`
}

type RequestsSummary struct {
	CreatorID string `json:"creator_id"`

	TotalRequests     int `json:"total_requests"`
	AcceptedRequests  int `json:"accepted_requests"`
	DeclinedRequests  int `json:"declined_requests"`
	ExpiredRequests   int `json:"expired_requests"`
	CancelledRequests int `json:"cancelled_requests"`
	PendingRequests   int `json:"pending_requests"`

	// AcceptanceRate is accepted over decided (accepted+declined+expired).
	AcceptanceRate float64 `json:"acceptance_rate"`

	TotalBookedMinutes int `json:"total_booked_minutes"`
}

// EarningsSummaryRequest asks for token earnings derived from immutable
// wallet ledger entries for one creator.

type EarningsSummaryRequest struct {
	CreatorID string    `json:"creator_id"`
	Range     TimeRange `json:"range"`
}

type EarningsSummary struct {
	CreatorID string `json:"creator_id"`
	Currency  string `json:"currency"`

	TotalCreditTokens int64 `json:"total_credit_tokens"`
	TotalDebitTokens  int64 `json:"total_debit_tokens"`
	NetTokens         int64 `json:"net_tokens"`

	SessionEarningsTokens int64 `json:"session_earnings_tokens"`
	AdminAdjustTokens     int64 `json:"admin_adjust_tokens"`
}
