package wallet

import "time"

// Wallet holds a user's platform-token balance.
// Invariant: available balance is derived from immutable ledger entries.
// No code may mutate a balance without writing a corresponding ledger entry.
type Wallet struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Currency is the platform token code; wallets never mix currencies.
	Currency string `json:"currency" db:"currency"`

	Status WalletStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type WalletStatus string

const (
	WalletStatusActive   WalletStatus = "active"
	WalletStatusDisabled WalletStatus = "disabled"
)

// TokenCurrency is the platform's internal virtual currency code.
const TokenCurrency = "TOKEN"

// DefaultWalletID names a user's primary token wallet. Every user is
// provisioned one at signup; settlement flows address it by this id.
func DefaultWalletID(userID string) string {
	return "wal_" + userID
}

// Ledger is an immutable append-only entry. Each row is a credit or debit
// posted to a wallet; credits are positive, debits negative.
type Ledger struct {
	ID       string `json:"id" db:"id"`
	UserID   string `json:"user_id" db:"user_id"`
	WalletID string `json:"wallet_id" db:"wallet_id"`

	Type LedgerEntryType `json:"type" db:"type"`

	AmountTokens int64  `json:"amount_tokens" db:"amount_tokens"`
	Currency     string `json:"currency" db:"currency"`

	// ExternalRef links the entry to its cause: call session id, billing
	// session id, top-up order id.
	ExternalRef string `json:"external_ref,omitempty" db:"external_ref"`

	// IdempotencyKey is required for safe retries of money-posting operations.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LedgerEntryType string

const (
	LedgerEntryTypeCredit LedgerEntryType = "credit" // top-up, earnings, adjustment
	LedgerEntryTypeDebit  LedgerEntryType = "debit"  // call charge, fee
)

// AdminWalletAction tracks privileged/manual actions performed by admins.
// Any admin mutation of tokens must also create a Ledger entry so the money
// invariant holds.
type AdminWalletAction struct {
	ID       string `json:"id" db:"id"`
	UserID   string `json:"user_id" db:"user_id"`
	WalletID string `json:"wallet_id" db:"wallet_id"`

	AdminUserID string `json:"admin_user_id" db:"admin_user_id"`
	AdminRole   string `json:"admin_role" db:"admin_role"`

	Action AdminWalletActionType `json:"action" db:"action"`
	Reason string                `json:"reason,omitempty" db:"reason"`

	AmountTokens int64  `json:"amount_tokens" db:"amount_tokens"`
	Currency     string `json:"currency" db:"currency"`

	RelatedLedgerID string `json:"related_ledger_id,omitempty" db:"related_ledger_id"`
	Metadata        string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AdminWalletActionType string

const (
	AdminWalletActionTypeAdjustBalance AdminWalletActionType = "adjust_balance"
	AdminWalletActionTypeFreeze        AdminWalletActionType = "freeze"
	AdminWalletActionTypeUnfreeze      AdminWalletActionType = "unfreeze"
)
