package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following tables exist:
// - wallets
// - wallet_ledger (immutable append-only)
// - wallet_balances (projection)
// - admin_wallet_actions
//
// It also assumes an idempotency constraint:
// UNIQUE (wallet_id, idempotency_key)

func lockWallet(ctx context.Context, tx *sql.Tx, userID, walletID string) (Wallet, error) {
	// Lock the wallet row to serialize concurrent money operations per wallet.
	const q = `
SELECT id, user_id, currency, status, created_at, updated_at
FROM wallets
WHERE user_id = $1 AND id = $2
FOR UPDATE
`
	var w Wallet
	if err := tx.QueryRowContext(ctx, q, userID, walletID).Scan(
		&w.ID,
		&w.UserID,
		&w.Currency,
		&w.Status,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return w, nil
}

func getBalance(ctx context.Context, db *sql.DB, userID, walletID string) (Balance, error) {
	const q = `
SELECT user_id, wallet_id, currency, balance_tokens, updated_at
FROM wallet_balances
WHERE user_id = $1 AND wallet_id = $2
`
	var b Balance
	if err := db.QueryRowContext(ctx, q, userID, walletID).Scan(
		&b.UserID,
		&b.WalletID,
		&b.Currency,
		&b.BalanceTokens,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func getBalanceTx(ctx context.Context, tx *sql.Tx, userID, walletID string) (Balance, error) {
	const q = `
SELECT user_id, wallet_id, currency, balance_tokens, updated_at
FROM wallet_balances
WHERE user_id = $1 AND wallet_id = $2
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, userID, walletID).Scan(
		&b.UserID,
		&b.WalletID,
		&b.Currency,
		&b.BalanceTokens,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func getBalanceForUpdate(ctx context.Context, tx *sql.Tx, userID, walletID string) (Balance, error) {
	const q = `
SELECT user_id, wallet_id, currency, balance_tokens, updated_at
FROM wallet_balances
WHERE user_id = $1 AND wallet_id = $2
FOR UPDATE
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, userID, walletID).Scan(
		&b.UserID,
		&b.WalletID,
		&b.Currency,
		&b.BalanceTokens,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func findLedgerByIdempotency(ctx context.Context, tx *sql.Tx, userID, walletID, key string) (Ledger, bool, error) {
	const q = `
SELECT id, user_id, wallet_id, type, amount_tokens, currency, external_ref, idempotency_key, metadata, created_at
FROM wallet_ledger
WHERE user_id = $1 AND wallet_id = $2 AND idempotency_key = $3
LIMIT 1
`
	var e Ledger
	err := tx.QueryRowContext(ctx, q, userID, walletID, key).Scan(
		&e.ID,
		&e.UserID,
		&e.WalletID,
		&e.Type,
		&e.AmountTokens,
		&e.Currency,
		&e.ExternalRef,
		&e.IdempotencyKey,
		&e.Metadata,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ledger{}, false, nil
		}
		return Ledger{}, false, err
	}
	return e, true, nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, e Ledger) error {
	const q = `
INSERT INTO wallet_ledger (
  id, user_id, wallet_id, type, amount_tokens, currency, external_ref, idempotency_key, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := tx.ExecContext(ctx, q,
		e.ID,
		e.UserID,
		e.WalletID,
		e.Type,
		e.AmountTokens,
		e.Currency,
		e.ExternalRef,
		e.IdempotencyKey,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}

func applyBalanceDelta(ctx context.Context, tx *sql.Tx, userID, walletID string, deltaTokens int64, now time.Time) (Balance, error) {
	// Upsert the projection row. The wallet lock plus the service-level checks
	// keep the projection consistent with the ledger.
	const q = `
INSERT INTO wallet_balances (user_id, wallet_id, currency, balance_tokens, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id, wallet_id)
DO UPDATE SET balance_tokens = wallet_balances.balance_tokens + EXCLUDED.balance_tokens,
              updated_at = EXCLUDED.updated_at
RETURNING user_id, wallet_id, currency, balance_tokens, updated_at
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, userID, walletID, TokenCurrency, deltaTokens, now).Scan(
		&b.UserID,
		&b.WalletID,
		&b.Currency,
		&b.BalanceTokens,
		&b.UpdatedAt,
	); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func insertAdminAction(ctx context.Context, tx *sql.Tx, a AdminWalletAction) error {
	const q = `
INSERT INTO admin_wallet_actions (
  id, user_id, wallet_id, admin_user_id, admin_role, action, reason,
  amount_tokens, currency, related_ledger_id, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
`
	_, err := tx.ExecContext(ctx, q,
		a.ID,
		a.UserID,
		a.WalletID,
		a.AdminUserID,
		a.AdminRole,
		a.Action,
		a.Reason,
		a.AmountTokens,
		a.Currency,
		a.RelatedLedgerID,
		a.Metadata,
		a.CreatedAt,
	)
	return err
}

func findAdminActionByLedger(ctx context.Context, tx *sql.Tx, userID, walletID, ledgerID string) (AdminWalletAction, bool, error) {
	const q = `
SELECT id, user_id, wallet_id, admin_user_id, admin_role, action, reason,
       amount_tokens, currency, related_ledger_id, metadata, created_at
FROM admin_wallet_actions
WHERE user_id = $1 AND wallet_id = $2 AND related_ledger_id = $3
LIMIT 1
`
	var a AdminWalletAction
	err := tx.QueryRowContext(ctx, q, userID, walletID, ledgerID).Scan(
		&a.ID,
		&a.UserID,
		&a.WalletID,
		&a.AdminUserID,
		&a.AdminRole,
		&a.Action,
		&a.Reason,
		&a.AmountTokens,
		&a.Currency,
		&a.RelatedLedgerID,
		&a.Metadata,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AdminWalletAction{}, false, nil
		}
		return AdminWalletAction{}, false, err
	}
	return a, true, nil
}
