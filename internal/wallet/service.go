package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creator-platform/pkg/utils"

	"github.com/google/uuid"
)

// Service provides token-wallet operations.
//
// Money invariants:
// - No balance updates without a ledger entry
// - Ledger is append-only (immutable)
// - All money operations run inside a DB transaction
//
// Balance strategy: balances live in a projection table (wallet_balances)
// updated atomically alongside ledger inserts.
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

type Balance struct {
	UserID        string    `json:"user_id"`
	WalletID      string    `json:"wallet_id"`
	Currency      string    `json:"currency"`
	BalanceTokens int64     `json:"balance_tokens"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreditRequest struct {
	AmountTokens   int64  `json:"amount_tokens"`
	ExternalRef    string `json:"external_ref,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

type DebitRequest struct {
	AmountTokens   int64  `json:"amount_tokens"`
	ExternalRef    string `json:"external_ref,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

type AdminCreditRequest struct {
	AmountTokens   int64  `json:"amount_tokens"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

// TransferRequest settles a confirmed billing session: the fan's wallet is
// debited and the creator's credited in one transaction.
type TransferRequest struct {
	FromUserID   string `json:"from_user_id"`
	FromWalletID string `json:"from_wallet_id"`
	ToUserID     string `json:"to_user_id"`
	ToWalletID   string `json:"to_wallet_id"`

	AmountTokens   int64  `json:"amount_tokens"`
	ExternalRef    string `json:"external_ref"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidArgument   = errors.New("invalid argument")
)

func (s *Service) GetBalance(ctx context.Context, userID, walletID string) (Balance, error) {
	if userID == "" || walletID == "" {
		return Balance{}, ErrInvalidArgument
	}
	return getBalance(ctx, s.db, userID, walletID)
}

func (s *Service) Credit(ctx context.Context, userID, walletID string, req CreditRequest) (Ledger, Balance, error) {
	if err := validateMoneyReq(userID, walletID, req.AmountTokens, req.IdempotencyKey); err != nil {
		return Ledger{}, Balance{}, err
	}

	now := s.clock().UTC()
	var outLedger Ledger
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := lockWallet(ctx, tx, userID, walletID); err != nil {
			return err
		}

		if existing, ok, err := findLedgerByIdempotency(ctx, tx, userID, walletID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outLedger = existing
			b, err := getBalanceTx(ctx, tx, userID, walletID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		entry := Ledger{
			ID:             uuid.NewString(),
			UserID:         userID,
			WalletID:       walletID,
			Type:           LedgerEntryTypeCredit,
			AmountTokens:   req.AmountTokens,
			Currency:       TokenCurrency,
			ExternalRef:    req.ExternalRef,
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		b, err := applyBalanceDelta(ctx, tx, userID, walletID, req.AmountTokens, now)
		if err != nil {
			return err
		}
		outLedger = entry
		outBal = b
		return nil
	})

	return outLedger, outBal, err
}

func (s *Service) Debit(ctx context.Context, userID, walletID string, req DebitRequest) (Ledger, Balance, error) {
	if err := validateMoneyReq(userID, walletID, req.AmountTokens, req.IdempotencyKey); err != nil {
		return Ledger{}, Balance{}, err
	}

	now := s.clock().UTC()
	var outLedger Ledger
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := lockWallet(ctx, tx, userID, walletID); err != nil {
			return err
		}

		if existing, ok, err := findLedgerByIdempotency(ctx, tx, userID, walletID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outLedger = existing
			b, err := getBalanceTx(ctx, tx, userID, walletID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		ledger, bal, err := debitTx(ctx, tx, userID, walletID, req.AmountTokens, req.ExternalRef, req.IdempotencyKey, req.Metadata, now)
		if err != nil {
			return err
		}
		outLedger = ledger
		outBal = bal
		return nil
	})

	return outLedger, outBal, err
}

// Transfer debits the payer and credits the payee atomically. Idempotency is
// keyed on the payer side; a replay returns without double-posting.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (Balance, Balance, error) {
	if err := validateMoneyReq(req.FromUserID, req.FromWalletID, req.AmountTokens, req.IdempotencyKey); err != nil {
		return Balance{}, Balance{}, err
	}
	if req.ToUserID == "" || req.ToWalletID == "" || req.ExternalRef == "" {
		return Balance{}, Balance{}, ErrInvalidArgument
	}
	if req.FromWalletID == req.ToWalletID {
		return Balance{}, Balance{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	var fromBal, toBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// Lock in a stable order to avoid deadlocks between crossing transfers.
		first, second := req.FromWalletID, req.ToWalletID
		firstUser, secondUser := req.FromUserID, req.ToUserID
		if second < first {
			first, second = second, first
			firstUser, secondUser = secondUser, firstUser
		}
		if _, err := lockWallet(ctx, tx, firstUser, first); err != nil {
			return err
		}
		if _, err := lockWallet(ctx, tx, secondUser, second); err != nil {
			return err
		}

		if _, ok, err := findLedgerByIdempotency(ctx, tx, req.FromUserID, req.FromWalletID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			fb, err := getBalanceTx(ctx, tx, req.FromUserID, req.FromWalletID)
			if err != nil {
				return err
			}
			tb, err := getBalanceTx(ctx, tx, req.ToUserID, req.ToWalletID)
			if err != nil {
				return err
			}
			fromBal, toBal = fb, tb
			return nil
		}

		_, fb, err := debitTx(ctx, tx, req.FromUserID, req.FromWalletID, req.AmountTokens, req.ExternalRef, req.IdempotencyKey, req.Metadata, now)
		if err != nil {
			return err
		}

		creditEntry := Ledger{
			ID:             uuid.NewString(),
			UserID:         req.ToUserID,
			WalletID:       req.ToWalletID,
			Type:           LedgerEntryTypeCredit,
			AmountTokens:   req.AmountTokens,
			Currency:       TokenCurrency,
			ExternalRef:    req.ExternalRef,
			IdempotencyKey: req.IdempotencyKey + ":credit",
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, creditEntry); err != nil {
			return err
		}
		tb, err := applyBalanceDelta(ctx, tx, req.ToUserID, req.ToWalletID, req.AmountTokens, now)
		if err != nil {
			return err
		}

		fromBal, toBal = fb, tb
		return nil
	})

	return fromBal, toBal, err
}

func (s *Service) AdminManualCredit(ctx context.Context, userID, walletID, adminUserID, adminRole string, req AdminCreditRequest) (AdminWalletAction, Ledger, Balance, error) {
	if adminUserID == "" || adminRole == "" || req.Reason == "" {
		return AdminWalletAction{}, Ledger{}, Balance{}, ErrInvalidArgument
	}
	if err := validateMoneyReq(userID, walletID, req.AmountTokens, req.IdempotencyKey); err != nil {
		return AdminWalletAction{}, Ledger{}, Balance{}, err
	}

	now := s.clock().UTC()
	var outAction AdminWalletAction
	var outLedger Ledger
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := lockWallet(ctx, tx, userID, walletID); err != nil {
			return err
		}

		if existing, ok, err := findLedgerByIdempotency(ctx, tx, userID, walletID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outLedger = existing
			act, ok, err := findAdminActionByLedger(ctx, tx, userID, walletID, existing.ID)
			if err != nil {
				return err
			}
			if ok {
				outAction = act
			}
			b, err := getBalanceTx(ctx, tx, userID, walletID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		entry := Ledger{
			ID:             uuid.NewString(),
			UserID:         userID,
			WalletID:       walletID,
			Type:           LedgerEntryTypeCredit,
			AmountTokens:   req.AmountTokens,
			Currency:       TokenCurrency,
			ExternalRef:    "admin_manual_credit",
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}
		b, err := applyBalanceDelta(ctx, tx, userID, walletID, req.AmountTokens, now)
		if err != nil {
			return err
		}

		action := AdminWalletAction{
			ID:              uuid.NewString(),
			UserID:          userID,
			WalletID:        walletID,
			AdminUserID:     adminUserID,
			AdminRole:       adminRole,
			Action:          AdminWalletActionTypeAdjustBalance,
			Reason:          req.Reason,
			AmountTokens:    req.AmountTokens,
			Currency:        TokenCurrency,
			RelatedLedgerID: entry.ID,
			Metadata:        req.Metadata,
			CreatedAt:       now,
		}
		if err := insertAdminAction(ctx, tx, action); err != nil {
			return err
		}

		outAction = action
		outLedger = entry
		outBal = b
		return nil
	})

	return outAction, outLedger, outBal, err
}

// debitTx posts a debit and updates the projection; caller holds the wallet lock.
func debitTx(ctx context.Context, tx *sql.Tx, userID, walletID string, amount int64, externalRef, idemKey, metadata string, now time.Time) (Ledger, Balance, error) {
	b, err := getBalanceForUpdate(ctx, tx, userID, walletID)
	if err != nil {
		return Ledger{}, Balance{}, err
	}
	if b.BalanceTokens < amount {
		return Ledger{}, Balance{}, ErrInsufficientFunds
	}

	entry := Ledger{
		ID:             uuid.NewString(),
		UserID:         userID,
		WalletID:       walletID,
		Type:           LedgerEntryTypeDebit,
		AmountTokens:   -amount,
		Currency:       TokenCurrency,
		ExternalRef:    externalRef,
		IdempotencyKey: idemKey,
		Metadata:       metadata,
		CreatedAt:      now,
	}
	if err := insertLedger(ctx, tx, entry); err != nil {
		return Ledger{}, Balance{}, err
	}
	out, err := applyBalanceDelta(ctx, tx, userID, walletID, -amount, now)
	if err != nil {
		return Ledger{}, Balance{}, err
	}
	return entry, out, nil
}

func validateMoneyReq(userID, walletID string, amountTokens int64, idempotencyKey string) error {
	if userID == "" || walletID == "" {
		return ErrInvalidArgument
	}
	if idempotencyKey == "" {
		return ErrInvalidArgument
	}
	if amountTokens <= 0 {
		return ErrInvalidArgument
	}
	return nil
}
