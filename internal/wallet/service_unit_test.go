package wallet

import (
	"context"
	"database/sql"
	"testing"
)

// These are true unit tests for wallet.Service input validation behavior.
//
// The money operations (Credit/Debit/Transfer/AdminManualCredit) are
// implemented with Postgres-specific SQL (notably SELECT ... FOR UPDATE), so
// end-to-end behavior tests (balance changes, insufficient funds,
// ledger/admin action inserts) are best covered via integration tests against
// Postgres.

func TestWalletService_Credit_RejectsInvalidArgs(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	_, _, err := svc.Credit(context.Background(), "", "w", CreditRequest{AmountTokens: 100, IdempotencyKey: "k"})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	_, _, err = svc.Credit(context.Background(), "u", "w", CreditRequest{AmountTokens: 0, IdempotencyKey: "k"})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	_, _, err = svc.Credit(context.Background(), "u", "w", CreditRequest{AmountTokens: 100, IdempotencyKey: ""})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWalletService_Debit_RejectsInvalidArgs(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	_, _, err := svc.Debit(context.Background(), "", "w", DebitRequest{AmountTokens: 100, IdempotencyKey: "k"})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	_, _, err = svc.Debit(context.Background(), "u", "w", DebitRequest{AmountTokens: -1, IdempotencyKey: "k"})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWalletService_Transfer_RejectsInvalidArgs(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	base := TransferRequest{
		FromUserID:     "fan-1",
		FromWalletID:   "w-fan",
		ToUserID:       "creator-1",
		ToWalletID:     "w-creator",
		AmountTokens:   80,
		ExternalRef:    "sess-1",
		IdempotencyKey: "k",
	}

	req := base
	req.FromUserID = ""
	if _, _, err := svc.Transfer(context.Background(), req); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	req = base
	req.ToWalletID = ""
	if _, _, err := svc.Transfer(context.Background(), req); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	req = base
	req.AmountTokens = 0
	if _, _, err := svc.Transfer(context.Background(), req); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	// Transfers between the same wallet are meaningless.
	req = base
	req.ToUserID = base.FromUserID
	req.ToWalletID = base.FromWalletID
	if _, _, err := svc.Transfer(context.Background(), req); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWalletService_AdminManualCredit_RejectsInvalidArgs(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	_, _, _, err := svc.AdminManualCredit(context.Background(), "u", "w", "", "admin", AdminCreditRequest{
		AmountTokens:   100,
		Reason:         "refund",
		IdempotencyKey: "k",
	})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument (missing admin user), got %v", err)
	}

	_, _, _, err = svc.AdminManualCredit(context.Background(), "u", "w", "admin-1", "admin", AdminCreditRequest{
		AmountTokens:   100,
		Reason:         "",
		IdempotencyKey: "k",
	})
	if err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument (missing reason), got %v", err)
	}
}
