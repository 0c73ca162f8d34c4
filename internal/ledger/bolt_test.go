package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
)

func newTestBoltDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "ledger.db"), 0600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoltLedger_ConstructionCreditsIssuer(t *testing.T) {
	ctx := context.Background()
	issuer := TestAccount("issuer")
	db := newTestBoltDB(t)

	l, err := NewBoltLedger(db, issuer, AmountFromUint64(777))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	total, err := l.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("total supply: %v", err)
	}
	if total != AmountFromUint64(777) {
		t.Fatalf("expected supply 777, got %s", total)
	}

	balance, err := l.BalanceOf(ctx, issuer)
	if err != nil {
		t.Fatalf("issuer balance: %v", err)
	}
	if balance != AmountFromUint64(777) {
		t.Fatalf("expected issuer balance 777, got %s", balance)
	}

	unknown, err := l.BalanceOf(ctx, TestAccount("nobody"))
	if err != nil {
		t.Fatalf("unknown balance: %v", err)
	}
	if !unknown.IsZero() {
		t.Fatalf("expected zero for unknown account, got %s", unknown)
	}
}

func TestBoltLedger_TransferAndSelfTransfer(t *testing.T) {
	ctx := context.Background()
	issuer := TestAccount("issuer")
	bob := TestAccount("bob")
	db := newTestBoltDB(t)

	l, err := NewBoltLedger(db, issuer, AmountFromUint64(100))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	res, err := l.Transfer(ctx, issuer, bob, AmountFromUint64(30))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if res.FromBalance != AmountFromUint64(70) || res.ToBalance != AmountFromUint64(30) {
		t.Fatalf("unexpected balances: from=%s to=%s", res.FromBalance, res.ToBalance)
	}

	if _, err := l.Transfer(ctx, bob, issuer, AmountFromUint64(1000)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	bobBal, _ := l.BalanceOf(ctx, bob)
	if bobBal != AmountFromUint64(30) {
		t.Fatalf("failed transfer mutated balance: %s", bobBal)
	}

	res, err = l.Transfer(ctx, bob, bob, AmountFromUint64(30))
	if err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if res.FromBalance != AmountFromUint64(30) || res.ToBalance != AmountFromUint64(30) {
		t.Fatalf("self transfer changed balance: from=%s to=%s", res.FromBalance, res.ToBalance)
	}
}

func TestBoltLedger_ReopenVerifiesSupplyAndIssuer(t *testing.T) {
	issuer := TestAccount("issuer")
	db := newTestBoltDB(t)

	if _, err := NewBoltLedger(db, issuer, AmountFromUint64(100)); err != nil {
		t.Fatalf("first construct: %v", err)
	}

	// Same supply and issuer reopen cleanly, without minting again.
	l, err := NewBoltLedger(db, issuer, AmountFromUint64(100))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	balance, _ := l.BalanceOf(context.Background(), issuer)
	if balance != AmountFromUint64(100) {
		t.Fatalf("reopen changed issuer balance: %s", balance)
	}

	if _, err := NewBoltLedger(db, issuer, AmountFromUint64(999)); err == nil {
		t.Fatalf("expected error for changed supply")
	}
	if _, err := NewBoltLedger(db, TestAccount("other"), AmountFromUint64(100)); err == nil {
		t.Fatalf("expected error for changed issuer")
	}
}
