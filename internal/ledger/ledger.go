// Package ledger implements the balance table of a closed-supply token. The
// entire supply is credited to the issuer once, at construction, and moves
// between accounts only through paired debit/credit transfers, so the sum of
// all balances always equals the total supply.
package ledger

import (
	"context"
	"errors"
)

// ErrInsufficientBalance occurs when the source account cannot cover a
// requested transfer. It is the only domain failure a transfer can produce.
var ErrInsufficientBalance = errors.New("insufficient balance")

// TransferResult reports both balances as they stand after the transfer. A
// self-transfer reports the same unchanged balance on both sides.
type TransferResult struct {
	FromBalance Amount
	ToBalance   Amount
}

// Ledger is the contract implemented by ledger backends (memory, Postgres,
// Bolt). Transfer is atomic on every backend: the sufficiency check and the
// paired debit/credit happen under a single exclusion scope, and a failed
// transfer leaves all balances untouched.
type Ledger interface {
	// TotalSupply returns the supply fixed at construction.
	TotalSupply(ctx context.Context) (Amount, error)

	// BalanceOf returns the balance held by account. Accounts that never
	// received tokens hold zero; looking one up is not an error.
	BalanceOf(ctx context.Context, account AccountID) (Amount, error)

	// Transfer moves value from one account to another and returns both
	// resulting balances. It fails with ErrInsufficientBalance when from
	// holds less than value.
	Transfer(ctx context.Context, from, to AccountID, value Amount) (TransferResult, error)
}
