package ledger

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryLedger struct {
	mu          sync.RWMutex
	totalSupply Amount
	balances    map[AccountID]Amount
}

// NewInMemory creates a concurrency-safe in-memory ledger with the whole
// supply credited to the issuer. State does not survive the process, so it is
// meant for development and unit tests; deployments use Postgres or Bolt.
func NewInMemory(issuer AccountID, totalSupply Amount) Ledger {
	return &inMemoryLedger{
		totalSupply: totalSupply,
		balances:    map[AccountID]Amount{issuer: totalSupply},
	}
}

func (l *inMemoryLedger) TotalSupply(_ context.Context) (Amount, error) {
	return l.totalSupply, nil
}

func (l *inMemoryLedger) BalanceOf(_ context.Context, account AccountID) (Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	// Absent accounts hold the zero value.
	return l.balances[account], nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, from, to AccountID, value Amount) (TransferResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance := l.balances[from]
	if fromBalance.Cmp(value) < 0 {
		return TransferResult{}, ErrInsufficientBalance
	}

	debited, err := fromBalance.Sub(value)
	if err != nil {
		return TransferResult{}, fmt.Errorf("debit %s: %w", from, err)
	}
	l.balances[from] = debited

	// Read the destination after the debit has landed so a self-transfer
	// credits the already-debited balance and nets out unchanged.
	credited, err := l.balances[to].Add(value)
	if err != nil {
		l.balances[from] = fromBalance
		return TransferResult{}, fmt.Errorf("credit %s: %w", to, err)
	}
	l.balances[to] = credited

	return TransferResult{FromBalance: l.balances[from], ToBalance: l.balances[to]}, nil
}
