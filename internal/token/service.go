// Package token is the application face of the ledger: it threads the
// authenticated caller through to the balance table and shapes results for
// the transport layer.
package token

import (
	"context"
	"time"

	"github.com/congo-pay/likuta/internal/ledger"
)

// Service exposes supply, balance and transfer operations over a ledger
// backend.
type Service struct {
	ledger ledger.Ledger
}

// NewService constructs a token service.
func NewService(l ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// Balance reports an account's balance at a point in time.
type Balance struct {
	Account ledger.AccountID
	Amount  ledger.Amount
	AsOf    time.Time
}

// TransferInput captures a transfer request. Caller is always the source;
// there are no delegated transfers.
type TransferInput struct {
	Caller ledger.AccountID
	To     ledger.AccountID
	Value  ledger.Amount
}

// TransferResult describes the balances a completed transfer left behind.
type TransferResult struct {
	FromBalance ledger.Amount
	ToBalance   ledger.Amount
	CompletedAt time.Time
}

// TotalSupply returns the supply fixed when the ledger was constructed.
func (s *Service) TotalSupply(ctx context.Context) (ledger.Amount, error) {
	return s.ledger.TotalSupply(ctx)
}

// BalanceOf reports the balance of any account. Accounts the ledger has never
// seen hold zero.
func (s *Service) BalanceOf(ctx context.Context, account ledger.AccountID) (Balance, error) {
	amount, err := s.ledger.BalanceOf(ctx, account)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Account: account, Amount: amount, AsOf: time.Now().UTC()}, nil
}

// Transfer moves value from the caller to the destination account. Zero
// values succeed unconditionally; the only domain failure is
// ledger.ErrInsufficientBalance.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	res, err := s.ledger.Transfer(ctx, input.Caller, input.To, input.Value)
	if err != nil {
		return TransferResult{}, err
	}
	return TransferResult{
		FromBalance: res.FromBalance,
		ToBalance:   res.ToBalance,
		CompletedAt: time.Now().UTC(),
	}, nil
}
