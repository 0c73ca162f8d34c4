package accounts

import (
	"time"

	"github.com/congo-pay/likuta/internal/ledger"
)

// Account represents a registered token holder able to authenticate as the
// source of transfers.
type Account struct {
	ID         ledger.AccountID
	Label      string
	SecretHash []byte
	CreatedAt  time.Time
}

// Credentials carry a registration or login request.
type Credentials struct {
	Label  string
	Secret string
}
