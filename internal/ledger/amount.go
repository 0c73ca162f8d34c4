package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// AmountBits is the bit width of token quantities. Balances are bounded by the
// total supply, so any value that fits here can never overflow in a transfer.
const AmountBits = 128

// Amount is an unsigned 128-bit token quantity stored big-endian. The zero
// value is the zero amount. Amounts render as base-10 strings in JSON because
// they do not fit in a JSON number.
type Amount [AmountBits / 8]byte

// ErrAmountRange indicates a value outside [0, 2^128-1].
var ErrAmountRange = errors.New("amount out of range")

// MaxAmount is the largest representable token quantity.
var MaxAmount = Amount{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// ParseAmount converts a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, ErrAmountRange)
	}
	a, err := AmountFromBig(i)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, ErrAmountRange)
	}
	return a, nil
}

// AmountFromUint64 widens u into an Amount.
func AmountFromUint64(u uint64) Amount {
	var a Amount
	binary.BigEndian.PutUint64(a[8:], u)
	return a
}

// AmountFromBig converts i, rejecting negatives and values past 128 bits.
func AmountFromBig(i *big.Int) (Amount, error) {
	if i.Sign() < 0 || i.BitLen() > AmountBits {
		return Amount{}, ErrAmountRange
	}
	var a Amount
	i.FillBytes(a[:])
	return a, nil
}

// BigInt returns the amount as a big integer.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).SetBytes(a[:])
}

// Cmp compares a and b numerically, returning -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	return bytes.Compare(a[:], b[:])
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == Amount{}
}

// Add returns a+b or ErrAmountRange if the sum exceeds 128 bits.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, err := AmountFromBig(new(big.Int).Add(a.BigInt(), b.BigInt()))
	if err != nil {
		return Amount{}, fmt.Errorf("add %s + %s: %w", a, b, ErrAmountRange)
	}
	return sum, nil
}

// Sub returns a-b or ErrAmountRange if b exceeds a. FillBytes would silently
// encode the magnitude of a negative difference, so the sign is checked first.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, fmt.Errorf("subtract %s - %s: %w", a, b, ErrAmountRange)
	}
	diff, err := AmountFromBig(new(big.Int).Sub(a.BigInt(), b.BigInt()))
	if err != nil {
		return Amount{}, fmt.Errorf("subtract %s - %s: %w", a, b, ErrAmountRange)
	}
	return diff, nil
}

// String renders the amount in base 10.
func (a Amount) String() string {
	return a.BigInt().String()
}

// MarshalJSON encodes the amount as a quoted base-10 string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted base-10 string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAmount(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
