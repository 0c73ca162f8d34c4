package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AccountIDSize is the fixed byte length of account identifiers.
const AccountIDSize = 32

// AccountID identifies a ledger participant. The ledger treats the bytes as
// opaque; the surrounding environment decides how identifiers are derived.
// Identifiers render as lowercase hex.
type AccountID [AccountIDSize]byte

// ParseAccountID decodes a 64-character hex string into an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return AccountID{}, fmt.Errorf("parse account id: %w", err)
	}
	if len(raw) != AccountIDSize {
		return AccountID{}, fmt.Errorf("parse account id: got %d bytes, want %d", len(raw), AccountIDSize)
	}
	var id AccountID
	copy(id[:], raw)
	return id, nil
}

// String returns the canonical lowercase hex form.
func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalJSON encodes the identifier as a quoted hex string.
func (id AccountID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted hex string.
func (id *AccountID) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAccountID(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
