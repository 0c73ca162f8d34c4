package ledger

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseAccountID(t *testing.T) {
	hex := strings.Repeat("ab", AccountIDSize)
	id, err := ParseAccountID(hex)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.String() != hex {
		t.Fatalf("round trip mismatch: %s", id)
	}

	if _, err := ParseAccountID("abcd"); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := ParseAccountID(strings.Repeat("zz", AccountIDSize)); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
}

func TestAccountID_JSON(t *testing.T) {
	id := TestAccount("amadi")
	raw, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AccountID
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != id {
		t.Fatalf("round trip mismatch: %s != %s", decoded, id)
	}
}
