package auth

import (
	"strings"
	"testing"
)

func TestSignAndVerifyHS256(t *testing.T) {
	secret := []byte("unit-test-secret")
	claims := map[string]any{"sub": "deadbeef", "exp": float64(4102444800)}

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if parsed["sub"] != "deadbeef" {
		t.Fatalf("expected sub round trip, got %v", parsed["sub"])
	}

	if _, err := ParseAndVerifyHS256(token, []byte("other-secret")); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + b64.EncodeToString([]byte(`{"sub":"attacker"}`)) + "." + parts[2]
	if _, err := ParseAndVerifyHS256(tampered, secret); err == nil {
		t.Fatalf("expected verification failure for tampered payload")
	}

	if _, err := ParseAndVerifyHS256("not-a-token", secret); err == nil {
		t.Fatalf("expected failure for malformed token")
	}
}
