package token

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/likuta/internal/auth"
	"github.com/congo-pay/likuta/internal/config"
	"github.com/congo-pay/likuta/internal/ledger"
	"github.com/congo-pay/likuta/internal/middleware"
)

var testCfg = config.Config{JWTSecret: "handler-test-secret", AccessTokenTTL: time.Minute}

func setupTokenApp(t *testing.T, supply uint64) (*fiber.App, ledger.AccountID) {
	t.Helper()
	issuer := ledger.TestAccount("issuer")
	h := NewHandler(NewService(ledger.NewInMemory(issuer, ledger.AmountFromUint64(supply))))

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/supply", h.Supply)
	api.Get("/accounts/:account/balance", h.BalanceOf)

	protected := api.Group("", middleware.CallerAuth(testCfg))
	protected.Get("/balance", h.CallerBalance)
	protected.Post("/transfers", h.Transfer)

	return app, issuer
}

func bearerFor(t *testing.T, account ledger.AccountID) string {
	t.Helper()
	signed, err := auth.SignHS256(map[string]any{
		"sub": account.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}, []byte(testCfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, bearer string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode body %s: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestHandler_SupplyAndPublicBalances(t *testing.T) {
	app, issuer := setupTokenApp(t, 777)

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/supply", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("supply status %d", status)
	}
	if body["total_supply"] != "777" {
		t.Fatalf("expected supply 777, got %v", body["total_supply"])
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/"+issuer.String()+"/balance", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("issuer balance status %d", status)
	}
	if body["balance"] != "777" {
		t.Fatalf("expected issuer balance 777, got %v", body["balance"])
	}

	unknown := ledger.TestAccount("stranger")
	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/"+unknown.String()+"/balance", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("unknown balance status %d", status)
	}
	if body["balance"] != "0" {
		t.Fatalf("expected zero balance, got %v", body["balance"])
	}

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/not-hex/balance", "", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed account, got %d", status)
	}
}

func TestHandler_TransferFlow(t *testing.T) {
	app, issuer := setupTokenApp(t, 100)
	bob := ledger.TestAccount("bob")

	transferBody := `{"to":"` + bob.String() + `","value":"10"}`

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", transferBody, "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", transferBody, bearerFor(t, issuer))
	if status != fiber.StatusCreated {
		t.Fatalf("transfer status %d: %v", status, body)
	}
	if body["from_balance"] != "90" || body["to_balance"] != "10" {
		t.Fatalf("unexpected balances: %v", body)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/balance", "", bearerFor(t, bob))
	if status != fiber.StatusOK {
		t.Fatalf("caller balance status %d", status)
	}
	if body["balance"] != "10" {
		t.Fatalf("expected caller balance 10, got %v", body["balance"])
	}

	// The caller is always the source; bob cannot spend more than he holds.
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers",
		`{"to":"`+issuer.String()+`","value":"1000"}`, bearerFor(t, bob))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient balance, got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", `{"to":"`+bob.String()+`"}`, bearerFor(t, issuer))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing value, got %d", status)
	}
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", `{"value":"5"}`, bearerFor(t, issuer))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing destination, got %d", status)
	}
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers",
		`{"to":"`+bob.String()+`","value":"abc"}`, bearerFor(t, issuer))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed value, got %d", status)
	}
}

func TestHandler_ExpiredTokenRejected(t *testing.T) {
	app, issuer := setupTokenApp(t, 100)

	signed, err := auth.SignHS256(map[string]any{
		"sub": issuer.String(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, []byte(testCfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/balance", "", "Bearer "+signed)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", status)
	}
}
