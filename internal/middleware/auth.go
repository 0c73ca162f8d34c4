package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/likuta/internal/auth"
	"github.com/congo-pay/likuta/internal/config"
	"github.com/congo-pay/likuta/internal/ledger"
)

const callerLocal = "caller_account"

// CallerAuth returns a middleware that validates bearer tokens and resolves
// the calling account. The token subject carries the hex account id, so no
// repository lookup is needed; handlers read the caller via Caller.
func CallerAuth(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		exp, _ := claims["exp"].(float64)
		if exp == 0 || time.Now().Unix() >= int64(exp) {
			return fiber.NewError(http.StatusUnauthorized, "token expired")
		}

		sub, _ := claims["sub"].(string)
		caller, err := ledger.ParseAccountID(sub)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token subject")
		}

		c.Locals(callerLocal, caller)
		return c.Next()
	}
}

// Caller returns the account id stored by CallerAuth for this request.
func Caller(c *fiber.Ctx) (ledger.AccountID, bool) {
	caller, ok := c.Locals(callerLocal).(ledger.AccountID)
	return caller, ok
}
