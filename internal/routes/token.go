package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/likuta/internal/token"
)

// RegisterTokenRoutes wires the ledger's read and transfer endpoints. Supply
// and balances are public; the caller's own balance and transfers require a
// bearer token naming the calling account.
func RegisterTokenRoutes(r fiber.Router, h *token.Handler, callerAuth fiber.Handler) {
	r.Get("/supply", h.Supply)
	r.Get("/accounts/:account/balance", h.BalanceOf)

	protected := r.Group("", callerAuth)
	protected.Get("/balance", h.CallerBalance)
	protected.Post("/transfers", h.Transfer)
}
