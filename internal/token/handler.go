package token

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/likuta/internal/ledger"
	"github.com/congo-pay/likuta/internal/middleware"
)

// Handler exposes token endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a token handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Supply reports the total token supply.
func (h *Handler) Supply(c *fiber.Ctx) error {
	total, err := h.service.TotalSupply(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"total_supply": total})
}

// BalanceOf reports the balance of the account named in the path. Balances
// are public; unknown accounts read as zero.
func (h *Handler) BalanceOf(c *fiber.Ctx) error {
	account, err := ledger.ParseAccountID(c.Params("account"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	balance, err := h.service.BalanceOf(c.UserContext(), account)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account": balance.Account,
		"balance": balance.Amount,
		"as_of":   balance.AsOf,
	})
}

// CallerBalance reports the authenticated caller's own balance.
func (h *Handler) CallerBalance(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	balance, err := h.service.BalanceOf(c.UserContext(), caller)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account": balance.Account,
		"balance": balance.Amount,
		"as_of":   balance.AsOf,
	})
}

// Destination and value arrive as strings so a missing field fails loudly
// instead of defaulting to the zero account or zero value.
type transferRequest struct {
	To    string `json:"to"`
	Value string `json:"value"`
}

// Transfer moves tokens from the authenticated caller to the destination.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	to, err := ledger.ParseAccountID(req.To)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid destination account")
	}
	value, err := ledger.ParseAmount(req.Value)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}

	res, err := h.service.Transfer(c.UserContext(), TransferInput{Caller: caller, To: to, Value: value})
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return fiber.NewError(http.StatusBadRequest, "insufficient balance")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"from":         caller,
		"to":           to,
		"value":        value,
		"from_balance": res.FromBalance,
		"to_balance":   res.ToBalance,
		"completed_at": res.CompletedAt,
	})
}
