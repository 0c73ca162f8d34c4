package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/likuta/internal/accounts"
)

// RegisterAccountRoutes wires account registration. Registration is open:
// anyone may create an account, which starts with a zero balance until someone
// transfers tokens to it.
func RegisterAccountRoutes(r fiber.Router, svc *accounts.Service, logger *slog.Logger) {
	r.Post("/accounts", func(c *fiber.Ctx) error {
		var req struct {
			Label  string `json:"label"`
			Secret string `json:"secret"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		account, err := svc.Register(c.UserContext(), accounts.Credentials{Label: req.Label, Secret: req.Secret})
		if err != nil {
			if errors.Is(err, accounts.ErrLabelTaken) {
				return fiber.NewError(http.StatusConflict, "label already registered")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if logger != nil {
			logger.Info("account registered",
				slog.String("account", account.ID.String()),
				slog.String("label", account.Label),
				slog.Int("status", http.StatusCreated),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"account_id": account.ID,
			"label":      account.Label,
			"created_at": account.CreatedAt,
		})
	})
}
