package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/likuta/internal/accounts"
	"github.com/congo-pay/likuta/internal/ledger"
)

// Handler exposes the login endpoint.
type Handler struct {
	accounts *accounts.Service
	svc      *Service
}

// NewHandler creates a new auth handler.
func NewHandler(accountsSvc *accounts.Service, svc *Service) *Handler {
	return &Handler{accounts: accountsSvc, svc: svc}
}

type loginRequest struct {
	Label  string `json:"label"`
	Secret string `json:"secret"`
}

type loginResponse struct {
	AccountID   ledger.AccountID `json:"account_id"`
	AccessToken string           `json:"access_token"`
	ExpiresIn   int64            `json:"expires_in"`
}

// Login validates credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.accounts.Authenticate(c.UserContext(), accounts.Credentials{Label: req.Label, Secret: req.Secret})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	token, err := h.svc.Issue(account)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		AccountID:   account.ID,
		AccessToken: token.AccessToken,
		ExpiresIn:   token.ExpiresIn,
	})
}
