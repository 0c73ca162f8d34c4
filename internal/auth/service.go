package auth

import (
	"time"

	"github.com/congo-pay/likuta/internal/accounts"
	"github.com/congo-pay/likuta/internal/config"
)

// Service issues access tokens for authenticated accounts. The token subject
// is the hex account id, so the transfer engine learns the caller from the
// token alone without a repository lookup.
type Service struct {
	cfg config.Config
}

// NewService creates a new token issuing service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Token carries an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Issue signs an access token for the account.
func (s *Service) Issue(account accounts.Account) (Token, error) {
	now := time.Now()
	claims := map[string]any{
		"sub":   account.ID.String(),
		"label": account.Label,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.AccessTokenTTL).Unix(),
	}
	signed, err := SignHS256(claims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}, nil
}
