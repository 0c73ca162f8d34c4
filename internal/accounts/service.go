package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"

	"github.com/congo-pay/likuta/internal/ledger"
)

var (
	// ErrLabelTaken indicates the label is already registered.
	ErrLabelTaken = errors.New("label already registered")

	// ErrInvalidCredentials indicates the label or secret did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DeriveID maps a human-readable label onto the opaque 32-byte identifier the
// ledger uses. BLAKE2b keeps identifiers uniform and stable across restarts,
// so the issuer lands on the same account every boot.
func DeriveID(label string) ledger.AccountID {
	return ledger.AccountID(blake2b.Sum256([]byte(label)))
}

// Service manages account registration and authentication.
type Service struct {
	repo Repository
}

// NewService creates a new accounts service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account for the label, storing only a bcrypt hash of
// the secret.
func (s *Service) Register(ctx context.Context, creds Credentials) (Account, error) {
	label := strings.TrimSpace(creds.Label)
	if label == "" {
		return Account{}, errors.New("label is required")
	}
	if len(creds.Secret) < 8 {
		return Account{}, errors.New("secret must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		ID:         DeriveID(label),
		Label:      label,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}

	return account, nil
}

// Authenticate verifies the secret for a label and returns the account.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Account, error) {
	account, err := s.repo.FindByLabel(ctx, strings.TrimSpace(creds.Label))
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.SecretHash, []byte(creds.Secret)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// Bootstrap makes sure the account for label exists, registering it on first
// run. Used at startup for the issuer.
func (s *Service) Bootstrap(ctx context.Context, label, secret string) (Account, error) {
	account, err := s.repo.FindByLabel(ctx, label)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	account, err = s.Register(ctx, Credentials{Label: label, Secret: secret})
	if errors.Is(err, ErrLabelTaken) {
		// Another instance won the race; the account is there now.
		return s.repo.FindByLabel(ctx, label)
	}
	return account, err
}
