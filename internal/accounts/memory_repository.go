package accounts

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account store for development and
// testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Label]; exists {
		return ErrLabelTaken
	}
	r.accounts[account.Label] = account
	return nil
}

func (r *memoryRepository) FindByLabel(_ context.Context, label string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[label]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}
