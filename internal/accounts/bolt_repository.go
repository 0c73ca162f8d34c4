package accounts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
)

var accountsBucket = []byte("accounts")

// BoltRepository stores accounts in a Bolt database, typically the same file
// the ledger lives in. Records are JSON-encoded under their label.
type BoltRepository struct {
	db *bolt.DB
}

// NewBoltRepository builds a Bolt-backed account repository, creating its
// bucket when missing.
func NewBoltRepository(db *bolt.DB) (*BoltRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create accounts bucket: %w", err)
	}
	return &BoltRepository{db: db}, nil
}

// Create inserts a new account.
func (r *BoltRepository) Create(_ context.Context, account Account) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(accountsBucket)
		if bucket == nil {
			return fmt.Errorf("accounts bucket missing")
		}
		if bucket.Get([]byte(account.Label)) != nil {
			return ErrLabelTaken
		}
		raw, err := json.Marshal(account)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(account.Label), raw)
	})
}

// FindByLabel fetches an account by its label.
func (r *BoltRepository) FindByLabel(_ context.Context, label string) (Account, error) {
	var account Account
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(accountsBucket)
		if bucket == nil {
			return fmt.Errorf("accounts bucket missing")
		}
		raw := bucket.Get([]byte(label))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &account)
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}
