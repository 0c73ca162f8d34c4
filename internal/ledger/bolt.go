package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/boltdb/bolt"
)

var (
	boltMetaBucket     = []byte("meta")
	boltBalancesBucket = []byte("balances")
	boltSupplyKey      = []byte("total_supply")
	boltIssuerKey      = []byte("issuer")
)

// BoltLedger persists balances in a single-file Bolt database, for
// single-node deployments that want durability without running PostgreSQL.
// Amounts are stored as their 16 raw big-endian bytes.
type BoltLedger struct {
	db *bolt.DB
}

// NewBoltLedger constructs a Bolt-backed ledger inside db. A fresh file gets
// the supply credited to the issuer; a previously constructed one must carry
// the same supply and issuer or the constructor refuses it.
func NewBoltLedger(db *bolt.DB, issuer AccountID, totalSupply Amount) (*BoltLedger, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(boltMetaBucket)
		if err != nil {
			return err
		}
		balances, err := tx.CreateBucketIfNotExists(boltBalancesBucket)
		if err != nil {
			return err
		}

		stored := meta.Get(boltSupplyKey)
		if stored == nil {
			if err := meta.Put(boltSupplyKey, totalSupply[:]); err != nil {
				return err
			}
			if err := meta.Put(boltIssuerKey, issuer[:]); err != nil {
				return err
			}
			return balances.Put(issuer[:], totalSupply[:])
		}

		have, err := amountFromBytes(stored)
		if err != nil {
			return err
		}
		if have != totalSupply {
			return fmt.Errorf("ledger holds supply %s, configured %s", have, totalSupply)
		}
		if !bytes.Equal(meta.Get(boltIssuerKey), issuer[:]) {
			return fmt.Errorf("ledger was constructed with a different issuer")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("construct bolt ledger: %w", err)
	}
	return &BoltLedger{db: db}, nil
}

// TotalSupply returns the supply recorded at construction.
func (l *BoltLedger) TotalSupply(_ context.Context) (Amount, error) {
	var total Amount
	err := l.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(boltMetaBucket)
		if meta == nil {
			return fmt.Errorf("meta bucket missing")
		}
		var err error
		total, err = amountFromBytes(meta.Get(boltSupplyKey))
		return err
	})
	if err != nil {
		return Amount{}, err
	}
	return total, nil
}

// BalanceOf returns the balance for account; accounts without an entry hold
// zero.
func (l *BoltLedger) BalanceOf(_ context.Context, account AccountID) (Amount, error) {
	var balance Amount
	err := l.db.View(func(tx *bolt.Tx) error {
		balances := tx.Bucket(boltBalancesBucket)
		if balances == nil {
			return fmt.Errorf("balances bucket missing")
		}
		raw := balances.Get(account[:])
		if raw == nil {
			return nil
		}
		var err error
		balance, err = amountFromBytes(raw)
		return err
	})
	if err != nil {
		return Amount{}, err
	}
	return balance, nil
}

// Transfer debits from and credits to inside one write transaction.
func (l *BoltLedger) Transfer(_ context.Context, from, to AccountID, value Amount) (TransferResult, error) {
	var res TransferResult
	err := l.db.Update(func(tx *bolt.Tx) error {
		balances := tx.Bucket(boltBalancesBucket)
		if balances == nil {
			return fmt.Errorf("balances bucket missing")
		}

		fromBalance, err := bucketAmount(balances, from)
		if err != nil {
			return err
		}
		if fromBalance.Cmp(value) < 0 {
			return ErrInsufficientBalance
		}

		debited, err := fromBalance.Sub(value)
		if err != nil {
			return fmt.Errorf("debit %s: %w", from, err)
		}
		if err := balances.Put(from[:], debited[:]); err != nil {
			return err
		}

		// Bolt write transactions see their own writes, so this read picks
		// up the debit when from and to are the same account.
		toBalance, err := bucketAmount(balances, to)
		if err != nil {
			return err
		}
		credited, err := toBalance.Add(value)
		if err != nil {
			return fmt.Errorf("credit %s: %w", to, err)
		}
		if err := balances.Put(to[:], credited[:]); err != nil {
			return err
		}

		if res.FromBalance, err = bucketAmount(balances, from); err != nil {
			return err
		}
		res.ToBalance, err = bucketAmount(balances, to)
		return err
	})
	if err != nil {
		return TransferResult{}, err
	}
	return res, nil
}

func bucketAmount(b *bolt.Bucket, account AccountID) (Amount, error) {
	raw := b.Get(account[:])
	if raw == nil {
		return Amount{}, nil
	}
	return amountFromBytes(raw)
}

func amountFromBytes(raw []byte) (Amount, error) {
	if len(raw) != len(Amount{}) {
		return Amount{}, fmt.Errorf("stored amount is %d bytes, want %d", len(raw), len(Amount{}))
	}
	var a Amount
	copy(a[:], raw)
	return a, nil
}
