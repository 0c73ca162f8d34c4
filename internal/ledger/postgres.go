package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists balances in PostgreSQL. Amounts travel as base-10
// strings and are stored in NUMERIC(39,0) columns, wide enough for the full
// 128-bit range; a CHECK constraint keeps balances non-negative at the
// storage layer as well.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// One statement per Exec: pgx uses the extended protocol, which does not
// accept multi-command strings.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS token_supply (
        id           smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
        total_supply NUMERIC(39,0) NOT NULL CHECK (total_supply >= 0),
        issuer       BYTEA NOT NULL,
        created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS balances (
        account BYTEA PRIMARY KEY,
        balance NUMERIC(39,0) NOT NULL CHECK (balance >= 0)
    )`,
}

// NewPostgresLedger constructs a Postgres-backed ledger. On an empty database
// it creates the schema and credits the whole supply to the issuer; on an
// already constructed one it verifies that the recorded supply and issuer
// match the configured ones and refuses to start otherwise.
func NewPostgresLedger(ctx context.Context, db *pgxpool.Pool, issuer AccountID, totalSupply Amount) (*PostgresLedger, error) {
	l := &PostgresLedger{db: db}
	if err := l.construct(ctx, issuer, totalSupply); err != nil {
		return nil, fmt.Errorf("construct postgres ledger: %w", err)
	}
	return l, nil
}

func (l *PostgresLedger) construct(ctx context.Context, issuer AccountID, totalSupply Amount) error {
	for _, stmt := range postgresSchema {
		if _, err := l.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var storedSupply string
	var storedIssuer []byte
	err = tx.QueryRow(ctx, `SELECT total_supply::text, issuer FROM token_supply WHERE id = 1 FOR UPDATE`).
		Scan(&storedSupply, &storedIssuer)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := tx.Exec(ctx, `INSERT INTO token_supply (id, total_supply, issuer) VALUES (1, $1::numeric, $2)`,
			totalSupply.String(), issuer[:]); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO balances (account, balance) VALUES ($1, $2::numeric)`,
			issuer[:], totalSupply.String()); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}
	if err != nil {
		return err
	}

	have, err := ParseAmount(storedSupply)
	if err != nil {
		return fmt.Errorf("stored supply %q: %w", storedSupply, err)
	}
	if have != totalSupply {
		return fmt.Errorf("ledger holds supply %s, configured %s", have, totalSupply)
	}
	if !bytes.Equal(storedIssuer, issuer[:]) {
		return fmt.Errorf("ledger was constructed with a different issuer")
	}
	return tx.Commit(ctx)
}

// TotalSupply returns the supply recorded at construction.
func (l *PostgresLedger) TotalSupply(ctx context.Context) (Amount, error) {
	var total string
	if err := l.db.QueryRow(ctx, `SELECT total_supply::text FROM token_supply WHERE id = 1`).Scan(&total); err != nil {
		return Amount{}, err
	}
	return ParseAmount(total)
}

// BalanceOf returns the balance for account; accounts without a row hold zero.
func (l *PostgresLedger) BalanceOf(ctx context.Context, account AccountID) (Amount, error) {
	var balance string
	err := l.db.QueryRow(ctx, `SELECT balance::text FROM balances WHERE account = $1`, account[:]).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Amount{}, nil
	}
	if err != nil {
		return Amount{}, err
	}
	return ParseAmount(balance)
}

// Transfer debits from and credits to inside one transaction. Both resulting
// balances are read before commit so the result reflects exactly the state
// this transfer produced.
func (l *PostgresLedger) Transfer(ctx context.Context, from, to AccountID, value Amount) (TransferResult, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock rows in byte order so two opposite transfers between the same
	// pair cannot deadlock.
	first, second := from, to
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}
	for _, account := range [][]byte{first[:], second[:]} {
		if _, err := tx.Exec(ctx, `SELECT balance FROM balances WHERE account = $1 FOR UPDATE`, account); err != nil {
			return TransferResult{}, err
		}
	}

	fromBalance, err := balanceInTx(ctx, tx, from)
	if err != nil {
		return TransferResult{}, err
	}
	if fromBalance.Cmp(value) < 0 {
		return TransferResult{}, ErrInsufficientBalance
	}

	debited, err := fromBalance.Sub(value)
	if err != nil {
		return TransferResult{}, fmt.Errorf("debit %s: %w", from, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO balances (account, balance) VALUES ($1, $2::numeric)
        ON CONFLICT (account) DO UPDATE SET balance = EXCLUDED.balance`, from[:], debited.String()); err != nil {
		return TransferResult{}, err
	}

	// The credit adds to whatever the debit left behind, so a self-transfer
	// lands back on the original balance.
	if _, err := tx.Exec(ctx, `INSERT INTO balances (account, balance) VALUES ($1, $2::numeric)
        ON CONFLICT (account) DO UPDATE SET balance = balances.balance + EXCLUDED.balance`, to[:], value.String()); err != nil {
		return TransferResult{}, err
	}

	var res TransferResult
	if res.FromBalance, err = balanceInTx(ctx, tx, from); err != nil {
		return TransferResult{}, err
	}
	if res.ToBalance, err = balanceInTx(ctx, tx, to); err != nil {
		return TransferResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}
	return res, nil
}

func balanceInTx(ctx context.Context, tx pgx.Tx, account AccountID) (Amount, error) {
	var balance string
	err := tx.QueryRow(ctx, `SELECT balance::text FROM balances WHERE account = $1`, account[:]).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Amount{}, nil
	}
	if err != nil {
		return Amount{}, err
	}
	return ParseAmount(balance)
}
