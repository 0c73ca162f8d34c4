package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/likuta/internal/ledger"
)

// ErrNotFound indicates no account is registered under the label.
var ErrNotFound = errors.New("account not found")

// Repository persists registered accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByLabel(ctx context.Context, label string) (Account, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository, creating
// its table when missing.
func NewPostgresRepository(ctx context.Context, db *pgxpool.Pool) (*PostgresRepository, error) {
	const schema = `CREATE TABLE IF NOT EXISTS accounts (
        id          BYTEA PRIMARY KEY,
        label       TEXT NOT NULL UNIQUE,
        secret_hash BYTEA NOT NULL,
        created_at  TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create accounts table: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, account Account) error {
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (id, label, secret_hash, created_at)
        VALUES ($1, $2, $3, $4)`, account.ID[:], account.Label, account.SecretHash, account.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrLabelTaken
	}
	return err
}

// FindByLabel fetches an account by its label.
func (r *PostgresRepository) FindByLabel(ctx context.Context, label string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, label, secret_hash, created_at FROM accounts WHERE label = $1`, label)
	var (
		id        []byte
		createdAt time.Time
		account   Account
	)
	if err := row.Scan(&id, &account.Label, &account.SecretHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	if len(id) != ledger.AccountIDSize {
		return Account{}, fmt.Errorf("stored account id is %d bytes, want %d", len(id), ledger.AccountIDSize)
	}
	copy(account.ID[:], id)
	account.CreatedAt = createdAt.UTC()
	return account, nil
}
