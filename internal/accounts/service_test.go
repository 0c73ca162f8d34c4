package accounts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	ctx := context.Background()
	account, err := svc.Register(ctx, Credentials{Label: "amadi", Secret: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if account.ID != DeriveID("amadi") {
		t.Fatalf("expected derived id %s, got %s", DeriveID("amadi"), account.ID)
	}

	authed, err := svc.Authenticate(ctx, Credentials{Label: "amadi", Secret: "correct-horse"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != account.ID {
		t.Fatalf("authenticated a different account")
	}

	if _, err := svc.Authenticate(ctx, Credentials{Label: "amadi", Secret: "wrong-secret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, Credentials{Label: "nobody", Secret: "whatever-1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown label, got %v", err)
	}
}

func TestRegisterRejectsDuplicateLabel(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Label: "amadi", Secret: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, Credentials{Label: "amadi", Secret: "another-pass"}); !errors.Is(err, ErrLabelTaken) {
		t.Fatalf("expected label taken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Label: "  ", Secret: "correct-horse"}); err == nil {
		t.Fatalf("expected error for blank label")
	}
	if _, err := svc.Register(ctx, Credentials{Label: "amadi", Secret: "short"}); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestDeriveIDStableAndDistinct(t *testing.T) {
	if DeriveID("treasury") != DeriveID("treasury") {
		t.Fatalf("expected stable derivation")
	}
	if DeriveID("treasury") == DeriveID("amadi") {
		t.Fatalf("expected distinct ids for distinct labels")
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first, err := svc.Bootstrap(ctx, "treasury", "issuer-secret")
	if err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	second, err := svc.Bootstrap(ctx, "treasury", "issuer-secret")
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("bootstrap produced different accounts: %s != %s", first.ID, second.ID)
	}
}

func TestBoltRepositoryRoundTrip(t *testing.T) {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "accounts.db"), 0600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewBoltRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	svc := NewService(repo)
	ctx := context.Background()

	account, err := svc.Register(ctx, Credentials{Label: "amadi", Secret: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	found, err := repo.FindByLabel(ctx, "amadi")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != account.ID || found.Label != account.Label {
		t.Fatalf("round trip mismatch: %+v != %+v", found, account)
	}

	if _, err := repo.FindByLabel(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Create(ctx, account); !errors.Is(err, ErrLabelTaken) {
		t.Fatalf("expected label taken, got %v", err)
	}
}

func TestBoltRepositoryMissingBucket(t *testing.T) {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "accounts.db"), 0600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Bypassing the constructor leaves the bucket missing; both operations
	// must fail cleanly rather than panic.
	repo := &BoltRepository{db: db}
	ctx := context.Background()

	if _, err := repo.FindByLabel(ctx, "amadi"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected bucket error, got %v", err)
	}
	if err := repo.Create(ctx, Account{Label: "amadi"}); err == nil {
		t.Fatalf("expected bucket error on create")
	}
}
