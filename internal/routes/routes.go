package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/likuta/internal/accounts"
	"github.com/congo-pay/likuta/internal/auth"
	"github.com/congo-pay/likuta/internal/config"
	"github.com/congo-pay/likuta/internal/ledger"
	"github.com/congo-pay/likuta/internal/middleware"
	"github.com/congo-pay/likuta/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Bolt   *bolt.DB
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. It also constructs
// the ledger: on the first boot of a persistent backend the whole supply is
// credited to the issuer account derived from the configured label.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	ctx := context.Background()
	issuerID := accounts.DeriveID(d.Cfg.IssuerLabel)

	ledgerBackend, err := newLedger(ctx, d, issuerID)
	if err != nil {
		return err
	}
	accountsRepo, err := newAccountsRepository(ctx, d)
	if err != nil {
		return err
	}

	accountsSvc := accounts.NewService(accountsRepo)
	if _, err := accountsSvc.Bootstrap(ctx, d.Cfg.IssuerLabel, d.Cfg.IssuerSecret); err != nil {
		return fmt.Errorf("bootstrap issuer account: %w", err)
	}
	d.Logger.Info("ledger ready",
		slog.String("backend", d.Cfg.LedgerBackend),
		slog.String("issuer", issuerID.String()),
		slog.String("total_supply", d.Cfg.TotalSupply.String()),
	)

	tokenHandler := token.NewHandler(token.NewService(ledgerBackend))
	authHandler := auth.NewHandler(accountsSvc, auth.NewService(d.Cfg))

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAccountRoutes(api, accountsSvc, d.Logger)
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, 5))

	// Reads are public, transfers require a caller
	RegisterTokenRoutes(api, tokenHandler, middleware.CallerAuth(d.Cfg))

	return nil
}

// newLedger picks the ledger backend the configuration names.
func newLedger(ctx context.Context, d Deps, issuer ledger.AccountID) (ledger.Ledger, error) {
	switch d.Cfg.LedgerBackend {
	case config.BackendPostgres:
		if d.DB == nil {
			return nil, fmt.Errorf("postgres ledger backend requires a database connection")
		}
		return ledger.NewPostgresLedger(ctx, d.DB, issuer, d.Cfg.TotalSupply)
	case config.BackendBolt:
		if d.Bolt == nil {
			return nil, fmt.Errorf("bolt ledger backend requires an open bolt database")
		}
		return ledger.NewBoltLedger(d.Bolt, issuer, d.Cfg.TotalSupply)
	case config.BackendMemory:
		return ledger.NewInMemory(issuer, d.Cfg.TotalSupply), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", d.Cfg.LedgerBackend)
}

// newAccountsRepository stores accounts next to the ledger they transact on.
func newAccountsRepository(ctx context.Context, d Deps) (accounts.Repository, error) {
	switch d.Cfg.LedgerBackend {
	case config.BackendPostgres:
		return accounts.NewPostgresRepository(ctx, d.DB)
	case config.BackendBolt:
		return accounts.NewBoltRepository(d.Bolt)
	}
	return accounts.NewMemoryRepository(), nil
}
