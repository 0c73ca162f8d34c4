package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds liveness/readiness style endpoints covering every
// configured backing store.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		statuses := fiber.Map{}
		healthy := true

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if d.DB != nil {
			statuses["postgres"] = "ok"
			if err := d.DB.Ping(ctx); err != nil {
				statuses["postgres"] = err.Error()
				healthy = false
			}
		}
		if d.Cache != nil {
			statuses["redis"] = "ok"
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				statuses["redis"] = err.Error()
				healthy = false
			}
		}
		if d.Bolt != nil {
			statuses["bolt"] = "ok"
			if err := d.Bolt.View(func(*bolt.Tx) error { return nil }); err != nil {
				statuses["bolt"] = err.Error()
				healthy = false
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    statuses,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
