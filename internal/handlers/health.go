package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /health.
// It returns a simple JSON response indicating the server is alive and reachable.
// This endpoint is intentionally lightweight, with no database queries and no authentication.
// Load balancers and container liveness probes call it.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// PingFunc checks that the backing store can serve requests.
type PingFunc func(ctx context.Context) error

// Ready handles GET /ready. Unlike /health it checks the store, so a readiness
// probe stops routing traffic to an instance whose database connection is gone.
// A nil ping (the in-memory store) is always ready.
func Ready(ping PingFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unavailable",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}
