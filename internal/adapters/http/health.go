package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler is a liveness check. It returns 200 as long as the process
// can serve requests.
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadyHandler is a readiness check covering the backing services: the
// boundary database, the cache, and the event broker. Any failing dependency
// flips the response to 503.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		checks := fiber.Map{}
		healthy := true

		if deps.DB != nil {
			if err := deps.DB.Pool.Ping(ctx); err != nil {
				checks["database"] = "down: " + err.Error()
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}

		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "down: " + err.Error()
				healthy = false
			} else {
				checks["cache"] = "ok"
			}
		}

		if deps.NATS != nil {
			if !deps.NATS.IsConnected() {
				checks["nats"] = "disconnected"
				healthy = false
			} else {
				checks["nats"] = "ok"
			}
		}

		status := "ready"
		code := fiber.StatusOK
		if !healthy {
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
	}
}
