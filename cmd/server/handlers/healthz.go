package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const HealthzTimeout = 5 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

// Healthz returns a handler reporting the health of the server and its store.
// @Summary Health check
// @Description Check if the server is healthy
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func Healthz(ping Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "down",
				"error":  err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status": "ok",
		})
	}
}
