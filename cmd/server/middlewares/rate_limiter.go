package middlewares

import (
	"time"

	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitWindow is the bucket length of AuthLimiter.
const RateLimitWindow = time.Minute

// AuthLimiter allows perWindow requests per client IP and window. Routes that
// share the returned handler share one bucket per IP. A non-positive perWindow
// disables limiting.
func AuthLimiter(perWindow int, window time.Duration) fiber.Handler {
	if perWindow <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:          perWindow,
		Expiration:   window,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			logger.L().Warn("rate limit reached", "ip", c.IP(), "path", c.Path())
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	})
}
