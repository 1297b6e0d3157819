package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/hyperingenious/fold-backend/pkg/ratelimit"
)

// RateLimitMiddleware rejects clients that exceed the limiter's window,
// keyed by client IP. Limiter failures fail open: a Redis outage must not
// lock everyone out of sign-in.
func RateLimitMiddleware(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := limiter.Allow(c.Context(), c.IP())
		if err != nil {
			log.Printf("[RATELIMIT] Check failed for %s: %v", c.IP(), err)
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too Many Requests",
				"message": "Rate limit exceeded, try again later",
			})
		}
		return c.Next()
	}
}
