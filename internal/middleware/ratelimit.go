package middleware

import (
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

// RateLimiter limits quiz generation per client IP.
// A nil storage keeps the counters in process memory.
func RateLimiter(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Get().Warn("Rate limit reached",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return domain.NewRateLimitedError()
		},
	})
}
