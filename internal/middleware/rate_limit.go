package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/firmsite-api/internal/service"
)

// RateLimitConfig describes a burst limiter.
type RateLimitConfig struct {
	Identifier   string
	Max          int
	Window       time.Duration
	KeyFunc      func(c *fiber.Ctx) string
	LimitReached fiber.Handler
}

// RateLimit creates a keyed burst limiter. Requests are keyed by SourceKey unless KeyFunc is set.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = SourceKey
	}

	limiterCfg := limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", cfg.Identifier, keyFunc(c))
		},
	}
	if cfg.LimitReached != nil {
		limiterCfg.LimitReached = cfg.LimitReached
	}
	return limiter.New(limiterCfg)
}

// SourceKey derives the per-client key from forwarded address headers.
func SourceKey(c *fiber.Ctx) string {
	return service.SourceKey(c.Get(fiber.HeaderXForwardedFor), c.Get("X-Real-IP"))
}
