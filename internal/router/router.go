package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/firmsite-api/internal/config"
	"github.com/noah-isme/firmsite-api/internal/handler"
	"github.com/noah-isme/firmsite-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContactHandler *handler.ContactHandler
	SiteHandler    *handler.SiteHandler
	ContactLimiter fiber.Handler
	HealthProbes   []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	if deps.ContactHandler != nil {
		var guards []fiber.Handler
		if deps.ContactLimiter != nil {
			guards = append(guards, deps.ContactLimiter)
		}
		deps.ContactHandler.Register(app.Group("/api/contact"), guards...)
	}

	if deps.SiteHandler != nil {
		deps.SiteHandler.Register(api.Group("/site"))
		// Public routes include a catch-all page redirect and go last.
		deps.SiteHandler.RegisterPublic(app)
	}
}
