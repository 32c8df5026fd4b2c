package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/chef-site-api/internal/config"
	"github.com/noah-isme/chef-site-api/internal/handler"
	"github.com/noah-isme/chef-site-api/internal/observability"
	"github.com/noah-isme/chef-site-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContactHandler *handler.ContactHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ContactHandler != nil {
		deps.ContactHandler.Register(api.Group("/contact"))
	}

	app.Use(func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "route not found")
	})
}
