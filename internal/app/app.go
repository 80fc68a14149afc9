package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"neonvisitors/internal/config"
	"neonvisitors/internal/handlers"
	"neonvisitors/internal/infra/logging"
	"neonvisitors/internal/infra/ratelimit"
)

// SetupApp creates and configures a new Fiber app instance. rdb may be nil.
func SetupApp(cfg config.Config, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": msg,
				},
			})
		},
	})

	RegisterMiddleware(app, cfg, rdb)
	RegisterRoutes(app, cfg, handlers.NewBadgeService(cfg, nil))

	// Ensure all other responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

// RegisterRoutes mounts all route handlers to the app
func RegisterRoutes(app *fiber.App, cfg config.Config, svc *handlers.BadgeService) {
	var store fiber.Storage
	if cfg.RateLimiter.Limit > 0 {
		store = ratelimit.NewStore(ratelimit.RedisConfig{
			Addr: cfg.RateLimiter.RedisHost,
			DB:   cfg.RateLimiter.RedisDB,
		})
	}

	// The badge handler does not branch on method.
	app.All(cfg.Server.Route, userRateLimitMiddleware(cfg, store), svc.HandleBadge)

	app.Get("/ops/monitor", monitor.New(monitor.Config{Title: "neon-visitors"}))
}
