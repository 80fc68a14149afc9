package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"neonvisitors/internal/badge"
	"neonvisitors/internal/config"
	"neonvisitors/internal/handlers"
	"neonvisitors/internal/infra/logging"
)

const (
	livenessPath  = "/ops/health"
	readinessPath = "/ops/ready"
)

// clientKey identifies an anonymous client by IP and user agent.
func clientKey(c *fiber.Ctx) string {
	sum := sha256.Sum256([]byte(c.IP() + c.Get(fiber.HeaderUserAgent)))
	return hex.EncodeToString(sum[:])
}

// userRateLimitMiddleware limits requests per client when a limit is configured.
// It is mounted on the badge route itself so every spelling the router accepts
// (trailing slash, any case) shares one counter. The limit-reached response is still a 200 badge so image embeds keep rendering.
func userRateLimitMiddleware(cfg config.Config, store fiber.Storage) fiber.Handler {
	if cfg.RateLimiter.Limit <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return limiter.New(limiter.Config{
		Max:               cfg.RateLimiter.Limit,
		Expiration:        cfg.RateLimiter.Interval,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           store,
		KeyGenerator:      clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			logging.Warn("Rate limit exceeded", "user", clientKey(c), "path", c.Path())
			return handlers.SendSVG(c, badge.RenderMessage("Too many requests"))
		},
	})
}

// readinessProbe reports ready when Redis is not configured or answers a ping.
func readinessProbe(rdb *redis.Client) healthcheck.HealthChecker {
	return func(c *fiber.Ctx) bool {
		if rdb == nil {
			return true
		}
		ctx, cancel := context.WithTimeout(c.Context(), time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.Warn("Readiness probe failed", "error", err)
			return false
		}
		return true
	}
}

// RegisterMiddleware attaches global middleware to the app
func RegisterMiddleware(app *fiber.App, cfg config.Config, rdb *redis.Client) {
	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  livenessPath,
		ReadinessEndpoint: readinessPath,
		ReadinessProbe:    readinessProbe(rdb),
	}))

	app.Use(func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = c.GetRespHeader(fiber.HeaderXRequestID)
		}
		logging.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})
}
