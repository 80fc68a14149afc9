// Package handler is the Vercel Go function serving /api/neon-visitors.
package handler

import (
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"neonvisitors/internal/app"
	"neonvisitors/internal/config"
	"neonvisitors/internal/infra/logging"
	"neonvisitors/internal/infra/ratelimit"
)

var (
	fiberHandler     http.HandlerFunc
	fiberHandlerOnce sync.Once
)

func setup() {
	cfg := config.Load()
	logging.InitLogger("", 0, 0, 0, false, cfg.Logger.Level)

	rdb := ratelimit.NewClient(ratelimit.RedisConfig{
		Addr: cfg.RateLimiter.RedisHost,
		DB:   cfg.RateLimiter.RedisDB,
	})
	fiberHandler = adaptor.FiberApp(app.SetupApp(cfg, rdb))
}

// Handler is the entry point for Vercel's Go runtime.
func Handler(w http.ResponseWriter, r *http.Request) {
	fiberHandlerOnce.Do(setup)
	fiberHandler.ServeHTTP(w, r)
}
