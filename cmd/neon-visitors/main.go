package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"neonvisitors/internal/app"
	"neonvisitors/internal/config"
	"neonvisitors/internal/infra/logging"
	"neonvisitors/internal/infra/ratelimit"
)

func main() {
	cfg := config.Load()
	if err := ensureLogDir(cfg.Logger.File); err != nil {
		logging.Error("Cannot create log directory, logging to stdout only", "file", cfg.Logger.File, "error", err)
		cfg.Logger.File = ""
	}
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	rdb := ratelimit.NewClient(ratelimit.RedisConfig{
		Addr: cfg.RateLimiter.RedisHost,
		DB:   cfg.RateLimiter.RedisDB,
	})
	if rdb != nil {
		defer rdb.Close()
	}

	idleConnsClosed := make(chan struct{})
	startServer(app.SetupApp(cfg, rdb), cfg, idleConnsClosed)
	<-idleConnsClosed
}

// ensureLogDir creates the parent directory of a log file path.
func ensureLogDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// startServer starts the Fiber app and blocks until a shutdown signal arrives
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		addr := cfg.Server.Host + cfg.Server.Port
		logging.Info("Listening", "addr", addr, "route", cfg.Server.Route)
		if err := app.Listen(addr); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint
	signal.Stop(sigint)

	logging.Warn("Shutdown signal received, closing server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
