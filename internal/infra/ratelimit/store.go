package ratelimit

import (
	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"
	"github.com/redis/go-redis/v9"

	"neonvisitors/internal/infra/logging"
)

// RedisConfig locates the optional Redis instance shared by all replicas.
type RedisConfig struct {
	Addr string
	DB   int
}

// NewStore returns a Redis-backed limiter store, or an in-memory one when
// Addr is empty or Redis cannot be reached.
func NewStore(cfg RedisConfig) (store fiber.Storage) {
	if cfg.Addr == "" {
		return memoryStorage.New()
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r, "addr", cfg.Addr)
			store = memoryStorage.New()
		}
	}()

	store = redisStorage.New(redisStorage.Config{
		Addrs:    []string{cfg.Addr},
		Database: cfg.DB,
	})
	logging.Info("Using Redis for rate limiting", "addr", cfg.Addr, "db", cfg.DB)
	return store
}

// NewClient returns a go-redis client for cfg, or nil when Addr is empty.
func NewClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
}
