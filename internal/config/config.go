package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "config.yaml"

// Config holds all runtime settings of the badge service.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
		Route   string `yaml:"route"`
	} `yaml:"server"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Badge BadgeConfig `yaml:"badge"`

	RateLimiter struct {
		// Limit is the number of requests per Interval per client. 0 disables the limiter.
		Limit     int           `yaml:"limit"`
		Interval  time.Duration `yaml:"interval"`
		RedisHost string        `yaml:"redis_host"`
		RedisDB   int           `yaml:"redis_db"`
	} `yaml:"rate_limiter"`
}

// BadgeConfig describes the upstream visitor-badge service and request defaults.
type BadgeConfig struct {
	DefaultPageID string `yaml:"default_page_id"`
	UpstreamURL   string `yaml:"upstream_url"`
	UserAgent     string `yaml:"user_agent"`
	LeftText      string `yaml:"left_text"`
	RightColor    string `yaml:"right_color"`
	// Timeout bounds the upstream fetch. 0 means no timeout.
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = ":8080"
	cfg.Server.Route = "/api/neon-visitors"

	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 7

	cfg.Badge = BadgeConfig{
		DefaultPageID: "chiragvaze.chiragvaze",
		UpstreamURL:   "https://visitor-badge.laobi.icu/badge",
		UserAgent:     "neon-visitor-badge/1.0",
		LeftText:      "Profile Views",
		RightColor:    "4f46e5",
		MaxBodyBytes:  2 << 20,
	}

	cfg.RateLimiter.Interval = time.Minute
	return cfg
}

// Load reads the file named by CONFIG_PATH. Without CONFIG_PATH it falls back
// to DefaultPath, and to Defaults when that file does not exist.
func Load() Config {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return LoadFrom(p)
	}
	if _, err := os.Stat(DefaultPath); errors.Is(err, os.ErrNotExist) {
		cfg := Defaults()
		mustValidate(cfg)
		return cfg
	}
	return LoadFrom(DefaultPath)
}

// LoadFrom reads and validates the YAML file at path. Values missing from the
// file keep their defaults. It panics on read, parse or validation errors.
func LoadFrom(path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}
	mustValidate(cfg)
	return cfg
}

func mustValidate(cfg Config) {
	if err := Validate(cfg); err != nil {
		panic("config: " + err.Error())
	}
}

// Validate reports the first invalid setting in cfg.
func Validate(cfg Config) error {
	if !strings.HasPrefix(cfg.Server.Route, "/") {
		return fmt.Errorf("server.route must start with '/', got %q", cfg.Server.Route)
	}
	if cfg.Badge.DefaultPageID == "" {
		return errors.New("badge.default_page_id is empty")
	}
	u, err := url.Parse(cfg.Badge.UpstreamURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("badge.upstream_url must be an absolute http(s) URL, got %q", cfg.Badge.UpstreamURL)
	}
	if cfg.Badge.Timeout < 0 {
		return errors.New("badge.timeout must not be negative")
	}
	if cfg.Badge.MaxBodyBytes <= 0 {
		return errors.New("badge.max_body_bytes must be positive")
	}
	if cfg.RateLimiter.Limit < 0 {
		return errors.New("rate_limiter.limit must not be negative")
	}
	if cfg.RateLimiter.Limit > 0 && cfg.RateLimiter.Interval <= 0 {
		return errors.New("rate_limiter.interval must be positive when the limiter is enabled")
	}
	return nil
}
