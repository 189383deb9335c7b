package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the immutable process configuration. It is loaded once in main
// and passed into each component's constructor; no global lookups.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Storage   StorageConfig   `koanf:"storage"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port           int `koanf:"port"`
	RequestTimeout int `koanf:"request_timeout"` // seconds
}

type AuthConfig struct {
	SecretKey              string `koanf:"secret_key"`
	AccessTokenExpiryMins  int    `koanf:"access_token_expiry_mins"`
	RefreshTokenExpiryDays int    `koanf:"refresh_token_expiry_days"`
	GoogleClientID         string `koanf:"google_client_id"`
}

func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpiryMins) * time.Minute
}

func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenExpiryDays) * 24 * time.Hour
}

type RateLimitConfig struct {
	Enabled       bool     `koanf:"enabled"`
	MaxRequests   int      `koanf:"max_requests"`
	WindowSeconds int      `koanf:"window_seconds"`
	ExemptPaths   []string `koanf:"exempt_paths"`
	Store         string   `koanf:"store"` // memory, redis
	RedisAddr     string   `koanf:"redis_addr"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // memory, sqlite
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// PLAYSTUDY_-prefixed environment variables (highest precedence). A double
// underscore in an env var maps to a nesting level, e.g.
// PLAYSTUDY_SERVER__PORT=9000 sets server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		k.Set(key, value)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("PLAYSTUDY_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "PLAYSTUDY_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("auth.secret_key is required")
	}

	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":                    8000,
		"server.request_timeout":         30,
		"auth.access_token_expiry_mins":  30,
		"auth.refresh_token_expiry_days": 7,
		"rate_limit.enabled":             true,
		"rate_limit.max_requests":        100,
		"rate_limit.window_seconds":      60,
		"rate_limit.exempt_paths":        []string{"/health", "/docs", "/openapi.json", "/redoc"},
		"rate_limit.store":               "memory",
		"storage.type":                   "memory",
		"storage.sqlite.path":            "./data/playstudy.db",
		"log.level":                      "info",
	}
}
