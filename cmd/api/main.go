package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/playstudy/playstudy-api/internal/api"
	"github.com/playstudy/playstudy-api/internal/config"
	"github.com/playstudy/playstudy-api/internal/googleauth"
	"github.com/playstudy/playstudy-api/internal/ratelimit"
	"github.com/playstudy/playstudy-api/internal/server"
	"github.com/playstudy/playstudy-api/internal/service"
	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/storage/memory"
	"github.com/playstudy/playstudy-api/internal/storage/sqlite"
	"github.com/playstudy/playstudy-api/internal/telemetry"
	"github.com/playstudy/playstudy-api/internal/token"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	configPath := os.Getenv("PLAYSTUDY_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdownTracer, err := telemetry.InitTracer("playstudy-api", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := newUserStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	limits, err := newRateLimitStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open rate limit store: %v", err)
	}

	codec := token.NewCodec(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	users := service.NewUserService(store, logger)
	verifier := googleauth.NewIDTokenVerifier(cfg.Auth.GoogleClientID)

	srv := server.New(cfg, logger, codec, limits)
	api.NewHandler(users, codec, verifier, logger).Mount(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("API started",
		slog.Int("port", cfg.Server.Port),
		slog.String("storage", cfg.Storage.Type),
		slog.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	case <-sigChan:
	}

	logger.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server shutdown complete")
}

func newUserStore(cfg *config.Config) (storage.UserStore, error) {
	switch cfg.Storage.Type {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.New(cfg.Storage.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

func newRateLimitStore(cfg *config.Config) (ratelimit.Store, error) {
	switch cfg.RateLimit.Store {
	case "", "memory":
		return ratelimit.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.RateLimit.RedisAddr, err)
		}
		return ratelimit.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.RateLimit.Store)
	}
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
