package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/playstudy/playstudy-api/internal/config"
	"github.com/playstudy/playstudy-api/internal/ratelimit"
	"github.com/playstudy/playstudy-api/internal/token"
)

// loggingSkipPaths bypass the logging stage entirely.
var loggingSkipPaths = []string{"/health", "/static"}

// Server owns the router and the middleware pipeline. Stage order is fixed,
// outermost first: request id, panic recovery, logging, rate limiting, soft
// authentication, timeout. Inner stages add headers without clobbering what
// outer stages already set.
type Server struct {
	Router *chi.Mux
	cfg    config.ServerConfig
	logger *slog.Logger
	http   *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, codec *token.Codec, limits ratelimit.Store) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RecoverMiddleware(logger))
	r.Use(LoggingMiddleware(logger, loggingSkipPaths))
	r.Use(RateLimitMiddleware(cfg.RateLimit, limits, logger))
	r.Use(AuthMiddleware(codec, logger))
	r.Use(TimeoutMiddleware(time.Duration(cfg.Server.RequestTimeout) * time.Second))

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "playstudy-api")
	})

	return &Server{
		Router: r,
		cfg:    cfg.Server,
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router,
	}
	s.logger.Info("starting server", slog.Int("port", s.cfg.Port))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
