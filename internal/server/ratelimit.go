package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/playstudy/playstudy-api/internal/config"
	"github.com/playstudy/playstudy-api/internal/httperr"
	"github.com/playstudy/playstudy-api/internal/identity"
	"github.com/playstudy/playstudy-api/internal/ratelimit"
)

// RateLimitMiddleware throttles requests per (caller, route) pair against the
// configured window. A caller at the limit is answered 429 immediately
// without reaching downstream stages and without incrementing the counter
// further. Forwarded requests are annotated with X-RateLimit-Limit,
// X-RateLimit-Remaining, and X-RateLimit-Reset headers.
//
// A store failure is answered with a generic server error rather than letting
// traffic through unlimited.
//
// Paths on the exempt list (prefix match) bypass the stage entirely, and the
// whole stage can be disabled by configuration.
func RateLimitMiddleware(cfg config.RateLimitConfig, store ratelimit.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			for _, prefix := range cfg.ExemptPaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			clientKey := identity.ClientKey(r, GetIdentity(r.Context()))
			key := clientKey + ":" + r.URL.Path

			count, _, err := store.Get(r.Context(), key)
			if err != nil {
				logger.Error("rate limit store failure",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("client", clientKey),
					slog.Any("error", err),
				)
				httperr.Write(w, httperr.Server(""))
				return
			}

			if count >= int64(cfg.MaxRequests) {
				logger.Warn("rate limit exceeded",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("client", clientKey),
					slog.String("path", r.URL.Path),
				)
				httperr.Write(w, httperr.RateLimit())
				return
			}

			newCount, expiry, err := store.Increment(r.Context(), key, cfg.Window())
			if err != nil {
				logger.Error("rate limit store failure",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("client", clientKey),
					slog.Any("error", err),
				)
				httperr.Write(w, httperr.Server(""))
				return
			}

			remaining := int64(cfg.MaxRequests) - newCount
			if remaining < 0 {
				remaining = 0
			}

			// Header mutation is additive; headers set by outer stages stay.
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(expiry.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
