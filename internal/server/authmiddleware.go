package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/playstudy/playstudy-api/internal/identity"
	"github.com/playstudy/playstudy-api/internal/token"
)

// identityKey is the context key for the resolved caller identity.
type identityKey struct{}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentity retrieves the caller identity from context. Returns the
// anonymous identity if none was resolved.
func GetIdentity(ctx context.Context) identity.Identity {
	if id, ok := ctx.Value(identityKey{}).(identity.Identity); ok {
		return id
	}
	return identity.Anonymous
}

// AuthMiddleware is the soft authentication stage: it best-effort resolves
// the caller from a bearer token and records the identity in the request
// context. It never rejects. A missing, malformed, or expired token simply
// leaves the request anonymous; route handlers that require a caller perform
// their own hard check.
func AuthMiddleware(codec *token.Codec, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Verify(tokenString)
			if err != nil {
				// Proceed as anonymous; the hard per-route check decides
				// whether that is acceptable.
				logger.Warn("token validation failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity.Identity{UserID: claims.UserID()})
			AddLogField(ctx, "user_id", claims.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	scheme, tok, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", false
	}
	return tok, true
}
