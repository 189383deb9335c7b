package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/playstudy/playstudy-api/internal/httperr"
)

// RecoverMiddleware is the single outermost converter of panics into the
// uniform error envelope. It logs the panic value and stack trace together
// with the request id, then answers with a generic 500; the panic never
// reaches the HTTP server's own handler.
func RecoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					// The client is gone; nothing useful to write.
					panic(p)
				}

				logger.Error("unhandled panic",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("error", p),
					slog.String("stack", string(debug.Stack())),
				)
				httperr.Write(w, httperr.Server(""))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
