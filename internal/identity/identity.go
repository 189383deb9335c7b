// Package identity models who a request comes from and derives the key used
// to distinguish callers for rate limiting.
package identity

import (
	"net"
	"net/http"
	"strings"
)

// Identity is the caller resolved for a request. The zero value is anonymous;
// a non-empty UserID means the soft authentication stage verified a token.
type Identity struct {
	UserID string
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// ClientKey derives the rate-limit key for a request. An authenticated
// caller is keyed by user id regardless of forwarding headers; otherwise the
// first X-Forwarded-For entry wins, then the direct peer address. A request
// with no usable peer address resolves to "ip:unknown" rather than failing.
// Pure function of its inputs.
func ClientKey(r *http.Request, id Identity) string {
	if id.Authenticated() {
		return "user:" + id.UserID
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return "ip:" + addr
		}
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr without a port, e.g. from a test request.
			return "ip:" + r.RemoteAddr
		}
		return "ip:" + host
	}

	return "ip:unknown"
}
