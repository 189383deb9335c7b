// Package ratelimit provides the counter store behind the rate-limiting
// middleware.
//
// The policy is fixed-window-with-reset-on-hit: every accepted request resets
// the window expiry to now+window, rather than anchoring the window to a
// fixed start time or keeping a sliding log. This is a deliberate
// accuracy/cost tradeoff inherited from the service's original behavior: a
// caller that keeps sending at the limit holds itself there indefinitely
// instead of the window rolling off, but each hit costs a single counter
// update. Both backends implement the identical contract so swapping the
// memory store for Redis is transparent to the middleware.
package ratelimit

import (
	"context"
	"time"
)

// Store tracks request counts per key within a rolling window.
type Store interface {
	// Get returns the current count and window expiry for key. An entry whose
	// expiry has passed is treated as absent and reported as count 0.
	Get(ctx context.Context, key string) (count int64, expiry time.Time, err error)

	// Increment adds one request under key, creating the entry if absent, and
	// resets the window expiry to now+window. It returns the new count and
	// the new expiry.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, expiry time.Time, err error)
}
