// Package storage defines the persistence contract for user records.
//
// Callers distinguish a missing record (ErrNotFound) from a transient store
// failure (any other error); the API layer maps the former to 404 and the
// latter to a generic server error.
package storage

import (
	"context"
	"errors"

	"github.com/playstudy/playstudy-api/internal/user"
)

// ErrNotFound reports that no record exists for the requested key.
var ErrNotFound = errors.New("not found")

// ListOptions controls pagination. LastKey is the opaque cursor returned by
// a previous page; empty means start from the beginning.
type ListOptions struct {
	Limit   int
	LastKey string
}

// Page is one page of list results. LastKey is empty when the listing is
// exhausted.
type Page struct {
	Items   []*user.User `json:"items"`
	Count   int          `json:"count"`
	LastKey string       `json:"last_key,omitempty"`
}

// UserStore is the capability set the service layer depends on. Both
// backends return defensive copies; callers never share mutable state with
// the store.
type UserStore interface {
	Get(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Put(ctx context.Context, u *user.User) error

	// Update applies mutate to the stored record atomically with respect to
	// other Updates of the same id, and returns the updated record.
	Update(ctx context.Context, id string, mutate func(*user.User) error) (*user.User, error)

	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) (*Page, error)
	Close() error
}
