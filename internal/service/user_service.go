// Package service implements account operations on top of the storage
// contract.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/user"
)

// UserService coordinates account reads and writes. It owns the
// create-or-update semantics used by login flows; the level invariant itself
// lives on the user model.
type UserService struct {
	store  storage.UserStore
	logger *slog.Logger
}

func NewUserService(store storage.UserStore, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	return s.store.Get(ctx, id)
}

// GetByEmail returns the user for an email, or storage.ErrNotFound.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.store.GetByEmail(ctx, email)
}

// CreateOrUpdate registers a new account for email, or refreshes the profile
// and last-login timestamp of an existing one. Used by both registration and
// the Google login flow.
func (s *UserService) CreateOrUpdate(ctx context.Context, email, name, image string) (*user.User, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	if existing != nil {
		return s.store.Update(ctx, existing.ID, func(u *user.User) error {
			u.UpdateProfile(name, image)
			u.TouchLogin()
			return nil
		})
	}

	u := user.New(email, name, image)
	if err := s.store.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user created", slog.String("user_id", u.ID))
	return u, nil
}

// UpdateProfile changes name and image on an existing account.
func (s *UserService) UpdateProfile(ctx context.Context, id, name, image string) (*user.User, error) {
	return s.store.Update(ctx, id, func(u *user.User) error {
		u.UpdateProfile(name, image)
		return nil
	})
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// AddXP grants XP and recomputes the level.
func (s *UserService) AddXP(ctx context.Context, id string, points int64) (*user.User, error) {
	return s.store.Update(ctx, id, func(u *user.User) error {
		u.AddXP(points)
		return nil
	})
}

// RecordGamePlayed increments the games-played counter.
func (s *UserService) RecordGamePlayed(ctx context.Context, id string) (*user.User, error) {
	return s.store.Update(ctx, id, func(u *user.User) error {
		u.IncrementGamesPlayed()
		return nil
	})
}

func (s *UserService) List(ctx context.Context, limit int, lastKey string) (*storage.Page, error) {
	return s.store.List(ctx, storage.ListOptions{Limit: limit, LastKey: lastKey})
}
