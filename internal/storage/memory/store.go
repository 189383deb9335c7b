// Package memory provides an in-memory UserStore for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/user"
)

// Store is an in-memory implementation of storage.UserStore.
type Store struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

var _ storage.UserStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{users: make(map[string]*user.User)}
}

func (s *Store) Get(ctx context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) Put(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u.Clone()
	return nil
}

func (s *Store) Update(ctx context.Context, id string, mutate func(*user.User) error) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	updated := u.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	s.users[id] = updated
	return updated.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) List(ctx context.Context, opts storage.ListOptions) (*storage.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		if opts.LastKey != "" && id <= opts.LastKey {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	page := &storage.Page{}
	for _, id := range ids {
		if len(page.Items) == limit {
			// More rows remain; hand back a cursor.
			page.LastKey = page.Items[len(page.Items)-1].ID
			break
		}
		page.Items = append(page.Items, s.users[id].Clone())
	}
	page.Count = len(page.Items)
	return page, nil
}

func (s *Store) Close() error {
	return nil
}
