package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/user"
)

var dbSeq int

// newTestStore opens a fresh in-memory SQLite database with shared cache so
// multiple connections in one test see the same data.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbSeq++
	store, err := New(fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", dbSeq))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := user.New("ada@example.com", "Ada", "avatar.png")
	u.Metadata["source"] = "google"

	if err := store.Put(ctx, u); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("Email = %v, want %v", got.Email, u.Email)
	}
	if got.Name != "Ada" || got.Image != "avatar.png" {
		t.Errorf("profile = %q/%q, want Ada/avatar.png", got.Name, got.Image)
	}
	if got.Metadata["source"] != "google" {
		t.Errorf("Metadata = %v, want source=google", got.Metadata)
	}
	if got.Level != 1 || got.XPPoints != 0 {
		t.Errorf("progression = %d/%d, want level 1, xp 0", got.Level, got.XPPoints)
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_PutUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := user.New("ada@example.com", "Ada", "")
	if err := store.Put(ctx, u); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	u.Name = "Ada L."
	u.UpdatedAt = &now
	if err := store.Put(ctx, u); err != nil {
		t.Fatalf("Put() upsert error = %v", err)
	}

	got, err := store.Get(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Ada L." {
		t.Errorf("Name = %v, want Ada L.", got.Name)
	}
	if got.UpdatedAt == nil {
		t.Error("UpdatedAt not persisted")
	}
}

func TestSQLiteStore_GetByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := user.New("ada@example.com", "Ada", "")
	if err := store.Put(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %v, want %v", got.ID, u.ID)
	}

	if _, err := store.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := user.New("ada@example.com", "Ada", "")
	if err := store.Put(ctx, u); err != nil {
		t.Fatal(err)
	}

	updated, err := store.Update(ctx, u.ID, func(u *user.User) error {
		u.AddXP(250)
		u.IncrementGamesPlayed()
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.XPPoints != 250 || updated.Level != 3 || updated.GamesPlayed != 1 {
		t.Errorf("updated = xp %d level %d games %d, want 250/3/1",
			updated.XPPoints, updated.Level, updated.GamesPlayed)
	}

	stored, err := store.Get(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.XPPoints != 250 || stored.Level != 3 {
		t.Errorf("stored = xp %d level %d, want 250/3", stored.XPPoints, stored.Level)
	}
}

func TestSQLiteStore_UpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(context.Background(), "nope", func(*user.User) error { return nil })
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := user.New("ada@example.com", "Ada", "")
	if err := store.Put(ctx, u); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, u.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, u.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		u := user.New(fmt.Sprintf("u%d@example.com", i), "", "")
		if err := store.Put(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[string]bool)
	lastKey := ""
	pages := 0
	for {
		page, err := store.List(ctx, storage.ListOptions{Limit: 2, LastKey: lastKey})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		pages++
		for _, u := range page.Items {
			if seen[u.ID] {
				t.Fatalf("duplicate user %s across pages", u.ID)
			}
			seen[u.ID] = true
		}
		if page.LastKey == "" {
			break
		}
		lastKey = page.LastKey
	}

	if len(seen) != 5 {
		t.Errorf("paged through %d users, want 5", len(seen))
	}
	if pages != 3 {
		t.Errorf("took %d pages, want 3", pages)
	}
}
