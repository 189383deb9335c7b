package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/storage/memory"
)

func newTestService() *UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(memory.New(), logger)
}

func TestCreateOrUpdate_CreatesNewUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.CreateOrUpdate(ctx, "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("CreateOrUpdate() error = %v", err)
	}
	if u.ID == "" {
		t.Error("created user has empty id")
	}
	if u.Level != 1 || u.XPPoints != 0 {
		t.Errorf("new user progression = level %d xp %d, want 1/0", u.Level, u.XPPoints)
	}
}

func TestCreateOrUpdate_UpdatesExistingByEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.CreateOrUpdate(ctx, "ada@example.com", "Ada L.", "new.png")
	if err != nil {
		t.Fatalf("CreateOrUpdate() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second login created a new user: %s != %s", second.ID, first.ID)
	}
	if second.Name != "Ada L." || second.Image != "new.png" {
		t.Errorf("profile = %q/%q, want updated values", second.Name, second.Image)
	}
	if second.UpdatedAt == nil {
		t.Error("UpdatedAt not set on repeat login")
	}
	if !second.LastLogin.After(first.CreatedAt) && !second.LastLogin.Equal(first.CreatedAt) {
		t.Errorf("LastLogin = %v, want >= %v", second.LastLogin, first.CreatedAt)
	}
}

func TestAddXP_UpdatesLevel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.CreateOrUpdate(ctx, "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.AddXP(ctx, u.ID, 250)
	if err != nil {
		t.Fatalf("AddXP() error = %v", err)
	}
	if got.XPPoints != 250 || got.Level != 3 {
		t.Errorf("AddXP() = xp %d level %d, want 250/3", got.XPPoints, got.Level)
	}

	// Grants accumulate.
	got, err = svc.AddXP(ctx, u.ID, 50)
	if err != nil {
		t.Fatal(err)
	}
	if got.XPPoints != 300 || got.Level != 4 {
		t.Errorf("AddXP() = xp %d level %d, want 300/4", got.XPPoints, got.Level)
	}
}

func TestAddXP_UnknownUser(t *testing.T) {
	svc := newTestService()

	if _, err := svc.AddXP(context.Background(), "ghost", 10); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("AddXP() error = %v, want ErrNotFound", err)
	}
}

func TestRecordGamePlayed(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.CreateOrUpdate(ctx, "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.RecordGamePlayed(ctx, u.ID)
	if err != nil {
		t.Fatalf("RecordGamePlayed() error = %v", err)
	}
	if got.GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, want 1", got.GamesPlayed)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.CreateOrUpdate(ctx, "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, u.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := svc.CreateOrUpdate(ctx, email, "", ""); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.List(ctx, 10, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Count != 3 {
		t.Errorf("List() count = %d, want 3", page.Count)
	}
}
