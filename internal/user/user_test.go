package user

import "testing"

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{9899, 99},
		{9900, 100},
		{10000, 100},
		{1000000, 100},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	u := New("a@example.com", "Ada", "")

	if u.ID == "" {
		t.Error("New() id is empty")
	}
	if u.Level != 1 {
		t.Errorf("New() level = %d, want 1", u.Level)
	}
	if u.XPPoints != 0 {
		t.Errorf("New() xp = %d, want 0", u.XPPoints)
	}
	if u.UpdatedAt != nil {
		t.Error("New() updated_at should be unset")
	}
}

func TestAddXP(t *testing.T) {
	u := New("a@example.com", "Ada", "")

	u.AddXP(250)
	if u.XPPoints != 250 {
		t.Errorf("xp = %d, want 250", u.XPPoints)
	}
	if u.Level != 3 {
		t.Errorf("level = %d, want 3", u.Level)
	}
	if u.UpdatedAt == nil {
		t.Error("updated_at not set after AddXP")
	}

	// Level stays clamped no matter how much XP accumulates.
	u.AddXP(1_000_000)
	if u.Level != MaxLevel {
		t.Errorf("level = %d, want %d", u.Level, MaxLevel)
	}

	// XP never goes negative.
	u.AddXP(-10_000_000)
	if u.XPPoints != 0 {
		t.Errorf("xp = %d, want 0 after large deduction", u.XPPoints)
	}
	if u.Level != 1 {
		t.Errorf("level = %d, want 1", u.Level)
	}
}

func TestIncrementGamesPlayed(t *testing.T) {
	u := New("a@example.com", "", "")

	u.IncrementGamesPlayed()
	u.IncrementGamesPlayed()
	if u.GamesPlayed != 2 {
		t.Errorf("games_played = %d, want 2", u.GamesPlayed)
	}
}

func TestUpdateProfile(t *testing.T) {
	u := New("a@example.com", "Ada", "old.png")

	u.UpdateProfile("", "new.png")
	if u.Name != "Ada" {
		t.Errorf("name = %q, want unchanged", u.Name)
	}
	if u.Image != "new.png" {
		t.Errorf("image = %q, want new.png", u.Image)
	}
}

func TestClone(t *testing.T) {
	u := New("a@example.com", "Ada", "")
	u.Metadata["k"] = "v"

	c := u.Clone()
	c.Metadata["k"] = "changed"
	c.Name = "Other"

	if u.Metadata["k"] != "v" {
		t.Error("Clone() shares metadata map")
	}
	if u.Name != "Ada" {
		t.Error("Clone() shares struct state")
	}
}
