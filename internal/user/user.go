// Package user holds the account domain model and its progression rules.
package user

import (
	"time"

	"github.com/google/uuid"
)

// MaxLevel caps progression; XP keeps accumulating past it.
const MaxLevel = 100

// xpPerLevel is how many XP points advance one level.
const xpPerLevel = 100

// User is an account record. Level is derived state: after every mutation
// Level == clamp(XPPoints/100+1, 1, 100) holds.
type User struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name,omitempty"`
	Image       string            `json:"image,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
	LastLogin   time.Time         `json:"last_login"`
	XPPoints    int64             `json:"xp_points"`
	Level       int               `json:"level"`
	GamesPlayed int64             `json:"games_played"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// New creates a fresh account with zero progression.
func New(email, name, image string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Image:     image,
		CreatedAt: now,
		LastLogin: now,
		XPPoints:  0,
		Level:     1,
		Metadata:  map[string]string{},
	}
}

// LevelForXP computes the level for a given XP total: one level per 100 XP,
// clamped to [1, MaxLevel].
func LevelForXP(xp int64) int {
	level := int(xp/xpPerLevel) + 1
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// TouchLogin records a successful login.
func (u *User) TouchLogin() {
	now := time.Now().UTC()
	u.LastLogin = now
	u.UpdatedAt = &now
}

// UpdateProfile changes name and image, leaving empty arguments alone.
func (u *User) UpdateProfile(name, image string) {
	if name != "" {
		u.Name = name
	}
	if image != "" {
		u.Image = image
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now
}

// AddXP grants XP and recomputes the level.
func (u *User) AddXP(points int64) {
	u.XPPoints += points
	if u.XPPoints < 0 {
		u.XPPoints = 0
	}
	u.Level = LevelForXP(u.XPPoints)
	now := time.Now().UTC()
	u.UpdatedAt = &now
}

// IncrementGamesPlayed records one finished game.
func (u *User) IncrementGamesPlayed() {
	u.GamesPlayed++
	now := time.Now().UTC()
	u.UpdatedAt = &now
}

// Clone returns a deep copy, so stores can hand out records without sharing
// mutable state with callers.
func (u *User) Clone() *User {
	copied := *u
	if u.UpdatedAt != nil {
		ts := *u.UpdatedAt
		copied.UpdatedAt = &ts
	}
	if u.Metadata != nil {
		copied.Metadata = make(map[string]string, len(u.Metadata))
		for k, v := range u.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}
