// Package sqlite provides a SQLite-backed UserStore.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/user"
)

// Store is a SQLite implementation of storage.UserStore.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			image TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP,
			last_login TIMESTAMP NOT NULL,
			xp_points INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			games_played INTEGER NOT NULL DEFAULT 0,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const userColumns = `id, email, name, image, created_at, updated_at, last_login, xp_points, level, games_played, metadata`

func (s *Store) Get(ctx context.Context, id string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) Put(ctx context.Context, u *user.User) error {
	metadata, err := json.Marshal(u.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			image = excluded.image,
			updated_at = excluded.updated_at,
			last_login = excluded.last_login,
			xp_points = excluded.xp_points,
			level = excluded.level,
			games_played = excluded.games_played,
			metadata = excluded.metadata`,
		u.ID, u.Email, nullString(u.Name), nullString(u.Image),
		u.CreatedAt, nullTime(u.UpdatedAt), u.LastLogin,
		u.XPPoints, u.Level, u.GamesPlayed, string(metadata))
	if err != nil {
		return fmt.Errorf("failed to put user %s: %w", u.ID, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, mutate func(*user.User) error) (*user.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if err := mutate(u); err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(u.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			email = ?, name = ?, image = ?, updated_at = ?, last_login = ?,
			xp_points = ?, level = ?, games_played = ?, metadata = ?
		WHERE id = ?`,
		u.Email, nullString(u.Name), nullString(u.Image),
		nullTime(u.UpdatedAt), u.LastLogin,
		u.XPPoints, u.Level, u.GamesPlayed, string(metadata), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return u, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, opts storage.ListOptions) (*storage.Page, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	// Fetch one extra row to decide whether a next page exists.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id > ?
		ORDER BY id
		LIMIT ?`, opts.LastKey, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	page := &storage.Page{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		page.LastKey = page.Items[limit-1].ID
	}
	page.Count = len(page.Items)
	return page, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*user.User, error) {
	var (
		u         user.User
		name      sql.NullString
		image     sql.NullString
		updatedAt sql.NullTime
		metadata  sql.NullString
	)

	err := row.Scan(&u.ID, &u.Email, &name, &image, &u.CreatedAt, &updatedAt,
		&u.LastLogin, &u.XPPoints, &u.Level, &u.GamesPlayed, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Name = name.String
	u.Image = image.String
	if updatedAt.Valid {
		ts := updatedAt.Time
		u.UpdatedAt = &ts
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &u.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
