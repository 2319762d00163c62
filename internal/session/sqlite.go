package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS portal_sessions (
	client_id  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (client_id, key)
)`

// SQLite is a Backend on a sqlite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	s := NewSQLite(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an open database. Call Migrate before use.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// Migrate creates the sessions table.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sessions: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM portal_sessions WHERE client_id = ? AND key = ?`,
		clientID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, clientID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portal_sessions (client_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (client_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		clientID, key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, clientID, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM portal_sessions WHERE client_id = ? AND key = ?`, clientID, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Purge(ctx context.Context, before time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM portal_sessions WHERE updated_at < ?`, before.Unix()); err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
