// Package store provides SQLite persistence for web login sessions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when a session ID has no stored row.
var ErrNotFound = errors.New("session not found")

// Store persists OAuth tokens keyed by session ID.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to create schema")
		}
	}

	return &Store{db: db}, nil
}

// SaveSession stores the token under id, replacing any existing row and
// bumping its freshness.
func (s *Store) SaveSession(ctx context.Context, id string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return errors.Wrap(err, "failed to marshal token")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, token, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token=excluded.token, updated_at=excluded.updated_at`,
		id, string(b), time.Now().UTC())
	return errors.Wrap(err, "failed to save session")
}

// GetSession loads the token stored under id.
func (s *Store) GetSession(ctx context.Context, id string) (*oauth2.Token, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM sessions WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal token")
	}
	return &tok, nil
}

// DeleteSession removes the session row if present.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	return errors.Wrap(err, "failed to delete session")
}

// DeleteIdle removes sessions not touched within ttl and reports how
// many rows were dropped.
func (s *Store) DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`,
		time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete idle sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted sessions")
	}
	return n, nil
}

// Ping verifies the database connection is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "database not reachable")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
