// Package session manages web login sessions backed by the persistent store.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/minutemix/minutemix/internal/infra/store"
)

// Manager creates, loads and expires login sessions. Session IDs are
// opaque UUIDs handed to browsers as cookies; tokens never leave the
// server.
type Manager struct {
	store *store.Store
}

// New creates a session manager over the given store.
func New(st *store.Store) *Manager {
	return &Manager{store: st}
}

// Create stores tok under a fresh session ID and returns the ID.
func (m *Manager) Create(ctx context.Context, tok *oauth2.Token) (string, error) {
	id := uuid.NewString()
	if err := m.store.SaveSession(ctx, id, tok); err != nil {
		return "", err
	}
	zlog.Debug().Str("session_id", id).Msg("Session created")
	return id, nil
}

// Get returns the token stored for id. store.ErrNotFound when absent.
func (m *Manager) Get(ctx context.Context, id string) (*oauth2.Token, error) {
	return m.store.GetSession(ctx, id)
}

// Refresh persists a rotated token for an existing session.
func (m *Manager) Refresh(ctx context.Context, id string, tok *oauth2.Token) error {
	return m.store.SaveSession(ctx, id, tok)
}

// Delete drops the session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteSession(ctx, id)
}

// PurgeLoop deletes idle sessions every interval until ctx is done.
func (m *Manager) PurgeLoop(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := m.store.DeleteIdle(ctx, ttl)
			if err != nil {
				zlog.Warn().Err(err).Msg("Failed to purge idle sessions")
				continue
			}
			if n > 0 {
				zlog.Info().Int64("count", n).Msg("Purged idle sessions")
			}
		}
	}
}
