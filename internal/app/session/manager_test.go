package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/minutemix/minutemix/internal/infra/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st)
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	tok, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
}

func TestManager_CreateAssignsUniqueIDs(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, &oauth2.Token{AccessToken: "a"})
	require.NoError(t, err)
	second, err := m.Create(ctx, &oauth2.Token{AccessToken: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestManager_Refresh(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, &oauth2.Token{AccessToken: "old"})
	require.NoError(t, err)

	require.NoError(t, m.Refresh(ctx, id, &oauth2.Token{AccessToken: "rotated"}))

	tok, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok.AccessToken)
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.Create(ctx, &oauth2.Token{AccessToken: "a"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, id))

	_, err = m.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManager_PurgeLoopStopsOnCancel(t *testing.T) {
	m := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.PurgeLoop(ctx, 10*time.Millisecond, time.Hour)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop after cancel")
	}
}
