package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
)

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	s := playSession(t, 10, 5)

	require.NoError(t, store.SaveSession("alice", record("g1", s, time.Now())))
	got, err := store.LoadSession("alice")
	require.NoError(t, err)
	assert.Equal(t, s, got.Session)
	assert.Equal(t, "g1", got.ID)
	assert.Equal(t, "puyo", got.GameID)

	e, err := core.Resume(core.Config{}, got.Session)
	require.NoError(t, err)
	assert.Equal(t, s.Score, e.State().Score)

	// Saving again replaces the previous session.
	s2 := playSession(t, 11, 2)
	require.NoError(t, store.SaveSession("alice", record("g2", s2, time.Now())))
	got, err = store.LoadSession("alice")
	require.NoError(t, err)
	assert.Equal(t, s2.Seed, got.Session.Seed)
	assert.Equal(t, "g2", got.ID)
}

func TestSessionMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadSession("nobody")
	assert.True(t, errors.Is(err, ErrNoSession))

	require.NoError(t, store.SaveSession("bob", record("g1", playSession(t, 12, 1), time.Now())))
	require.NoError(t, store.ClearSession("bob"))
	_, err = store.LoadSession("bob")
	assert.True(t, errors.Is(err, ErrNoSession))
	assert.NoError(t, store.ClearSession("bob"))
}

func TestSessionIncompatible(t *testing.T) {
	store := openTestStore(t)

	_, err := store.db.Exec(
		"INSERT INTO sessions (key, version, data, updated_at) VALUES (?, ?, ?, 0)",
		"old", core.SessionVersion+1, "{}",
	)
	require.NoError(t, err)
	_, err = store.LoadSession("old")
	assert.True(t, errors.Is(err, core.ErrIncompatibleSession))

	_, err = store.db.Exec(
		"INSERT INTO sessions (key, version, data, updated_at) VALUES (?, ?, ?, 0)",
		"broken", core.SessionVersion, `{"field": 12`,
	)
	require.NoError(t, err)
	_, err = store.LoadSession("broken")
	assert.True(t, errors.Is(err, core.ErrIncompatibleSession))
}
