package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
)

// playSession plays up to drops pieces and returns the engine's session.
func playSession(t *testing.T, seed int64, drops int) core.Session {
	t.Helper()
	e := core.New(core.Config{Seed: core.SeedFromInt64(seed)})
	require.True(t, e.Dispatch(core.Cmd(core.CmdStart)))
	for i := 0; i < drops && e.Phase() == core.PhaseFalling; i++ {
		e.Dispatch(core.SetColumnCmd(i % core.FieldCols))
		e.Dispatch(core.Cmd(core.CmdHardDrop))
		e.Settle()
	}
	return e.Session()
}

func record(id string, s core.Session, at time.Time) puyo.GameRecord {
	return puyo.GameRecord{ID: id, GameID: "puyo", Session: s, PlayedAt: at}
}

func TestHistoryUpsert(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	s := playSession(t, 1, 3)
	require.NoError(t, store.SaveHistory(record("g1", s, now)))

	got, err := store.History("g1")
	require.NoError(t, err)
	assert.Equal(t, s.Ledger.DropCount(), got.DropCount)
	assert.Equal(t, s.Field, got.Field)
	assert.Equal(t, s.Score, got.Score)
	assert.Equal(t, s.NextID, got.NextSnapshotID)
	assert.Len(t, got.Ledger, len(s.Ledger))
	assert.NoError(t, got.Ledger.Verify())

	// A later save of the same game replaces it and keeps the note.
	require.NoError(t, store.UpdateHistoryNote("g1", "nice opener", []string{"gtr"}))
	s = playSession(t, 1, 6)
	require.NoError(t, store.SaveHistory(record("g1", s, now.Add(time.Second))))

	list, err := store.ListHistory()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.Ledger.DropCount(), list[0].DropCount)
	assert.Equal(t, "nice opener", list[0].Note)
	assert.Equal(t, []string{"gtr"}, list[0].Tags)
}

func TestHistorySkipsGamesWithoutDrops(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveHistory(record("g1", playSession(t, 2, 0), time.Now())))
	list, err := store.ListHistory()
	require.NoError(t, err)
	assert.Empty(t, list)

	// Rewinding to the first snapshot removes an existing entry.
	require.NoError(t, store.SaveHistory(record("g2", playSession(t, 2, 2), time.Now())))
	require.NoError(t, store.SaveHistory(record("g2", playSession(t, 2, 0), time.Now())))
	_, err = store.History("g2")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHistoryPrunesOldest(t *testing.T) {
	store := openTestStore(t)
	store.SetHistoryLimit(3)

	s := playSession(t, 3, 1)
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveHistory(record(fmt.Sprintf("g%d", i), s, base.Add(time.Duration(i)*time.Second))))
	}

	list, err := store.ListHistory()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "g4", list[0].ID, "newest first")
	assert.Equal(t, "g2", list[2].ID)
}

func TestFavoritesAreCopies(t *testing.T) {
	store := openTestStore(t)
	s := playSession(t, 4, 4)
	require.NoError(t, store.SaveHistory(record("g1", s, time.Now())))
	require.NoError(t, store.UpdateHistoryNote("g1", "keep", []string{"a", "b"}))

	favID, err := store.AddFavorite("g1")
	require.NoError(t, err)
	assert.NotEqual(t, "g1", favID)

	require.NoError(t, store.DeleteHistory("g1"))

	fav, err := store.Favorite(favID)
	require.NoError(t, err)
	assert.Equal(t, "g1", fav.SourceID)
	assert.Equal(t, s.Field, fav.Field)
	assert.Equal(t, "keep", fav.Note)
	assert.Equal(t, []string{"a", "b"}, fav.Tags)

	require.NoError(t, store.UpdateFavoriteNote(favID, "edited", nil))
	favs, err := store.ListFavorites()
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "edited", favs[0].Note)
	assert.Empty(t, favs[0].Tags)

	require.NoError(t, store.RemoveFavorite(favID))
	assert.True(t, errors.Is(store.RemoveFavorite(favID), ErrNotFound))
}

func TestHistoryNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.History("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.AddFavorite("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.DeleteHistory("missing"), ErrNotFound))
	assert.True(t, errors.Is(store.UpdateHistoryNote("missing", "", nil), ErrNotFound))
}
