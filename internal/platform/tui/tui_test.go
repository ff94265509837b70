package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	puyocore "github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
	"github.com/vovakirdan/tui-puyo/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func playedSession(t *testing.T, drops int) puyocore.Session {
	t.Helper()
	e := puyocore.New(puyocore.Config{Seed: puyocore.SeedFromInt64(7)})
	require.True(t, e.Dispatch(puyocore.Cmd(puyocore.CmdStart)))
	for i := 0; i < drops && e.Phase() == puyocore.PhaseFalling; i++ {
		e.Dispatch(puyocore.SetColumnCmd(i % puyocore.FieldCols))
		e.Dispatch(puyocore.Cmd(puyocore.CmdHardDrop))
		e.Settle()
	}
	return e.Session()
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "puyo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// scriptedGame reports whatever state the test sets.
type scriptedGame struct {
	record string
	state  core.GameState
}

func (g *scriptedGame) ID() string { return "puyo" }
func (g *scriptedGame) Title() string { return "Puyo" }
func (g *scriptedGame) Reset(core.RuntimeConfig) {}
func (g *scriptedGame) Step(core.InputFrame) core.StepResult { return core.StepResult{State: g.state} }
func (g *scriptedGame) Render(*core.Screen) {}
func (g *scriptedGame) State() core.GameState { return g.state }
func (g *scriptedGame) RecordID() string { return g.record }

func TestParseNote(t *testing.T) {
	tests := []struct {
		in   string
		note string
		tags []string
	}{
		{"", "", nil},
		{"nice opener", "nice opener", nil},
		{"nice #gtr opener #gtr #fast", "nice opener", []string{"gtr", "fast"}},
		{"# lone hash", "# lone hash", nil},
	}
	for _, tt := range tests {
		note, tags := ParseNote(tt.in)
		assert.Equal(t, tt.note, note, tt.in)
		assert.Equal(t, tt.tags, tags, tt.in)

		again, againTags := ParseNote(formatNote(note, tags))
		assert.Equal(t, note, again, tt.in)
		assert.Equal(t, tags, againTags, tt.in)
	}
}

func TestMapKeyToFrame(t *testing.T) {
	keys := DefaultGameKeyMap()

	frame := core.NewInputFrame()
	assert.False(t, keys.MapKeyToFrame(runes("3"), &frame))
	assert.True(t, frame.HasColumn)
	assert.Equal(t, 2, frame.Column)

	frame = core.NewInputFrame()
	assert.False(t, keys.MapKeyToFrame(tea.KeyMsg{Type: tea.KeySpace}, &frame))
	assert.True(t, frame.Has(core.ActionHardDrop))

	assert.True(t, keys.MapKeyToFrame(runes("q"), &frame))
}

func TestReplayModelNavigation(t *testing.T) {
	sess := playedSession(t, 4)
	m := NewReplayModel("test", sess.Ledger, 80, 24)
	require.Equal(t, len(sess.Ledger), m.replay.Len())

	update := func(msg tea.Msg) tea.Cmd {
		next, cmd := m.Update(msg)
		m = next.(ReplayModel)
		return cmd
	}

	update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.True(t, m.replay.AtEnd())
	update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, m.replay.Len()-2, m.replay.Index())
	update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.replay.Index())

	update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, puyocore.ReplayShowingDrop, m.replay.Phase())

	// Play, then a tick from an older loop is ignored
	require.NotNil(t, update(tea.KeyMsg{Type: tea.KeySpace}))
	assert.True(t, m.playing)
	phase := m.replay.Phase()
	update(TickMsg{Time: time.Now(), Gen: m.gen - 1})
	assert.Equal(t, phase, m.replay.Phase())
	update(TickMsg{Time: time.Now(), Gen: m.gen})
	assert.NotEqual(t, phase, m.replay.Phase())

	// Manual navigation stops playback
	update(runes("n"))
	assert.False(t, m.playing)

	assert.Contains(t, m.View(), "Score")
	update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.IsGoingBack())
}

func TestHistoryModelActions(t *testing.T) {
	store := openStore(t)
	rec := puyo.GameRecord{ID: "g1", GameID: "puyo", Session: playedSession(t, 3), PlayedAt: time.Now()}
	require.NoError(t, store.SaveHistory(rec))

	m := NewHistoryModel(store, false, 100, 30, nil)
	require.Len(t, m.records, 1)

	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(HistoryModel)
	}

	// Note editing
	update(runes("n"))
	require.True(t, m.editing)
	update(runes("good one #keep"))
	update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)
	entry, err := store.History("g1")
	require.NoError(t, err)
	assert.Equal(t, "good one", entry.Note)
	assert.Equal(t, []string{"keep"}, entry.Tags)

	// Favorite, then switch lists
	update(runes("f"))
	favs, err := store.ListFavorites()
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "good one", favs[0].Note)

	update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.favorites)
	require.Len(t, m.records, 1)

	update(tea.KeyMsg{Type: tea.KeyEnter})
	req := m.ReplayRequested()
	require.NotNil(t, req)
	assert.Equal(t, rec.Session.Ledger.DropCount(), req.Entry.Ledger.DropCount())
	m.ClearReplay()

	// Removing the favorite leaves history alone
	update(runes("d"))
	assert.Empty(t, m.records)
	_, err = store.History("g1")
	assert.NoError(t, err)
}

func TestSessionModelFlow(t *testing.T) {
	store := openStore(t)
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60}
	m := NewSessionModel(store, cfg, "alice", nil)

	update := func(msg tea.Msg) tea.Cmd {
		next, cmd := m.Update(msg)
		m = next.(SessionModel)
		return cmd
	}

	// The first entry is a game
	require.NotNil(t, update(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, screenGame, m.current)
	assert.Equal(t, "alice:"+m.game.game.ID(), m.game.sessionKey)

	// Back only works when paused or over
	update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenGame, m.current)
	m.game.gameState.Paused = true
	update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenMenu, m.current)

	// Scores and back
	for m.menu.items[m.menu.cursor].Kind != MenuScores {
		update(tea.KeyMsg{Type: tea.KeyDown})
	}
	update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, screenScores, m.current)
	update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenMenu, m.current)

	update(runes("q"))
	assert.True(t, m.quitting)
}

func TestGameModelSavesScoreOncePerRecord(t *testing.T) {
	store := openStore(t)
	g := &scriptedGame{record: "first"}
	m := NewGameModel(g, store, core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60}, "", nil)

	tick := func(state core.GameState) {
		g.state = state
		next, _ := m.Update(TickMsg{Gen: m.gen})
		m = next.(GameModel)
	}
	scores := func() []storage.ScoreEntry {
		entries, err := store.TopScores("puyo", 10)
		require.NoError(t, err)
		return entries
	}

	tick(core.GameState{Score: 1060, MaxChain: 2, GameOver: true})
	tick(core.GameState{Score: 1060, MaxChain: 2, GameOver: true})
	require.Len(t, scores(), 1)

	// Undo out of game over and lose again with the same record
	tick(core.GameState{Score: 900, MaxChain: 1})
	tick(core.GameState{Score: 1020, MaxChain: 2, GameOver: true})
	assert.Len(t, scores(), 1)

	// A restart starts a new record
	g.record = "second"
	tick(core.GameState{})
	tick(core.GameState{Score: 300, MaxChain: 1, GameOver: true})
	entries := scores()
	require.Len(t, entries, 2)
	assert.Equal(t, 1060, entries[0].Score)
	assert.Equal(t, 300, entries[1].Score)
}

func TestGameModelRestartDropsSuspendedSession(t *testing.T) {
	store := openStore(t)
	key := SessionKey("alice", "puyo")
	g := puyo.New(0)
	PrepareGame(g, store, key, false, nil)
	m := NewGameModel(g, store, core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60, Seed: 5}, key, nil)
	m.Init()

	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(GameModel)
	}

	update(tea.KeyMsg{Type: tea.KeyEnter})
	update(TickMsg{Gen: m.gen})
	_, err := store.LoadSession(key)
	require.NoError(t, err)

	update(runes("r"))
	update(TickMsg{Gen: m.gen})
	_, err = store.LoadSession(key)
	assert.ErrorIs(t, err, storage.ErrNoSession)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "bob:puyo_3", SessionKey("bob", "puyo_3"))
}
