package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	e := New(Config{Seed: SeedFromInt64(seed)})
	require.True(t, e.Dispatch(Cmd(CmdStart)))
	return e
}

// playDrop places one piece using column and rotation derived from i, then settles.
func playDrop(e *Engine, i int) {
	e.Dispatch(SetRotationCmd(Rotation(i % 4)))
	e.Dispatch(SetColumnCmd((i * 5) % FieldCols))
	e.Dispatch(Cmd(CmdHardDrop))
	e.Settle()
}

func TestEngineStart(t *testing.T) {
	e := New(Config{Seed: SeedFromInt64(1)})
	assert.Equal(t, PhaseReady, e.Phase())
	assert.False(t, e.Dispatch(Cmd(CmdMoveLeft)), "moves are rejected before start")
	assert.False(t, e.Tick())

	queue := e.State().Queue
	require.Len(t, queue, QueueLength)

	require.True(t, e.Dispatch(Cmd(CmdStart)))
	assert.False(t, e.Dispatch(Cmd(CmdStart)), "start only works once")

	s := e.State()
	assert.Equal(t, PhaseFalling, s.Phase)
	require.NotNil(t, s.Piece)
	assert.Equal(t, NewPiece(queue[0]), *s.Piece)
	assert.Equal(t, queue[1:], s.Queue[:2])
	assert.Len(t, s.Queue, QueueLength)
	assert.Len(t, s.Colors, DefaultColors)

	require.Len(t, s.Ledger, 1)
	first := s.Ledger[0]
	assert.Equal(t, 0, first.ID)
	assert.True(t, first.Field.IsCleared())
	assert.Equal(t, queue, first.Queue)
	assert.Empty(t, first.Dropped)
}

func TestEngineColorsRespected(t *testing.T) {
	for _, n := range []int{3, 4, 5} {
		e := New(Config{Seed: SeedFromInt64(int64(n)), Colors: n})
		e.Dispatch(Cmd(CmdStart))
		colors := e.State().Colors
		require.Len(t, colors, n)
		for i := 0; i < 30 && e.Phase() == PhaseFalling; i++ {
			for _, pair := range e.State().Queue {
				assert.Contains(t, colors, pair[0])
				assert.Contains(t, colors, pair[1])
			}
			playDrop(e, i)
		}
	}
}

func TestEngineDeterminism(t *testing.T) {
	a := newStartedEngine(t, 99)
	b := newStartedEngine(t, 99)

	script := []CommandKind{CmdMoveLeft, CmdRotateCW, CmdMoveRight, CmdMoveRight, CmdRotateCCW, CmdSoftDrop}
	for i := 0; i < 60 && a.Phase() != PhaseGameOver; i++ {
		for j := 0; j <= i%len(script); j++ {
			cmd := Cmd(script[(i+j)%len(script)])
			require.Equal(t, a.Dispatch(cmd), b.Dispatch(cmd))
		}
		a.Tick()
		b.Tick()
		a.Dispatch(Cmd(CmdHardDrop))
		b.Dispatch(Cmd(CmdHardDrop))
		a.Settle()
		b.Settle()

		if diff := cmp.Diff(a.State(), b.State()); diff != "" {
			t.Fatalf("drop %d diverged (-a +b):\n%s", i, diff)
		}
	}
}

func TestEngineHardDropLocks(t *testing.T) {
	e := newStartedEngine(t, 5)
	piece := *e.State().Piece

	require.True(t, e.Dispatch(Cmd(CmdHardDrop)))
	assert.Equal(t, PhaseDropping, e.Phase())
	assert.Nil(t, e.State().Piece)
	assert.False(t, e.Dispatch(Cmd(CmdMoveLeft)))

	f := e.State().Field
	assert.Equal(t, piece.PivotColor, f.Get(P(2, 12)))
	assert.Equal(t, piece.SatelliteColor, f.Get(P(2, 11)))

	e.Settle()
	assert.Equal(t, PhaseFalling, e.Phase())
	ledger := e.Ledger()
	require.Len(t, ledger, 2)
	assert.Equal(t, []Pos{P(2, 12), P(2, 11)}, ledger[1].Dropped)
}

func TestEngineTickFallsAndLocks(t *testing.T) {
	e := newStartedEngine(t, 8)
	for i := 0; i < VisibleRows; i++ {
		require.True(t, e.Tick())
		require.Equal(t, PhaseFalling, e.Phase())
	}
	assert.Equal(t, P(2, 12), e.State().Piece.Pivot)

	require.True(t, e.Tick())
	assert.Equal(t, PhaseDropping, e.Phase())
}

// setup replaces the field and falling piece of a started engine.
func setup(e *Engine, f Field, p Piece) {
	e.field = f
	e.piece = &p
}

func TestEngineTwoChainAllClear(t *testing.T) {
	e := newStartedEngine(t, 11)
	setup(e, MustParseField(
		"R.....",
		"B.....",
		"BRRR..",
	), Piece{Pivot: P(1, 1), PivotColor: ColorBlue, SatelliteColor: ColorBlue, Rotation: RotationUp})

	require.True(t, e.Dispatch(Cmd(CmdHardDrop)))
	require.True(t, e.Tick())
	assert.Equal(t, PhaseChaining, e.Phase())

	require.True(t, e.Tick())
	require.Equal(t, PhaseErasing, e.Phase())
	first := e.Erasure()
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Chain)
	assert.Equal(t, 40, first.Score)
	assert.False(t, first.AllClear)
	assert.ElementsMatch(t, []Pos{P(0, 11), P(0, 12), P(1, 11), P(1, 10)}, Flatten(first.Groups))

	// Erasing waits for the acknowledgement.
	assert.False(t, e.Tick())
	assert.Equal(t, PhaseErasing, e.Phase())

	require.True(t, e.AcknowledgeErasure())
	assert.Equal(t, PhaseChaining, e.Phase())
	require.True(t, e.Tick())
	second := e.Erasure()
	require.NotNil(t, second)
	assert.Equal(t, 2, second.Chain)
	assert.Equal(t, 320, second.Score)
	assert.True(t, second.AllClear)
	assert.Equal(t, AllClearBonus, second.ClearBonus)

	require.True(t, e.AcknowledgeErasure())
	s := e.State()
	assert.Equal(t, PhaseFalling, s.Phase)
	assert.Equal(t, 40+320+2100, s.Score)
	assert.Equal(t, 2, s.ChainCount)
	assert.Equal(t, 2, s.MaxChain)
	assert.True(t, s.Field.IsCleared())
	assert.False(t, e.AcknowledgeErasure())
}

func TestEngineAllClearIsAdditive(t *testing.T) {
	e := newStartedEngine(t, 12)
	setup(e, MustParseField("RR...."),
		Piece{Pivot: P(2, 1), PivotColor: ColorRed, SatelliteColor: ColorRed, Rotation: RotationRight})

	e.Dispatch(Cmd(CmdHardDrop))
	passes := e.Settle()
	require.Len(t, passes, 1)
	assert.Equal(t, 40, passes[0].Score)
	assert.Equal(t, 40+AllClearBonus, passes[0].Total())
	assert.Equal(t, 40+AllClearBonus, e.State().Score)
}

func TestEngineGameOver(t *testing.T) {
	e := newStartedEngine(t, 13)
	rows := make([]string, 0, VisibleRows-1)
	for i := 0; i < VisibleRows-1; i++ {
		if i%2 == 0 {
			rows = append(rows, "..R...")
		} else {
			rows = append(rows, "..B...")
		}
	}
	setup(e, MustParseField(rows...), Piece{Pivot: P(2, 0), PivotColor: ColorYellow, SatelliteColor: ColorYellow, Rotation: RotationUp})

	e.Dispatch(Cmd(CmdHardDrop))
	e.Settle()
	assert.Equal(t, PhaseGameOver, e.Phase())
	assert.Nil(t, e.State().Piece)

	for _, k := range []CommandKind{CmdMoveLeft, CmdRotateCW, CmdHardDrop, CmdStart} {
		assert.False(t, e.Dispatch(Cmd(k)), "%v after game over", k)
	}
	assert.False(t, e.Tick())
	assert.Len(t, e.Ledger(), 2)
}

func TestEngineRejectedCommandsKeepState(t *testing.T) {
	e := newStartedEngine(t, 21)
	for i := 0; i < FieldCols; i++ {
		e.Dispatch(Cmd(CmdMoveLeft))
	}
	before := e.State()
	assert.False(t, e.Dispatch(Cmd(CmdMoveLeft)))
	assert.False(t, e.Dispatch(SetColumnCmd(-3)))
	assert.False(t, e.Dispatch(Command{Kind: CommandKind(99)}))
	assert.Equal(t, before, e.State())
}

func TestEngineRestoreReproducesPlay(t *testing.T) {
	e := newStartedEngine(t, 31)
	states := []State{e.State()}
	for i := 0; i < 6; i++ {
		playDrop(e, i)
		require.Equal(t, PhaseFalling, e.Phase())
		states = append(states, e.State())
	}

	epoch := e.Epoch()
	ledger := e.Ledger()
	require.True(t, e.RestoreToSnapshot(ledger[2].ID))
	assert.Greater(t, e.Epoch(), epoch)
	if diff := cmp.Diff(states[2], e.State()); diff != "" {
		t.Fatalf("restored state differs (-want +got):\n%s", diff)
	}

	// Continuing with the same inputs replays the original timeline.
	for i := 2; i < 6; i++ {
		playDrop(e, i)
		if diff := cmp.Diff(states[i+1], e.State(), cmp.FilterPath(func(p cmp.Path) bool {
			return p.Last().String() == ".ID"
		}, cmp.Ignore())); diff != "" {
			t.Fatalf("drop %d after restore differs (-want +got):\n%s", i, diff)
		}
	}

	// Ids stay unique after a rewind.
	ids := map[int]bool{}
	for _, s := range e.Ledger() {
		require.False(t, ids[s.ID], "duplicate id %d", s.ID)
		ids[s.ID] = true
	}
}

func TestEngineRestoreUnknownID(t *testing.T) {
	e := newStartedEngine(t, 32)
	playDrop(e, 0)
	before := e.State()
	epoch := e.Epoch()

	assert.False(t, e.RestoreToSnapshot(1000))
	assert.Equal(t, before, e.State())
	assert.Equal(t, epoch, e.Epoch())
}

func TestEngineUndo(t *testing.T) {
	e := newStartedEngine(t, 33)
	assert.False(t, e.Undo(), "nothing to undo before the first drop")

	playDrop(e, 0)
	afterFirst := e.State()
	playDrop(e, 1)

	require.True(t, e.Undo())
	if diff := cmp.Diff(afterFirst, e.State()); diff != "" {
		t.Errorf("undo mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineRestart(t *testing.T) {
	seeds := []Seed{SeedFromInt64(1), SeedFromInt64(2)}
	calls := 0
	e := New(Config{SeedSource: func() Seed {
		s := seeds[calls%len(seeds)]
		calls++
		return s
	}})
	assert.Equal(t, seeds[0], e.Seed())
	e.Dispatch(Cmd(CmdStart))
	playDrop(e, 0)

	epoch := e.Epoch()
	require.True(t, e.Dispatch(Cmd(CmdRestart)))
	assert.Equal(t, epoch+1, e.Epoch())
	assert.Equal(t, PhaseReady, e.Phase())
	assert.Empty(t, e.Ledger())
	assert.Equal(t, seeds[1], e.Seed())

	fresh := New(Config{Seed: seeds[1]})
	assert.Equal(t, fresh.State(), e.State())
}
