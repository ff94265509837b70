package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedEngine plays up to n drops and returns the engine with its observed settled fields.
func playedEngine(t *testing.T, seed int64, n int) (*Engine, []Field) {
	t.Helper()
	e := newStartedEngine(t, seed)
	fields := []Field{e.State().Field}
	for i := 0; i < n && e.Phase() == PhaseFalling; i++ {
		playDrop(e, i)
		fields = append(fields, e.State().Field)
	}
	return e, fields
}

func TestReplayFidelity(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4} {
		e, observed := playedEngine(t, seed, 40)
		ledger := e.Ledger()
		require.Len(t, ledger, len(observed))
		require.NoError(t, ledger.Verify())

		r := NewReplay(ledger)
		derived, err := r.Fields()
		require.NoError(t, err)
		assert.Equal(t, observed, derived, "seed %d", seed)
	}
}

func TestReplayStepping(t *testing.T) {
	e, observed := playedEngine(t, 6, 40)
	ledger := e.Ledger()

	r := NewReplay(ledger)
	assert.Equal(t, ReplayIdle, r.Phase())
	assert.Equal(t, observed[0], r.Field())

	steps := 0
	for r.Step() {
		steps++
		require.Less(t, steps, 10000)
		if r.Phase() == ReplayIdle {
			require.Equal(t, observed[r.Index()], r.Field(), "snapshot %d", r.Index())
			require.Equal(t, ledger[r.Index()].Score, r.Score())
		}
		if r.Phase() == ReplayShowingErasing {
			require.NotEmpty(t, r.Erasing())
			require.Positive(t, r.Chain())
		}
	}
	assert.True(t, r.AtEnd())
	assert.Equal(t, len(ledger)-1, r.Index())
	last, _ := ledger.Last()
	assert.Equal(t, last.Score, r.Score())
}

func TestReplayNavigation(t *testing.T) {
	e, observed := playedEngine(t, 7, 5)
	r := NewReplay(e.Ledger())

	r.Last()
	assert.Equal(t, r.Len()-1, r.Index())
	assert.False(t, r.Step())

	r.Prev()
	assert.Equal(t, r.Len()-2, r.Index())
	assert.Equal(t, observed[r.Index()], r.Field())

	r.Jump(-5)
	assert.Equal(t, 0, r.Index())
	r.Next()
	assert.Equal(t, 1, r.Index())
	r.First()
	assert.Equal(t, 0, r.Index())

	require.True(t, r.Step())
	assert.Equal(t, ReplayShowingDrop, r.Phase())
	require.True(t, r.Step())
	assert.Equal(t, ReplayShowingGravity, r.Phase())
}

func TestReplayDoesNotTouchEngine(t *testing.T) {
	e, _ := playedEngine(t, 8, 10)
	before := e.State()
	r := NewReplay(e.Ledger())
	for r.Step() {
	}
	assert.Equal(t, before, e.State())
}

func TestLedgerVerifyDetectsCorruption(t *testing.T) {
	e, _ := playedEngine(t, 9, 8)
	ledger := e.Ledger()
	require.GreaterOrEqual(t, len(ledger), 4)

	tampered := ledger.Clone()
	if tampered[3].Field[1][0] == ColorPurple {
		tampered[3].Field[1][0] = ColorRed
	} else {
		tampered[3].Field[1][0] = ColorPurple
	}
	assert.True(t, errors.Is(tampered.Verify(), ErrCorruptLedger))

	tampered = ledger.Clone()
	tampered[2].Score += 10
	assert.True(t, errors.Is(tampered.Verify(), ErrCorruptLedger))

	tampered = ledger.Clone()
	tampered[2].ID = tampered[1].ID
	assert.True(t, errors.Is(tampered.Verify(), ErrCorruptLedger))

	tampered = ledger.Clone()
	tampered[1].Dropped = nil
	assert.True(t, errors.Is(tampered.Verify(), ErrCorruptLedger))
}

func TestLedgerVerifyAfterRewind(t *testing.T) {
	e, _ := playedEngine(t, 10, 6)
	ledger := e.Ledger()
	require.True(t, e.RestoreToSnapshot(ledger[3].ID))
	for i := 10; i < 14 && e.Phase() == PhaseFalling; i++ {
		playDrop(e, i)
	}
	require.NoError(t, e.Ledger().Verify())
}
