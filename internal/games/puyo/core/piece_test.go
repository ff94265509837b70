package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func piece(x, y int, r Rotation) Piece {
	return Piece{Pivot: P(x, y), PivotColor: ColorRed, SatelliteColor: ColorBlue, Rotation: r}
}

func TestSatelliteOffset(t *testing.T) {
	assert.Equal(t, P(0, -1), SatelliteOffset(RotationUp))
	assert.Equal(t, P(1, 0), SatelliteOffset(RotationRight))
	assert.Equal(t, P(0, 1), SatelliteOffset(RotationDown))
	assert.Equal(t, P(-1, 0), SatelliteOffset(RotationLeft))
	assert.Equal(t, SatelliteOffset(RotationUp), SatelliteOffset(Rotation(4)))
	assert.Equal(t, SatelliteOffset(RotationLeft), SatelliteOffset(Rotation(-1)))
}

func TestNewPieceSpawnsAboveField(t *testing.T) {
	p := NewPiece(Pair{ColorGreen, ColorYellow})
	assert.Equal(t, P(SpawnX, SpawnY), p.Pivot)
	assert.Equal(t, P(2, -1), p.Satellite())
	assert.True(t, CanPlace(EmptyField(), p))

	// Only the pivot is written when the satellite hangs above the top edge.
	f := Lock(EmptyField(), p)
	assert.Equal(t, 1, f.Count())
	assert.Equal(t, ColorGreen, f.Get(P(2, 0)))
}

func TestCanPlace(t *testing.T) {
	f := MustParseField("R.....")
	tests := []struct {
		name string
		p    Piece
		want bool
	}{
		{"free", piece(2, 5, RotationRight), true},
		{"pivot out of bounds", piece(-1, 5, RotationUp), false},
		{"satellite past right wall", piece(5, 5, RotationRight), false},
		{"pivot on filled cell", piece(0, 12, RotationUp), false},
		{"satellite on filled cell", piece(0, 11, RotationDown), false},
		{"satellite above top edge", piece(4, 0, RotationUp), true},
		{"satellite beside hidden row off the wall", piece(0, 0, RotationLeft), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPlace(f, tt.p))
		})
	}
}

func TestRotateFullTurn(t *testing.T) {
	f := EmptyField()
	for _, spin := range []Spin{Clockwise, CounterClockwise} {
		start := piece(2, 6, RotationUp)
		p := start
		for i := 0; i < 4; i++ {
			var ok bool
			p, ok = Rotate(f, p, spin)
			require.True(t, ok)
			assert.Equal(t, start.Pivot, p.Pivot, "no kick expected")
		}
		assert.Equal(t, start, p)
	}
}

func TestRotateWallKick(t *testing.T) {
	f := EmptyField()

	p, ok := Rotate(f, piece(0, 6, RotationUp), CounterClockwise)
	require.True(t, ok)
	assert.Equal(t, RotationLeft, p.Rotation)
	assert.Equal(t, P(1, 6), p.Pivot)
	assert.Equal(t, P(0, 6), p.Satellite())

	p, ok = Rotate(f, piece(5, 6, RotationUp), Clockwise)
	require.True(t, ok)
	assert.Equal(t, RotationRight, p.Rotation)
	assert.Equal(t, P(4, 6), p.Pivot)
}

func TestRotateFloorKick(t *testing.T) {
	p, ok := Rotate(EmptyField(), piece(2, 12, RotationRight), Clockwise)
	require.True(t, ok)
	assert.Equal(t, RotationDown, p.Rotation)
	assert.Equal(t, P(2, 11), p.Pivot)

	f := MustParseField("..G...")
	p, ok = Rotate(f, piece(2, 11, RotationRight), Clockwise)
	require.True(t, ok)
	assert.Equal(t, P(2, 10), p.Pivot)
	assert.Equal(t, P(2, 11), p.Satellite())
}

func TestRotateObstacleKick(t *testing.T) {
	f := EmptyField().Set(P(3, 6), ColorGreen)
	p, ok := Rotate(f, piece(2, 6, RotationUp), Clockwise)
	require.True(t, ok)
	assert.Equal(t, P(1, 6), p.Pivot)
	assert.Equal(t, P(2, 6), p.Satellite())
}

func TestRotateFailsInShaft(t *testing.T) {
	// Column 0 is a one-wide shaft: column 1 is filled from the top visible row down.
	var f Field
	for y := HiddenRows; y < FieldRows; y++ {
		if y%2 == 0 {
			f[y][1] = ColorGreen
		} else {
			f[y][1] = ColorYellow
		}
	}
	start := piece(0, 6, RotationUp)

	for _, spin := range []Spin{Clockwise, CounterClockwise} {
		_, ok := Rotate(f, start, spin)
		assert.False(t, ok, "spin %v should fail", spin)
	}
}

func TestMoveAndDrop(t *testing.T) {
	f := EmptyField()
	_, ok := Move(f, piece(0, 5, RotationUp), Left)
	assert.False(t, ok)

	p, ok := Move(f, piece(0, 5, RotationUp), Right)
	require.True(t, ok)
	assert.Equal(t, P(1, 5), p.Pivot)

	_, ok = Move(f, piece(4, 5, RotationRight), Right)
	assert.False(t, ok)

	p, ok = Drop(f, piece(3, 5, RotationUp))
	require.True(t, ok)
	assert.Equal(t, P(3, 6), p.Pivot)
	assert.False(t, IsLanded(f, p))
}

func TestHardDrop(t *testing.T) {
	f := MustParseField(
		"...B..",
		"...B..",
	)
	p := HardDrop(f, NewPiece(Pair{ColorRed, ColorRed}))
	assert.Equal(t, P(2, 12), p.Pivot)
	assert.Equal(t, P(2, 11), p.Satellite())
	assert.True(t, IsLanded(f, p))

	// Landed pieces come back unchanged.
	assert.Equal(t, p, HardDrop(f, p))

	q := HardDrop(f, piece(2, 0, RotationRight))
	assert.Equal(t, P(2, 10), q.Pivot, "satellite rests on the column 3 stack")
}

func TestSetColumnAndRotation(t *testing.T) {
	f := EmptyField()
	p, ok := SetColumn(f, piece(2, 3, RotationUp), 5)
	require.True(t, ok)
	assert.Equal(t, 5, p.Pivot.X)

	_, ok = SetColumn(f, piece(2, 3, RotationUp), FieldCols)
	assert.False(t, ok)
	_, ok = SetColumn(f, piece(2, 3, RotationRight), 5)
	assert.False(t, ok)

	p, ok = SetRotation(f, piece(0, 3, RotationUp), RotationLeft)
	require.True(t, ok)
	assert.Equal(t, P(1, 3), p.Pivot, "direct rotation kicks like Rotate")
	assert.Equal(t, RotationLeft, p.Rotation)

	p, ok = SetRotation(f, piece(2, 3, RotationUp), RotationDown)
	require.True(t, ok)
	assert.Equal(t, P(2, 3), p.Pivot)
}
