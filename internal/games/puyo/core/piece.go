package core

import "fmt"

// Rotation is the satellite's orientation around the pivot.
type Rotation int

const (
	RotationUp Rotation = iota
	RotationRight
	RotationDown
	RotationLeft
)

func (r Rotation) String() string {
	switch r.normalize() {
	case RotationUp:
		return "up"
	case RotationRight:
		return "right"
	case RotationDown:
		return "down"
	default:
		return "left"
	}
}

func (r Rotation) normalize() Rotation {
	return ((r % 4) + 4) % 4
}

// Direction is a horizontal move.
type Direction int

const (
	Left Direction = iota
	Right
)

// Spin is a rotation sense.
type Spin int

const (
	Clockwise Spin = iota
	CounterClockwise
)

var satelliteOffsets = [4]Pos{
	RotationUp:    {X: 0, Y: -1},
	RotationRight: {X: 1, Y: 0},
	RotationDown:  {X: 0, Y: 1},
	RotationLeft:  {X: -1, Y: 0},
}

// SatelliteOffset returns the satellite position relative to the pivot.
func SatelliteOffset(r Rotation) Pos {
	return satelliteOffsets[r.normalize()]
}

// Piece is the falling pair. The satellite's position is derived from the pivot and rotation.
type Piece struct {
	Pivot          Pos      `json:"pivot"`
	PivotColor     Color    `json:"pivot_color"`
	SatelliteColor Color    `json:"satellite_color"`
	Rotation       Rotation `json:"rotation"`
}

// NewPiece returns a piece at the spawn position with the satellite above the pivot.
func NewPiece(p Pair) Piece {
	return Piece{
		Pivot:          Pos{X: SpawnX, Y: SpawnY},
		PivotColor:     p.Pivot(),
		SatelliteColor: p.Satellite(),
		Rotation:       RotationUp,
	}
}

// Satellite returns the satellite's absolute position.
func (p Piece) Satellite() Pos {
	return p.Pivot.Add(SatelliteOffset(p.Rotation))
}

// Cells returns the pivot and satellite as colored cells.
func (p Piece) Cells() [2]Cell {
	return [2]Cell{
		{Pos: p.Pivot, Color: p.PivotColor},
		{Pos: p.Satellite(), Color: p.SatelliteColor},
	}
}

func (p Piece) String() string {
	return fmt.Sprintf("piece{%s %s/%s %s}", p.Pivot, p.PivotColor, p.SatelliteColor, p.Rotation)
}

// CanPlace reports whether p is a legal configuration on f. The pivot must sit on an
// empty in-bounds cell. The satellite must too, except that it may hang above the top
// edge as long as its column is valid.
func CanPlace(f Field, p Piece) bool {
	if !f.IsEmpty(p.Pivot) {
		return false
	}
	sat := p.Satellite()
	if sat.Y < 0 {
		return sat.X >= 0 && sat.X < FieldCols
	}
	return f.IsEmpty(sat)
}

func tryPlace(f Field, p Piece) (Piece, bool) {
	if CanPlace(f, p) {
		return p, true
	}
	return Piece{}, false
}

// Move shifts the piece one column. On failure the returned piece is zero and ok is false.
func Move(f Field, p Piece, d Direction) (Piece, bool) {
	dx := 1
	if d == Left {
		dx = -1
	}
	p.Pivot.X += dx
	return tryPlace(f, p)
}

// Drop moves the piece down one row.
func Drop(f Field, p Piece) (Piece, bool) {
	p.Pivot.Y++
	return tryPlace(f, p)
}

// Rotate turns the piece a quarter. When the turned piece does not fit, a single kick
// is tried: away from a side wall or an occupied side cell, and up when the satellite
// would end below the floor or inside an occupied cell under the pivot.
func Rotate(f Field, p Piece, s Spin) (Piece, bool) {
	delta := Rotation(1)
	if s == CounterClockwise {
		delta = 3
	}
	return rotateTo(f, p, (p.Rotation + delta).normalize())
}

func rotateTo(f Field, p Piece, r Rotation) (Piece, bool) {
	turned := p
	turned.Rotation = r
	if CanPlace(f, turned) {
		return turned, true
	}

	off := SatelliteOffset(r)
	sat := p.Pivot.Add(off)
	var kick Pos
	switch {
	case sat.X < 0:
		kick.X = 1
	case sat.X >= FieldCols:
		kick.X = -1
	case !f.IsEmpty(sat) && InBounds(sat):
		kick.X = -off.X
	}
	if sat.Y >= FieldRows || (InBounds(sat) && !f.IsEmpty(sat) && off.Y > 0) {
		kick.Y = -1
	}
	if kick == (Pos{}) {
		return Piece{}, false
	}
	turned.Pivot = p.Pivot.Add(kick)
	return tryPlace(f, turned)
}

// HardDrop drops the piece until it lands. It never fails.
func HardDrop(f Field, p Piece) Piece {
	for {
		next, ok := Drop(f, p)
		if !ok {
			return p
		}
		p = next
	}
}

// IsLanded reports whether the piece cannot drop further.
func IsLanded(f Field, p Piece) bool {
	_, ok := Drop(f, p)
	return !ok
}

// SetColumn moves the pivot directly to col, keeping its row and rotation.
func SetColumn(f Field, p Piece, col int) (Piece, bool) {
	p.Pivot.X = col
	return tryPlace(f, p)
}

// SetRotation turns the piece directly to r, with the same kick as Rotate.
func SetRotation(f Field, p Piece, r Rotation) (Piece, bool) {
	r = r.normalize()
	if r == p.Rotation {
		return p, CanPlace(f, p)
	}
	return rotateTo(f, p, r)
}

// Lock writes the piece into f. A satellite above the top edge is dropped.
func Lock(f Field, p Piece) Field {
	f = f.Set(p.Pivot, p.PivotColor)
	return f.Set(p.Satellite(), p.SatelliteColor)
}
