// Package core implements the deterministic simulation engine for the chain-matching
// puzzle: field and gravity, piece control, chain resolution and scoring, the seeded
// generator, and the snapshot ledger used for rewind and replay.
// This package is UI-agnostic and performs no I/O.
package core

import (
	"fmt"
	"strings"
)

// Field dimensions.
const (
	FieldCols   = 6
	VisibleRows = 12
	HiddenRows  = 1
	FieldRows   = VisibleRows + HiddenRows

	// ConnectCount is the minimum group size that erases.
	ConnectCount = 4
)

// Spawn position of a new piece's pivot (third column, hidden row).
const (
	SpawnX = 2
	SpawnY = 0
)

// Color is the content of a field cell. The zero value is an empty cell.
type Color uint8

const (
	ColorNone Color = iota
	ColorRed
	ColorBlue
	ColorGreen
	ColorYellow
	ColorPurple
)

// AllColors lists every hue a game can draw from, in canonical order.
func AllColors() []Color {
	return []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple}
}

// String returns the lowercase name of the color.
func (c Color) String() string {
	switch c {
	case ColorNone:
		return "none"
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorPurple:
		return "purple"
	default:
		return "unknown"
	}
}

// Char returns the single-character form used in ASCII fields.
func (c Color) Char() byte {
	switch c {
	case ColorRed:
		return 'R'
	case ColorBlue:
		return 'B'
	case ColorGreen:
		return 'G'
	case ColorYellow:
		return 'Y'
	case ColorPurple:
		return 'P'
	default:
		return '.'
	}
}

// Valid reports whether c is a drawable hue (not empty, not out of range).
func (c Color) Valid() bool {
	return c >= ColorRed && c <= ColorPurple
}

// ParseColor converts a name or single character into a Color.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "red", "r":
		return ColorRed, true
	case "blue", "b":
		return ColorBlue, true
	case "green", "g":
		return ColorGreen, true
	case "yellow", "y":
		return ColorYellow, true
	case "purple", "p":
		return ColorPurple, true
	case "none", ".", "":
		return ColorNone, true
	default:
		return ColorNone, false
	}
}

// MarshalText encodes the color by name.
func (c Color) MarshalText() ([]byte, error) {
	if c != ColorNone && !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a color name.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("unknown color %q", text)
	}
	*c = parsed
	return nil
}

// Pos is a field coordinate. X grows to the right, Y grows downward; row 0 is hidden.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// P is a convenience constructor for Pos.
func P(x, y int) Pos {
	return Pos{X: x, Y: y}
}

// Add returns p offset by o.
func (p Pos) Add(o Pos) Pos {
	return Pos{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Pair is a (pivot, satellite) color pair from the next queue.
type Pair [2]Color

// Pivot returns the pivot color.
func (p Pair) Pivot() Color { return p[0] }

// Satellite returns the satellite color.
func (p Pair) Satellite() Color { return p[1] }

// Phase is the state machine tag.
type Phase string

const (
	PhaseReady    Phase = "ready"
	PhaseFalling  Phase = "falling"
	PhaseDropping Phase = "dropping"
	PhaseChaining Phase = "chaining"
	PhaseErasing  Phase = "erasing"
	PhaseGameOver Phase = "gameover"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseReady, PhaseFalling, PhaseDropping, PhaseChaining, PhaseErasing, PhaseGameOver:
		return true
	}
	return false
}

// Cell is a colored position, used for erasure effects.
type Cell struct {
	Pos   Pos   `json:"pos"`
	Color Color `json:"color"`
}
