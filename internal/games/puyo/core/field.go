package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field is the playfield grid, indexed [y][x]. Row 0 is the hidden spawn row.
// Field is a value type: assignment copies it, so every transform below returns a new
// grid and never touches the caller's copy.
type Field [FieldRows][FieldCols]Color

// EmptyField returns a field with every cell empty.
func EmptyField() Field {
	return Field{}
}

// InBounds reports whether p lies inside the grid (hidden row included).
func InBounds(p Pos) bool {
	return p.X >= 0 && p.X < FieldCols && p.Y >= 0 && p.Y < FieldRows
}

// Get returns the color at p, or ColorNone when p is out of bounds.
func (f Field) Get(p Pos) Color {
	if !InBounds(p) {
		return ColorNone
	}
	return f[p.Y][p.X]
}

// Set returns a copy of f with c placed at p.
// Out-of-bounds or occupied positions leave the copy unchanged.
func (f Field) Set(p Pos, c Color) Field {
	if InBounds(p) && f[p.Y][p.X] == ColorNone {
		f[p.Y][p.X] = c
	}
	return f
}

// IsEmpty reports whether p is an in-bounds empty cell.
func (f Field) IsEmpty(p Pos) bool {
	return InBounds(p) && f[p.Y][p.X] == ColorNone
}

// Clone returns an independent copy of f.
func (f Field) Clone() Field {
	return f
}

// Remove returns a copy of f with the given positions cleared.
func (f Field) Remove(positions []Pos) Field {
	for _, p := range positions {
		if InBounds(p) {
			f[p.Y][p.X] = ColorNone
		}
	}
	return f
}

// ApplyGravity returns a copy of f where every column is packed to the bottom.
// Same-column order is preserved; only gaps are removed.
func (f Field) ApplyGravity() Field {
	var out Field
	for x := 0; x < FieldCols; x++ {
		write := FieldRows - 1
		for y := FieldRows - 1; y >= 0; y-- {
			if f[y][x] != ColorNone {
				out[write][x] = f[y][x]
				write--
			}
		}
	}
	return out
}

// HasFloating reports whether any column has an empty cell below a filled one.
func (f Field) HasFloating() bool {
	for x := 0; x < FieldCols; x++ {
		foundEmpty := false
		for y := FieldRows - 1; y >= 0; y-- {
			if f[y][x] == ColorNone {
				foundEmpty = true
			} else if foundEmpty {
				return true
			}
		}
	}
	return false
}

// gameOverCells are the two center cells of the top visible row.
var gameOverCells = [2]Pos{{X: 2, Y: HiddenRows}, {X: 3, Y: HiddenRows}}

// IsGameOver reports whether either center-top visible cell is occupied.
func (f Field) IsGameOver() bool {
	for _, p := range gameOverCells {
		if f.Get(p) != ColorNone {
			return true
		}
	}
	return false
}

// IsCleared reports whether every cell, hidden row included, is empty.
func (f Field) IsCleared() bool {
	return f == Field{}
}

// Count returns the number of filled cells.
func (f Field) Count() int {
	n := 0
	for y := range f {
		for x := range f[y] {
			if f[y][x] != ColorNone {
				n++
			}
		}
	}
	return n
}

// Rows renders the field as one string per row using Color.Char ('.' for empty).
func (f Field) Rows() []string {
	rows := make([]string, FieldRows)
	var sb strings.Builder
	for y := range f {
		sb.Reset()
		for x := range f[y] {
			sb.WriteByte(f[y][x].Char())
		}
		rows[y] = sb.String()
	}
	return rows
}

// String returns the rows joined by newlines.
func (f Field) String() string {
	return strings.Join(f.Rows(), "\n")
}

// ParseField builds a field from ASCII rows. Fewer than FieldRows rows are aligned to
// the bottom of the grid, which keeps test fixtures short.
func ParseField(rows ...string) (Field, error) {
	var f Field
	if len(rows) > FieldRows {
		return f, fmt.Errorf("field: %d rows exceeds %d", len(rows), FieldRows)
	}
	offset := FieldRows - len(rows)
	for i, row := range rows {
		if len(row) != FieldCols {
			return f, fmt.Errorf("field: row %d has width %d, want %d", i, len(row), FieldCols)
		}
		for x := 0; x < FieldCols; x++ {
			c, ok := ParseColor(string(row[x]))
			if !ok {
				return f, fmt.Errorf("field: row %d col %d: unknown cell %q", i, x, row[x])
			}
			f[offset+i][x] = c
		}
	}
	return f, nil
}

// MustParseField is ParseField for fixtures; it panics on malformed input.
func MustParseField(rows ...string) Field {
	f, err := ParseField(rows...)
	if err != nil {
		panic(err)
	}
	return f
}

// MarshalJSON encodes the field as its ASCII rows.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Rows())
}

// UnmarshalJSON decodes ASCII rows; the row count must match exactly.
func (f *Field) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != FieldRows {
		return fmt.Errorf("field: got %d rows, want %d", len(rows), FieldRows)
	}
	parsed, err := ParseField(rows...)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
