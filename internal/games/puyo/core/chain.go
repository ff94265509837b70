package core

import "github.com/kamstrup/intmap"

// Group is a set of same-colored, orthogonally connected visible positions.
type Group []Pos

// visibleCell reports whether p takes part in connectivity (in bounds, below the hidden row).
func visibleCell(p Pos) bool {
	return InBounds(p) && p.Y >= HiddenRows
}

func cellKey(p Pos) int {
	return p.Y*FieldCols + p.X
}

var neighborOffsets = [4]Pos{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// FindConnected returns every position reachable from start through same-colored
// orthogonal neighbours. The hidden row is never entered. An empty or hidden start
// yields nil.
func FindConnected(f Field, start Pos) Group {
	return findConnected(f, start, intmap.New[int, struct{}](FieldRows*FieldCols))
}

// findConnected runs the BFS and marks every visited cell of the group in visited.
func findConnected(f Field, start Pos, visited *intmap.Map[int, struct{}]) Group {
	if !visibleCell(start) {
		return nil
	}
	color := f.Get(start)
	if color == ColorNone {
		return nil
	}

	var group Group
	queue := []Pos{start}
	visited.Put(cellKey(start), struct{}{})
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		group = append(group, p)

		for _, off := range neighborOffsets {
			n := p.Add(off)
			if !visibleCell(n) || f.Get(n) != color {
				continue
			}
			if _, seen := visited.Get(cellKey(n)); seen {
				continue
			}
			visited.Put(cellKey(n), struct{}{})
			queue = append(queue, n)
		}
	}
	return group
}

// FindErasableGroups scans the visible rows in row-major order and returns every group
// of at least ConnectCount cells. Groups never overlap.
func FindErasableGroups(f Field) []Group {
	visited := intmap.New[int, struct{}](FieldRows * FieldCols)
	var groups []Group
	for y := HiddenRows; y < FieldRows; y++ {
		for x := 0; x < FieldCols; x++ {
			p := Pos{X: x, Y: y}
			if f[y][x] == ColorNone {
				continue
			}
			if _, seen := visited.Get(cellKey(p)); seen {
				continue
			}
			group := findConnected(f, p, visited)
			if len(group) >= ConnectCount {
				groups = append(groups, group)
			}
		}
	}
	return groups
}

// CountColors returns the number of distinct colors across all groups.
func CountColors(f Field, groups []Group) int {
	var seen [ColorPurple + 1]bool
	n := 0
	for _, g := range groups {
		for _, p := range g {
			c := f.Get(p)
			if c != ColorNone && !seen[c] {
				seen[c] = true
				n++
			}
		}
	}
	return n
}

// CountErased returns the total number of cells across all groups.
func CountErased(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

// Flatten concatenates the positions of all groups.
func Flatten(groups []Group) []Pos {
	out := make([]Pos, 0, CountErased(groups))
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// GroupCells pairs each erased position with the color it held in f.
func GroupCells(f Field, groups []Group) []Cell {
	cells := make([]Cell, 0, CountErased(groups))
	for _, g := range groups {
		for _, p := range g {
			cells = append(cells, Cell{Pos: p, Color: f.Get(p)})
		}
	}
	return cells
}
