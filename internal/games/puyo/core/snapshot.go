package core

import (
	"errors"
	"fmt"
	"slices"
)

// ErrCorruptLedger is returned when consecutive snapshots cannot be derived from each other.
var ErrCorruptLedger = errors.New("corrupt ledger")

// Snapshot is the settled state captured once at game start and once after every drop,
// before the next pair is drawn. Score already includes the points of the drop's chain.
type Snapshot struct {
	ID         int     `json:"id"`
	Field      Field   `json:"field"`
	Queue      []Pair  `json:"queue"`
	Score      int     `json:"score"`
	ChainCount int     `json:"chain_count"`
	MaxChain   int     `json:"max_chain"`
	Rng        Seed    `json:"rng"`
	Colors     []Color `json:"colors"`
	// Dropped holds the pivot and satellite positions of the piece that led to this
	// snapshot. It is empty for the first snapshot.
	Dropped []Pos `json:"dropped,omitempty"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.Queue = slices.Clone(s.Queue)
	s.Colors = slices.Clone(s.Colors)
	s.Dropped = slices.Clone(s.Dropped)
	return s
}

// Ledger is the ordered snapshot timeline of one game.
type Ledger []Snapshot

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	for i, s := range l {
		out[i] = s.Clone()
	}
	return out
}

// Index returns the position of the snapshot with the given id.
func (l Ledger) Index(id int) (int, bool) {
	for i := range l {
		if l[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Last returns the newest snapshot.
func (l Ledger) Last() (Snapshot, bool) {
	if len(l) == 0 {
		return Snapshot{}, false
	}
	return l[len(l)-1], true
}

// DropCount is the number of pieces placed over the timeline.
func (l Ledger) DropCount() int {
	return max(0, len(l)-1)
}

// Step is the outcome of re-deriving one drop from ledger data alone.
type Step struct {
	// Placed is the field right after the piece was written, before gravity.
	Placed Field
	// Passes lists the erasure passes in cascade order.
	Passes []ErasureResult
	// Field is the settled result.
	Field Field
	// Score is the points the drop earned.
	Score int
}

// Derive replays the drop that leads from cur to next: the piece colors come from the
// head of cur's queue and its positions from next.Dropped. No generator is consulted.
func Derive(cur, next Snapshot) (Step, error) {
	if len(cur.Queue) == 0 {
		return Step{}, fmt.Errorf("snapshot %d: empty queue", cur.ID)
	}
	if len(next.Dropped) != 2 {
		return Step{}, fmt.Errorf("snapshot %d: want 2 dropped positions, got %d", next.ID, len(next.Dropped))
	}
	pair := cur.Queue[0]
	f := cur.Field.Set(next.Dropped[0], pair.Pivot())
	f = f.Set(next.Dropped[1], pair.Satellite())

	step := Step{Placed: f}
	f = f.ApplyGravity()
	chain := 0
	for {
		groups := FindErasableGroups(f)
		if len(groups) == 0 {
			break
		}
		chain++
		res := ErasureResult{
			Groups: groups,
			Cells:  GroupCells(f, groups),
			Chain:  chain,
			Erased: CountErased(groups),
			Colors: CountColors(f, groups),
		}
		res.Score = CalculateScore(res.Erased, chain, groups, res.Colors)
		f = f.Remove(Flatten(groups))
		if f.IsCleared() {
			res.AllClear = true
			res.ClearBonus = AllClearBonus
		}
		step.Passes = append(step.Passes, res)
		step.Score += res.Total()
		f = f.ApplyGravity()
	}
	step.Field = f
	return step, nil
}

// Verify checks that the ledger is internally consistent: ids strictly increase, every
// snapshot carries a usable queue, and each snapshot's field and score follow from its
// predecessor by replaying the recorded drop.
func (l Ledger) Verify() error {
	for i, s := range l {
		if len(s.Queue) < 2 {
			return fmt.Errorf("%w: snapshot %d has %d queued pairs", ErrCorruptLedger, s.ID, len(s.Queue))
		}
		if i == 0 {
			continue
		}
		prev := l[i-1]
		if s.ID <= prev.ID {
			return fmt.Errorf("%w: snapshot id %d follows %d", ErrCorruptLedger, s.ID, prev.ID)
		}
		step, err := Derive(prev, s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptLedger, err)
		}
		if step.Field != s.Field {
			return fmt.Errorf("%w: snapshot %d field does not follow from %d", ErrCorruptLedger, s.ID, prev.ID)
		}
		if prev.Score+step.Score != s.Score {
			return fmt.Errorf("%w: snapshot %d score %d, derived %d", ErrCorruptLedger, s.ID, s.Score, prev.Score+step.Score)
		}
	}
	return nil
}
