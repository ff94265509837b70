package core

// ReplayPhase is the replay viewer's position inside one drop.
type ReplayPhase string

const (
	ReplayIdle           ReplayPhase = "idle"
	ReplayShowingDrop    ReplayPhase = "showing_drop"
	ReplayShowingGravity ReplayPhase = "showing_gravity"
	ReplayShowingErasing ReplayPhase = "showing_erasing"
)

// Replay steps through a ledger using stored data only. It never touches a live
// generator, so any number of replays can run beside a game.
type Replay struct {
	ledger Ledger
	index  int
	phase  ReplayPhase

	field   Field
	step    Step
	pass    int
	erasing []Cell
	score   int
}

// NewReplay returns a player positioned at the first snapshot.
func NewReplay(l Ledger) *Replay {
	r := &Replay{ledger: l.Clone()}
	r.Jump(0)
	return r
}

// Len returns the number of snapshots.
func (r *Replay) Len() int { return len(r.ledger) }

// Index returns the current snapshot index.
func (r *Replay) Index() int { return r.index }

// Phase returns the sub-step being shown.
func (r *Replay) Phase() ReplayPhase { return r.phase }

// Field returns the field to display.
func (r *Replay) Field() Field { return r.field }

// Erasing returns the cells being erased in the showing_erasing phase.
func (r *Replay) Erasing() []Cell { return r.erasing }

// Chain returns the cascade number shown, or 0 outside a chain.
func (r *Replay) Chain() int { return r.pass }

// Score returns the score at the current point of the replay.
func (r *Replay) Score() int { return r.score }

// Snapshot returns the snapshot the replay is anchored at.
func (r *Replay) Snapshot() (Snapshot, bool) {
	if r.index < 0 || r.index >= len(r.ledger) {
		return Snapshot{}, false
	}
	return r.ledger[r.index], true
}

// Jump moves to snapshot i and shows it settled. Out-of-range indexes are clamped.
func (r *Replay) Jump(i int) {
	if len(r.ledger) == 0 {
		r.index = 0
		r.field = EmptyField()
		r.phase = ReplayIdle
		return
	}
	r.index = min(max(i, 0), len(r.ledger)-1)
	s := r.ledger[r.index]
	r.field = s.Field
	r.score = s.Score
	r.phase = ReplayIdle
	r.step = Step{}
	r.pass = 0
	r.erasing = nil
}

// First jumps to the first snapshot.
func (r *Replay) First() { r.Jump(0) }

// Last jumps to the last snapshot.
func (r *Replay) Last() { r.Jump(len(r.ledger) - 1) }

// Prev jumps one snapshot back.
func (r *Replay) Prev() { r.Jump(r.index - 1) }

// Next jumps one snapshot forward without animating.
func (r *Replay) Next() { r.Jump(r.index + 1) }

// AtEnd reports whether the replay sits settled on the last snapshot.
func (r *Replay) AtEnd() bool {
	return r.phase == ReplayIdle && r.index >= len(r.ledger)-1
}

// Step advances one visual step: drop, gravity, then an erasing/gravity pair per
// cascade, ending idle on the next snapshot. It returns false at the end or when the
// ledger cannot be derived.
func (r *Replay) Step() bool {
	switch r.phase {
	case ReplayIdle:
		if r.AtEnd() {
			return false
		}
		step, err := Derive(r.ledger[r.index], r.ledger[r.index+1])
		if err != nil {
			return false
		}
		r.step = step
		r.pass = 0
		r.field = step.Placed
		r.phase = ReplayShowingDrop

	case ReplayShowingDrop:
		r.field = r.field.ApplyGravity()
		r.phase = ReplayShowingGravity

	case ReplayShowingGravity:
		if r.pass < len(r.step.Passes) {
			res := r.step.Passes[r.pass]
			r.pass++
			r.erasing = res.Cells
			r.score += res.Total()
			r.phase = ReplayShowingErasing
			return true
		}
		r.Jump(r.index + 1)

	case ReplayShowingErasing:
		positions := make([]Pos, len(r.erasing))
		for i, c := range r.erasing {
			positions[i] = c.Pos
		}
		r.field = r.field.Remove(positions).ApplyGravity()
		r.erasing = nil
		r.phase = ReplayShowingGravity
	}
	return true
}

// Fields re-derives the settled field after every drop, starting with the first snapshot.
func (r *Replay) Fields() ([]Field, error) {
	if len(r.ledger) == 0 {
		return nil, nil
	}
	out := []Field{r.ledger[0].Field}
	for i := 1; i < len(r.ledger); i++ {
		step, err := Derive(r.ledger[i-1], r.ledger[i])
		if err != nil {
			return nil, err
		}
		out = append(out, step.Field)
	}
	return out, nil
}
