package core

import "slices"

// QueueLength is the number of upcoming pairs held in the next queue.
const QueueLength = 3

// CommandKind identifies an input command.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdRestart
	CmdMoveLeft
	CmdMoveRight
	CmdRotateCW
	CmdRotateCCW
	CmdSoftDrop
	CmdHardDrop
	CmdSetColumn
	CmdSetRotation
)

var commandNames = map[CommandKind]string{
	CmdStart:       "START_GAME",
	CmdRestart:     "RESTART_GAME",
	CmdMoveLeft:    "MOVE_LEFT",
	CmdMoveRight:   "MOVE_RIGHT",
	CmdRotateCW:    "ROTATE_CW",
	CmdRotateCCW:   "ROTATE_CCW",
	CmdSoftDrop:    "SOFT_DROP",
	CmdHardDrop:    "HARD_DROP",
	CmdSetColumn:   "SET_COLUMN",
	CmdSetRotation: "SET_ROTATION",
}

func (k CommandKind) String() string {
	if s, ok := commandNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Command is one discrete input. Column and Rotation are read only by the
// SET_COLUMN and SET_ROTATION commands.
type Command struct {
	Kind     CommandKind
	Column   int
	Rotation Rotation
}

// Cmd returns a command without arguments.
func Cmd(k CommandKind) Command {
	return Command{Kind: k}
}

// SetColumnCmd returns a SET_COLUMN command.
func SetColumnCmd(col int) Command {
	return Command{Kind: CmdSetColumn, Column: col}
}

// SetRotationCmd returns a SET_ROTATION command.
func SetRotationCmd(r Rotation) Command {
	return Command{Kind: CmdSetRotation, Rotation: r}
}

// ErasureResult describes one resolved erasure pass, exposed while the engine waits in
// the erasing phase.
type ErasureResult struct {
	Groups     []Group `json:"groups"`
	Cells      []Cell  `json:"cells"`
	Chain      int     `json:"chain"`
	Erased     int     `json:"erased"`
	Colors     int     `json:"colors"`
	Score      int     `json:"score"`
	AllClear   bool    `json:"all_clear"`
	ClearBonus int     `json:"clear_bonus"`
}

// Total returns the points the pass added, all-clear bonus included.
func (r ErasureResult) Total() int {
	return r.Score + r.ClearBonus
}

// State is a read-only view of the engine for renderers.
type State struct {
	Field      Field
	Piece      *Piece
	Queue      []Pair
	Score      int
	ChainCount int
	MaxChain   int
	Phase      Phase
	Colors     []Color
	Ledger     Ledger
}

// Config configures a new engine.
type Config struct {
	// Colors is the size of the active color set (3..5). Zero selects the default.
	Colors int
	// Seed, when non-zero, seeds the first game.
	Seed Seed
	// SeedSource supplies seeds for restarts and for the first game when Seed is zero.
	// Defaults to NewSeed.
	SeedSource func() Seed
}

func (c Config) nextSeed() Seed {
	if c.SeedSource != nil {
		return c.SeedSource()
	}
	return NewSeed()
}

// Engine is the phase state machine. It is single-owner and not safe for concurrent use.
type Engine struct {
	cfg Config
	rng *Rng

	field    Field
	piece    *Piece
	queue    []Pair
	score    int
	chain    int
	maxChain int
	phase    Phase
	colors   []Color
	erasure  *ErasureResult

	ledger  Ledger
	nextID  int
	dropped []Pos
	seed    Seed
	epoch   uint64
}

// New returns an engine in the ready phase.
func New(cfg Config) *Engine {
	cfg.Colors = ClampColors(cfg.Colors)
	e := &Engine{cfg: cfg}
	seed := cfg.Seed
	if seed == (Seed{}) {
		seed = cfg.nextSeed()
	}
	e.prepare(seed)
	return e
}

// prepare resets every field of the game from a seed and leaves the engine in ready.
func (e *Engine) prepare(seed Seed) {
	e.seed = seed
	e.rng = NewRng(seed, nil)
	e.colors = PickColors(e.rng, e.cfg.Colors)
	e.rng.SetColors(e.colors)

	initial := e.rng.InitialPairs()
	e.queue = []Pair{initial[0], initial[1]}
	for len(e.queue) < QueueLength {
		e.queue = append(e.queue, e.rng.NextPair())
	}

	e.field = EmptyField()
	e.piece = nil
	e.score = 0
	e.chain = 0
	e.maxChain = 0
	e.erasure = nil
	e.ledger = nil
	e.nextID = 0
	e.dropped = nil
	e.phase = PhaseReady
}

// Seed returns the seed the current game started from.
func (e *Engine) Seed() Seed { return e.seed }

// Epoch is bumped whenever the game is replaced wholesale (restart, restore, resume).
// Schedulers tag pending work with it and drop work from an older epoch.
func (e *Engine) Epoch() uint64 { return e.epoch }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Erasure returns the pass being shown while in the erasing phase, or nil.
func (e *Engine) Erasure() *ErasureResult { return e.erasure }

// Ledger returns a copy of the snapshot ledger.
func (e *Engine) Ledger() Ledger { return e.ledger.Clone() }

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := State{
		Field:      e.field,
		Queue:      slices.Clone(e.queue),
		Score:      e.score,
		ChainCount: e.chain,
		MaxChain:   e.maxChain,
		Phase:      e.phase,
		Colors:     slices.Clone(e.colors),
		Ledger:     e.ledger.Clone(),
	}
	if e.piece != nil {
		p := *e.piece
		s.Piece = &p
	}
	return s
}

// Dispatch applies one command and reports whether it changed anything.
// Illegal commands are rejected silently.
func (e *Engine) Dispatch(cmd Command) bool {
	switch cmd.Kind {
	case CmdStart:
		return e.start()
	case CmdRestart:
		e.epoch++
		e.prepare(e.cfg.nextSeed())
		return true
	}

	if e.phase != PhaseFalling || e.piece == nil {
		return false
	}
	var (
		next Piece
		ok   bool
	)
	switch cmd.Kind {
	case CmdMoveLeft:
		next, ok = Move(e.field, *e.piece, Left)
	case CmdMoveRight:
		next, ok = Move(e.field, *e.piece, Right)
	case CmdRotateCW:
		next, ok = Rotate(e.field, *e.piece, Clockwise)
	case CmdRotateCCW:
		next, ok = Rotate(e.field, *e.piece, CounterClockwise)
	case CmdSoftDrop:
		next, ok = Drop(e.field, *e.piece)
	case CmdSetColumn:
		next, ok = SetColumn(e.field, *e.piece, cmd.Column)
	case CmdSetRotation:
		next, ok = SetRotation(e.field, *e.piece, cmd.Rotation)
	case CmdHardDrop:
		e.lock(HardDrop(e.field, *e.piece))
		return true
	default:
		return false
	}
	if !ok || next == *e.piece {
		return false
	}
	e.piece = &next
	return true
}

func (e *Engine) start() bool {
	if e.phase != PhaseReady {
		return false
	}
	e.capture()
	e.spawn()
	return true
}

// spawn pops the head of the queue into a new falling piece and refills the queue.
// A blocked spawn cell ends the game.
func (e *Engine) spawn() {
	if len(e.queue) == 0 {
		e.phase = PhaseGameOver
		return
	}
	p := NewPiece(e.queue[0])
	if !e.field.IsEmpty(p.Pivot) {
		e.piece = nil
		e.phase = PhaseGameOver
		return
	}
	e.queue = append(slices.Clone(e.queue[1:]), e.rng.NextPair())
	e.piece = &p
	e.phase = PhaseFalling
}

func (e *Engine) lock(p Piece) {
	e.field = Lock(e.field, p)
	e.dropped = []Pos{p.Pivot, p.Satellite()}
	e.piece = nil
	e.phase = PhaseDropping
}

// Tick advances the no-input phases: it drops the falling piece one row (locking it when
// landed), applies gravity after a lock, or resolves one erasure pass. It reports whether
// anything changed. Ready, erasing and game over do nothing.
func (e *Engine) Tick() bool {
	switch e.phase {
	case PhaseFalling:
		if e.piece == nil {
			return false
		}
		if next, ok := Drop(e.field, *e.piece); ok {
			e.piece = &next
			return true
		}
		e.lock(*e.piece)
		return true

	case PhaseDropping:
		e.field = e.field.ApplyGravity()
		if len(FindErasableGroups(e.field)) > 0 {
			e.chain = 0
			e.phase = PhaseChaining
			return true
		}
		e.finishResolution()
		return true

	case PhaseChaining:
		e.resolvePass()
		return true
	}
	return false
}

// resolvePass erases every current group, scores it and pauses in erasing.
func (e *Engine) resolvePass() {
	groups := FindErasableGroups(e.field)
	if len(groups) == 0 {
		e.finishResolution()
		return
	}
	e.chain++
	e.maxChain = max(e.maxChain, e.chain)

	res := ErasureResult{
		Groups: groups,
		Cells:  GroupCells(e.field, groups),
		Chain:  e.chain,
		Erased: CountErased(groups),
		Colors: CountColors(e.field, groups),
	}
	res.Score = CalculateScore(res.Erased, res.Chain, groups, res.Colors)

	e.field = e.field.Remove(Flatten(groups))
	if e.field.IsCleared() {
		res.AllClear = true
		res.ClearBonus = AllClearBonus
	}
	e.score += res.Total()
	e.erasure = &res
	e.phase = PhaseErasing
}

// AcknowledgeErasure resumes after the caller finished showing the current erasure pass.
// It applies gravity and either continues the chain or finishes the sequence.
func (e *Engine) AcknowledgeErasure() bool {
	if e.phase != PhaseErasing {
		return false
	}
	e.erasure = nil
	e.field = e.field.ApplyGravity()
	if len(FindErasableGroups(e.field)) > 0 {
		e.phase = PhaseChaining
		return true
	}
	e.finishResolution()
	return true
}

// finishResolution records the settled state and moves on to the next piece or game over.
func (e *Engine) finishResolution() {
	e.capture()
	if e.field.IsGameOver() {
		e.piece = nil
		e.phase = PhaseGameOver
		return
	}
	e.spawn()
}

// Settle drives ticks and acknowledgements until the engine needs input again
// (falling, ready or game over). It returns the erasure passes it went through.
func (e *Engine) Settle() []ErasureResult {
	var passes []ErasureResult
	for {
		switch e.phase {
		case PhaseDropping, PhaseChaining:
			e.Tick()
		case PhaseErasing:
			passes = append(passes, *e.erasure)
			e.AcknowledgeErasure()
		default:
			return passes
		}
	}
}

// capture appends a snapshot of the settled state. The generator state is taken before
// the next pair is drawn.
func (e *Engine) capture() {
	e.ledger = append(e.ledger, Snapshot{
		ID:         e.nextID,
		Field:      e.field,
		Queue:      slices.Clone(e.queue),
		Score:      e.score,
		ChainCount: e.chain,
		MaxChain:   e.maxChain,
		Rng:        e.rng.State(),
		Colors:     slices.Clone(e.colors),
		Dropped:    e.dropped,
	})
	e.nextID++
	e.dropped = nil
}

// LastSnapshot returns the newest ledger entry.
func (e *Engine) LastSnapshot() (Snapshot, bool) {
	return e.ledger.Last()
}

// RestoreToSnapshot rewinds to the snapshot with the given id: the ledger is truncated
// after it, the field, queue, score and generator are restored from it and a fresh
// piece is spawned. Unknown ids leave the engine untouched.
func (e *Engine) RestoreToSnapshot(id int) bool {
	i, ok := e.ledger.Index(id)
	if !ok {
		return false
	}
	e.ledger = e.ledger[:i+1]
	e.restore(e.ledger[i])
	return true
}

func (e *Engine) restore(s Snapshot) {
	e.epoch++
	e.field = s.Field
	e.queue = slices.Clone(s.Queue)
	e.score = s.Score
	e.chain = s.ChainCount
	e.maxChain = s.MaxChain
	e.colors = slices.Clone(s.Colors)
	e.rng = NewRng(s.Rng, e.colors)
	e.erasure = nil
	e.dropped = nil
	e.piece = nil

	last, _ := e.ledger.Last()
	e.nextID = max(e.nextID, last.ID+1)

	if e.field.IsGameOver() {
		e.phase = PhaseGameOver
		return
	}
	e.spawn()
}

// Undo rewinds to the snapshot before the most recent drop.
func (e *Engine) Undo() bool {
	if e.phase != PhaseFalling && e.phase != PhaseGameOver {
		return false
	}
	if len(e.ledger) < 2 {
		return false
	}
	return e.RestoreToSnapshot(e.ledger[len(e.ledger)-2].ID)
}
