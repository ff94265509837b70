package core

import (
	"errors"
	"fmt"
	"slices"
)

// SessionVersion is bumped whenever the persisted session shape changes.
const SessionVersion = 1

// ErrIncompatibleSession means a persisted session cannot be resumed; callers start a
// fresh game instead.
var ErrIncompatibleSession = errors.New("incompatible session")

// Session is the persistable shape of a suspended game. The falling piece is not stored;
// it is regenerated from the queue on resume.
type Session struct {
	Version    int     `json:"version"`
	Field      Field   `json:"field"`
	Queue      []Pair  `json:"queue"`
	Score      int     `json:"score"`
	ChainCount int     `json:"chain_count"`
	MaxChain   int     `json:"max_chain"`
	Phase      Phase   `json:"phase"`
	Colors     []Color `json:"colors"`
	Rng        Seed    `json:"rng"`
	Seed       Seed    `json:"seed"`
	Ledger     Ledger  `json:"ledger"`
	NextID     int     `json:"next_id"`
}

// Session captures the engine for persistence.
func (e *Engine) Session() Session {
	return Session{
		Version:    SessionVersion,
		Field:      e.field,
		Queue:      slices.Clone(e.queue),
		Score:      e.score,
		ChainCount: e.chain,
		MaxChain:   e.maxChain,
		Phase:      e.phase,
		Colors:     slices.Clone(e.colors),
		Rng:        e.rng.State(),
		Seed:       e.seed,
		Ledger:     e.ledger.Clone(),
		NextID:     e.nextID,
	}
}

func validColors(colors []Color) bool {
	if len(colors) < MinColors || len(colors) > MaxColors {
		return false
	}
	for i, c := range colors {
		if !c.Valid() || slices.Contains(colors[:i], c) {
			return false
		}
	}
	return true
}

// Validate reports why s cannot be resumed, wrapping ErrIncompatibleSession.
func (s Session) Validate() error {
	if s.Version != SessionVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrIncompatibleSession, s.Version, SessionVersion)
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrIncompatibleSession, s.Phase)
	}
	if !validColors(s.Colors) {
		return fmt.Errorf("%w: bad color set %v", ErrIncompatibleSession, s.Colors)
	}
	if len(s.Queue) < 2 {
		return fmt.Errorf("%w: queue holds %d pairs", ErrIncompatibleSession, len(s.Queue))
	}
	if s.Phase == PhaseReady && len(s.Ledger) > 0 {
		return fmt.Errorf("%w: ready session with %d snapshots", ErrIncompatibleSession, len(s.Ledger))
	}
	if s.Phase != PhaseReady && len(s.Ledger) == 0 {
		return fmt.Errorf("%w: %s session without snapshots", ErrIncompatibleSession, s.Phase)
	}
	if err := s.Ledger.Verify(); err != nil {
		return fmt.Errorf("%w: %w", ErrIncompatibleSession, err)
	}
	if last, ok := s.Ledger.Last(); ok && s.NextID <= last.ID {
		return fmt.Errorf("%w: next id %d not after snapshot %d", ErrIncompatibleSession, s.NextID, last.ID)
	}
	return nil
}

// Resume rebuilds an engine from a persisted session. A started game continues from its
// last snapshot with a freshly spawned piece; an unstarted one is ready to start.
func Resume(cfg Config, s Session) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg.Colors = len(s.Colors)
	e := &Engine{
		cfg:    cfg,
		seed:   s.Seed,
		colors: slices.Clone(s.Colors),
		ledger: s.Ledger.Clone(),
		nextID: s.NextID,
		phase:  PhaseReady,
	}
	if s.Phase == PhaseReady {
		e.field = s.Field
		e.queue = slices.Clone(s.Queue)
		e.rng = NewRng(s.Rng, e.colors)
		e.epoch++
		return e, nil
	}
	last, _ := e.ledger.Last()
	e.restore(last)
	return e, nil
}
