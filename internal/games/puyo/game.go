// Package puyo runs the chain puzzle engine on the platform's fixed tick loop.
package puyo

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-puyo/internal/config"
	platformcore "github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
	"github.com/vovakirdan/tui-puyo/internal/registry"
)

// GameRecord is one game as it is kept in the history store.
type GameRecord struct {
	ID       string // Stable for the whole game; a restart starts a new record
	GameID   string // Registry variant, e.g. "puyo_3"
	Session  core.Session
	PlayedAt time.Time
}

// DropCount returns the number of pieces placed in the recorded game.
func (r GameRecord) DropCount() int {
	return r.Session.Ledger.DropCount()
}

// Recorder persists games as they are played. It is called after every new
// ledger snapshot so a crash loses at most the piece in flight.
type Recorder interface {
	SaveHistory(rec GameRecord) error
	SaveSession(key string, rec GameRecord) error
	ClearSession(key string) error
}

// Package-level settings, applied to games created after the call.
var settings = config.DefaultPuyoConfig()

// SetConfig replaces the settings used by newly reset games.
func SetConfig(cfg config.PuyoConfig) {
	settings = cfg
}

// Settings returns the active settings.
func Settings() config.PuyoConfig {
	return settings
}

func init() {
	registry.Register("puyo", "Chain puzzle, colors from config", func() registry.Game {
		return New(0)
	})
	registry.Register("puyo_3", "Chain puzzle with three colors", func() registry.Game {
		return New(3)
	})
	registry.Register("puyo_5", "Chain puzzle with five colors", func() registry.Game {
		return New(5)
	})
}

// timer is a pending phase advance. It belongs to one engine epoch and phase;
// a restart or rewind invalidates it.
type timer struct {
	epoch uint64
	phase core.Phase
	due   uint64
	set   bool
}

// Game adapts the engine to the registry.Game interface.
type Game struct {
	colors int // Fixed color count, 0 uses the configured one

	cfg        config.PuyoConfig
	difficulty *config.DifficultyManager
	engine     *core.Engine
	tickRate   int

	tick    uint64
	pending timer
	paused  bool

	recorder   Recorder
	sessionKey string
	logger     *log.Logger
	recordID   string
	recorded   int  // Id of the last snapshot handed to the recorder
	hasRecord  bool // Whether recorded is valid
	resume     *GameRecord
	resumeErr  error

	// Last erasure pass, kept for the HUD after the effect ends
	lastChain    int
	lastAllClear bool

	screenW  int
	screenH  int
	tooSmall bool
}

// New creates a game. colors fixes the active color count; 0 reads it from
// the configuration.
func New(colors int) *Game {
	return &Game{
		colors: colors,
		logger: log.Default(),
	}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	switch g.colors {
	case 3:
		return "puyo_3"
	case 5:
		return "puyo_5"
	}
	return "puyo"
}

// Title returns the display name.
func (g *Game) Title() string {
	switch g.colors {
	case 3:
		return "Puyo (3 colors)"
	case 5:
		return "Puyo (5 colors)"
	}
	return "Puyo"
}

// Attach wires persistence. key identifies the player's suspended session.
func (g *Game) Attach(r Recorder, key string, logger *log.Logger) {
	g.recorder = r
	g.sessionKey = key
	if logger != nil {
		g.logger = logger
	}
}

// ResumeFrom makes the next Reset continue a suspended game instead of
// starting a new one. The game keeps the record's history id.
func (g *Game) ResumeFrom(rec GameRecord) {
	g.resume = &rec
}

// ResumeError reports why the last requested resume was discarded, if it was.
func (g *Game) ResumeError() error {
	return g.resumeErr
}

// Engine exposes the underlying engine for inspection.
func (g *Game) Engine() *core.Engine {
	return g.engine
}

// Reset initializes or restarts the game.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	g.cfg = settings
	g.tickRate = cfg.TickRate
	if g.tickRate <= 0 {
		g.tickRate = 60
	}
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.checkScreenSize()

	g.tick = 0
	g.pending = timer{}
	g.paused = false
	g.lastChain = 0
	g.lastAllClear = false
	g.hasRecord = false
	g.resumeErr = nil

	ecfg := core.Config{Colors: g.colorCount()}
	if cfg.Seed != 0 {
		seed := core.SeedFromInt64(cfg.Seed)
		ecfg.Seed = seed
		// Restarts replay the same deal.
		ecfg.SeedSource = func() core.Seed { return seed }
	}

	if g.resume != nil {
		rec := *g.resume
		g.resume = nil
		e, err := core.Resume(ecfg, rec.Session)
		if err == nil {
			g.engine = e
			g.recordID = rec.ID
			if g.recordID == "" {
				g.recordID = uuid.NewString()
			}
			// The resumed ledger is already persisted.
			if last, ok := e.LastSnapshot(); ok {
				g.recorded, g.hasRecord = last.ID, true
			}
			return
		}
		g.resumeErr = err
		g.logger.Warn("discarding suspended session", "game", g.ID(), "err", err)
	}

	g.engine = core.New(ecfg)
	g.recordID = uuid.NewString()
}

// Resize updates the screen dimensions without touching the game.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

func (g *Game) colorCount() int {
	if g.colors != 0 {
		return g.colors
	}
	return g.cfg.Engine.Colors
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	g.tooSmall = g.screenW < minWidth || g.screenH < minHeight
}

// Step advances the game by one tick.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	if g.engine == nil {
		return platformcore.StepResult{State: g.State()}
	}
	g.tick++

	if g.tooSmall {
		return platformcore.StepResult{State: g.State()}
	}

	phase := g.engine.Phase()
	if in.Has(platformcore.ActionPause) && phase != core.PhaseReady && phase != core.PhaseGameOver {
		g.paused = !g.paused
	}
	if g.paused {
		return platformcore.StepResult{State: g.State()}
	}

	g.handleInput(in)
	g.advance()
	g.record()

	return platformcore.StepResult{State: g.State()}
}

// handleInput maps the frame's actions to engine commands.
func (g *Game) handleInput(in platformcore.InputFrame) {
	e := g.engine

	if in.Has(platformcore.ActionRestart) {
		e.Dispatch(core.Cmd(core.CmdRestart))
		g.recordID = uuid.NewString()
		g.hasRecord = false
		g.lastChain = 0
		g.lastAllClear = false
		g.dropSession()
		return
	}
	if in.Has(platformcore.ActionUndo) {
		e.Undo()
		return
	}

	if e.Phase() == core.PhaseReady {
		if in.Has(platformcore.ActionConfirm) || in.Has(platformcore.ActionHardDrop) {
			e.Dispatch(core.Cmd(core.CmdStart))
		}
		return
	}
	if e.Phase() != core.PhaseFalling {
		return
	}

	if in.HasRotation {
		e.Dispatch(core.SetRotationCmd(core.Rotation(in.Rotation)))
	}
	if in.HasColumn {
		e.Dispatch(core.SetColumnCmd(in.Column))
	}

	switch {
	case in.Has(platformcore.ActionLeft):
		e.Dispatch(core.Cmd(core.CmdMoveLeft))
	case in.Has(platformcore.ActionRight):
		e.Dispatch(core.Cmd(core.CmdMoveRight))
	}
	switch {
	case in.Has(platformcore.ActionRotateCW):
		e.Dispatch(core.Cmd(core.CmdRotateCW))
	case in.Has(platformcore.ActionRotateCCW):
		e.Dispatch(core.Cmd(core.CmdRotateCCW))
	}

	switch {
	case in.Has(platformcore.ActionHardDrop):
		e.Dispatch(core.Cmd(core.CmdHardDrop))
	case in.Has(platformcore.ActionSoftDrop):
		if !e.Dispatch(core.Cmd(core.CmdSoftDrop)) {
			// Landed: lock on this tick instead of waiting out the fall interval.
			g.pending.due = g.tick
		}
	}
}

// advance fires the pending timer for the current phase when it is due.
func (g *Game) advance() {
	e := g.engine
	phase := e.Phase()

	if !g.pending.set || g.pending.epoch != e.Epoch() || g.pending.phase != phase {
		if phase == core.PhaseReady || phase == core.PhaseGameOver {
			g.pending = timer{}
			return
		}
		g.pending = timer{epoch: e.Epoch(), phase: phase, due: g.tick + uint64(g.delay(phase)), set: true}
	}
	if g.tick < g.pending.due {
		return
	}

	switch phase {
	case core.PhaseFalling, core.PhaseDropping, core.PhaseChaining:
		e.Tick()
		if er := e.Erasure(); er != nil {
			g.lastChain = er.Chain
			g.lastAllClear = er.AllClear
		}
	case core.PhaseErasing:
		e.AcknowledgeErasure()
	}
	g.pending.set = false
	if e.Phase() == phase {
		// Same phase again, e.g. one row of falling: rearm from now.
		g.pending = timer{epoch: e.Epoch(), phase: phase, due: g.tick + uint64(g.delay(phase)), set: true}
	}
}

// delay returns how many ticks the given phase waits before advancing.
func (g *Game) delay(phase core.Phase) int {
	switch phase {
	case core.PhaseFalling:
		return g.difficulty.FallInterval(g.cfg.Timing.FallTicks, g.engine.State().Score, int(g.tick))
	case core.PhaseDropping, core.PhaseChaining:
		return g.cfg.Timing.SettleTicks
	case core.PhaseErasing:
		return g.cfg.Timing.ChainAnimation.Ticks(g.tickRate)
	}
	return 0
}

// record hands a new snapshot to the recorder. Failures are logged and play continues.
func (g *Game) record() {
	if g.recorder == nil {
		return
	}
	last, ok := g.engine.LastSnapshot()
	if !ok || (g.hasRecord && last.ID == g.recorded) {
		return
	}
	g.recorded, g.hasRecord = last.ID, true

	s := g.engine.Session()
	rec := GameRecord{
		ID:       g.recordID,
		GameID:   g.ID(),
		Session:  s,
		PlayedAt: time.Now(),
	}
	if err := g.recorder.SaveHistory(rec); err != nil {
		g.logger.Warn("history save failed", "game", rec.ID, "err", err)
	}
	if g.sessionKey != "" {
		if err := g.recorder.SaveSession(g.sessionKey, rec); err != nil {
			g.logger.Warn("session save failed", "key", g.sessionKey, "err", err)
		}
	}
}

// dropSession forgets the suspended game, which a restart abandons.
func (g *Game) dropSession() {
	if g.recorder == nil || g.sessionKey == "" {
		return
	}
	if err := g.recorder.ClearSession(g.sessionKey); err != nil {
		g.logger.Warn("session clear failed", "key", g.sessionKey, "err", err)
	}
}

// RecordID returns the history id of the game in progress.
func (g *Game) RecordID() string {
	return g.recordID
}

// State returns the current game state.
func (g *Game) State() platformcore.GameState {
	if g.engine == nil {
		return platformcore.GameState{}
	}
	s := g.engine.State()
	return platformcore.GameState{
		Score:    s.Score,
		Chain:    s.ChainCount,
		MaxChain: s.MaxChain,
		GameOver: s.Phase == core.PhaseGameOver,
		Paused:   g.paused || g.tooSmall,
	}
}
