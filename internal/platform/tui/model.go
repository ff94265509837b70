package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	"github.com/vovakirdan/tui-puyo/internal/registry"
	"github.com/vovakirdan/tui-puyo/internal/storage"
)

var tickGen atomic.Uint64

// nextGen returns a generation for a new tick loop. Generations are unique per
// process, so ticks from a game that was left never reach its successor.
func nextGen() uint64 {
	return tickGen.Add(1)
}

// SessionKey builds the key a player's suspended game is stored under.
func SessionKey(user, gameID string) string {
	return user + ":" + gameID
}

// PrepareGame wires persistence into a puzzle game and, when resume is set,
// queues the player's suspended session for the next Reset. Incompatible
// sessions are logged and cleared; the player gets a fresh game.
func PrepareGame(game registry.Game, store *storage.Store, key string, resume bool, logger *log.Logger) {
	pg, ok := game.(*puyo.Game)
	if !ok || store == nil {
		return
	}
	if logger == nil {
		logger = log.Default()
	}
	pg.Attach(store, key, logger)
	if !resume {
		return
	}

	rec, err := store.LoadSession(key)
	switch {
	case err == nil:
		pg.ResumeFrom(rec)
		logger.Info("resuming session", "key", key, "record", rec.ID, "score", rec.Session.Score, "drops", rec.DropCount())
	case errors.Is(err, storage.ErrNoSession):
	default:
		logger.Warn("suspended session unusable, starting fresh", "key", key, "err", err)
		if cerr := store.ClearSession(key); cerr != nil {
			logger.Error("cannot clear session", "key", key, "err", cerr)
		}
	}
}

// recordKeeper is implemented by games that track a history record per game.
// Undo out of game over keeps the record, so its score is saved only once.
type recordKeeper interface {
	RecordID() string
}

// resizer is implemented by games that adapt to a new screen size in place.
type resizer interface {
	Resize(w, h int)
}

// GameModel is the Bubble Tea model that drives one game.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	sessionKey string
	inputFrame core.InputFrame
	gameState  core.GameState
	keys       GameKeyMap
	help       help.Model
	gen        uint64
	quitting   bool
	backToMenu bool
	scoreSaved bool   // Whether score has been saved for current game over
	scoredID   string // Record whose score was saved
}

// NewGameModel creates a model for the given game. The bottom row is kept for
// the help line.
func NewGameModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, sessionKey string, logger *log.Logger) GameModel {
	if logger == nil {
		logger = log.Default()
	}
	cfg.ScreenH = max(cfg.ScreenH-1, 1)
	h := help.New()
	h.Width = cfg.ScreenW

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		logger:     logger,
		config:     cfg,
		sessionKey: sessionKey,
		inputFrame: core.NewInputFrame(),
		keys:       DefaultGameKeyMap(),
		help:       h,
		gen:        nextGen(),
	}
}

// Init initializes the model and starts the game.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate, m.gen)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Back) && (m.gameState.GameOver || m.gameState.Paused):
		m.leave()
		m.backToMenu = true
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// leave drops the suspended session of a finished game so it is not offered again.
func (m GameModel) leave() {
	if !m.gameState.GameOver || m.store == nil || m.sessionKey == "" {
		return
	}
	if err := m.store.ClearSession(m.sessionKey); err != nil {
		m.logger.Warn("cannot clear finished session", "key", m.sessionKey, "err", err)
	}
}

// handleResize processes window resize events without restarting the game.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = max(msg.Height-1, 1)
	m.screen.Resize(m.config.ScreenW, m.config.ScreenH)
	m.help.Width = msg.Width

	if r, ok := m.game.(resizer); ok {
		r.Resize(m.config.ScreenW, m.config.ScreenH)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	var recordID string
	if rk, ok := m.game.(recordKeeper); ok {
		recordID = rk.RecordID()
	}

	switch {
	case m.gameState.GameOver && !(m.scoreSaved && m.scoredID == recordID):
		if m.store != nil && m.gameState.Score > 0 {
			if _, err := m.store.SaveScore(m.game.ID(), m.gameState.Score, m.gameState.MaxChain); err != nil {
				m.logger.Warn("score save failed", "game", m.game.ID(), "err", err)
			}
		}
		m.logger.Debug("game over", "game", m.game.ID(), "score", m.gameState.Score, "max_chain", m.gameState.MaxChain)
		m.scoreSaved = true
		m.scoredID = recordID
	case !m.gameState.GameOver && recordID == "":
		m.scoreSaved = false
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate, m.gen)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".puyo", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "err", err)
		return
	}

	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "err", err)
	}
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	if m.help.ShowAll {
		return helpStyle.Render(m.help.View(m.keys))
	}
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a standalone Bubble Tea program for one game.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, sessionKey string, logger *log.Logger) error {
	model := NewGameModel(game, store, cfg, sessionKey, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
