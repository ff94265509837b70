package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/registry"
	"github.com/vovakirdan/tui-puyo/internal/storage"
)

type screenKind int

const (
	screenMenu screenKind = iota
	screenGame
	screenHistory
	screenReplay
	screenScores
)

// SessionModel manages one player's full flow: menu, games, history, replays
// and scores. It is the top-level model for both local and SSH sessions.
type SessionModel struct {
	store    *storage.Store
	logger   *log.Logger
	config   core.RuntimeConfig
	user     string
	current  screenKind
	menu     MenuModel
	game     *GameModel
	history  *HistoryModel
	replay   *ReplayModel
	scores   *ScoreboardModel
	quitting bool
}

// NewSessionModel creates a new session model for user.
func NewSessionModel(store *storage.Store, cfg core.RuntimeConfig, user string, logger *log.Logger) SessionModel {
	if logger == nil {
		logger = log.Default()
	}
	return SessionModel{
		store:  store,
		logger: logger.With("user", user),
		config: cfg,
		user:   user,
		menu:   NewMenuModel(store, cfg, user),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.current {
	case screenGame:
		return m.updateGame(msg)
	case screenHistory:
		return m.updateHistory(msg)
	case screenReplay:
		return m.updateReplay(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

// toMenu rebuilds the menu so resumable sessions are current.
func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.current = screenMenu
	m.game, m.history, m.replay, m.scores = nil, nil, nil, nil
	m.menu = NewMenuModel(m.store, m.config, m.user)
	return m, m.menu.Init()
}

func (m SessionModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}
	if m.menu.IsQuitting() {
		return m.quit()
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	m.config = m.menu.Config()
	m.logger.Debug("menu selection", "item", selected)

	switch selected.Kind {
	case MenuPlay:
		game, err := registry.Create(selected.GameID)
		if err != nil {
			m.logger.Error("cannot create game", "game", selected.GameID, "err", err)
			return m.toMenu()
		}
		key := SessionKey(m.user, selected.GameID)
		PrepareGame(game, m.store, key, selected.Resumable, m.logger)
		gm := NewGameModel(game, m.store, m.config, key, m.logger)
		m.game = &gm
		m.current = screenGame
		return m, m.game.Init()

	case MenuHistory, MenuFavorites:
		hm := NewHistoryModel(m.store, selected.Kind == MenuFavorites, m.config.ScreenW, m.config.ScreenH, m.logger)
		m.history = &hm
		m.current = screenHistory
		return m, m.history.Init()

	case MenuScores:
		sm := NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
		m.scores = &sm
		m.current = screenScores
		return m, m.scores.Init()
	}
	return m.toMenu()
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}
	switch {
	case m.game.BackToMenu():
		return m.toMenu()
	case m.game.IsQuitting():
		return m.quit()
	}
	return m, cmd
}

func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if hm, ok := newModel.(HistoryModel); ok {
		m.history = &hm
	}
	switch {
	case m.history.IsQuitting():
		return m.quit()
	case m.history.IsGoingBack():
		return m.toMenu()
	}

	if req := m.history.ReplayRequested(); req != nil {
		m.history.ClearReplay()
		if err := req.Entry.Ledger.Verify(); err != nil {
			m.logger.Warn("refusing to replay corrupt ledger", "id", req.Entry.ID, "err", err)
			return m, cmd
		}
		rm := NewReplayModel(req.Title, req.Entry.Ledger, m.config.ScreenW, m.config.ScreenH)
		m.replay = &rm
		m.current = screenReplay
		return m, m.replay.Init()
	}
	return m, cmd
}

func (m SessionModel) updateReplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.replay.Update(msg)
	if rm, ok := newModel.(ReplayModel); ok {
		m.replay = &rm
	}
	switch {
	case m.replay.IsQuitting():
		return m.quit()
	case m.replay.IsGoingBack():
		m.replay = nil
		m.current = screenHistory
		// The browser may have missed resizes while the replay was open
		newModel, cmd := m.history.Update(tea.WindowSizeMsg{Width: m.config.ScreenW, Height: m.config.ScreenH})
		if hm, ok := newModel.(HistoryModel); ok {
			m.history = &hm
		}
		return m, cmd
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if sm, ok := newModel.(ScoreboardModel); ok {
		m.scores = &sm
	}
	switch {
	case m.scores.IsQuitting():
		return m.quit()
	case m.scores.IsGoingBack():
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.current {
	case screenGame:
		return m.game.View()
	case screenHistory:
		return m.history.View()
	case screenReplay:
		return m.replay.View()
	case screenScores:
		return m.scores.View()
	}
	return m.menu.View()
}

// RunSession starts a standalone Bubble Tea program with the full menu flow.
func RunSession(store *storage.Store, cfg core.RuntimeConfig, user string, logger *log.Logger) error {
	p := tea.NewProgram(
		NewSessionModel(store, cfg, user, logger),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
