package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/registry"
	"github.com/vovakirdan/tui-puyo/internal/storage"
)

// MenuKind is what a menu entry opens.
type MenuKind int

const (
	MenuPlay MenuKind = iota
	MenuHistory
	MenuFavorites
	MenuScores
)

// MenuItem represents a selectable menu entry.
type MenuItem struct {
	Kind      MenuKind
	GameID    string
	Title     string
	Resumable bool // A suspended session exists for this variant
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	config   core.RuntimeConfig
	quitting bool
	selected *MenuItem
}

// NewMenuModel creates a new menu model. user selects whose suspended sessions
// are marked as resumable.
func NewMenuModel(store *storage.Store, cfg core.RuntimeConfig, user string) MenuModel {
	games := registry.List()
	items := make([]MenuItem, 0, len(games)+3)

	for _, g := range games {
		item := MenuItem{Kind: MenuPlay, GameID: g.ID, Title: g.Title}
		if store != nil {
			if _, err := store.LoadSession(SessionKey(user, g.ID)); err == nil {
				item.Resumable = true
			}
		}
		items = append(items, item)
	}
	if store != nil {
		items = append(items,
			MenuItem{Kind: MenuHistory, Title: "History"},
			MenuItem{Kind: MenuFavorites, Title: "Favorites"},
			MenuItem{Kind: MenuScores, Title: "High Scores"},
		)
	}

	return MenuModel{
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}
	}

	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("P U Y O"), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		if i > 0 && item.Kind != MenuPlay && m.items[i-1].Kind == MenuPlay {
			b.WriteString("\n")
		}
		line := item.Title
		if item.Resumable {
			line += " (continue)"
		}
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers possibly styled text within the given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

// String describes a menu entry for logs.
func (i MenuItem) String() string {
	if i.Kind == MenuPlay {
		return fmt.Sprintf("play %s", i.GameID)
	}
	return i.Title
}
