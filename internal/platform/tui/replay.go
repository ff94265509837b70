package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	puyocore "github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
)

// replayRate is the number of replay steps per second while playing.
const replayRate = 4

// ReplayKeyMap defines the key bindings for the replay viewer.
type ReplayKeyMap struct {
	Play  key.Binding
	Step  key.Binding
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ReplayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Step, k.Prev, k.Next, k.First, k.Last, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ReplayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Step, k.Prev, k.Next},
		{k.First, k.Last, k.Back, k.Quit},
	}
}

// DefaultReplayKeyMap returns default key bindings.
func DefaultReplayKeyMap() ReplayKeyMap {
	return ReplayKeyMap{
		Play:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Step:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "step")),
		Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev drop")),
		Next:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next drop")),
		First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first")),
		Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last")),
		Back:  key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ReplayModel plays back a recorded ledger.
type ReplayModel struct {
	title     string
	replay    *puyocore.Replay
	screen    *core.Screen
	help      help.Model
	keys      ReplayKeyMap
	playing   bool
	gen       uint64
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewReplayModel creates a viewer positioned at the first snapshot of ledger.
func NewReplayModel(title string, ledger puyocore.Ledger, width, height int) ReplayModel {
	h := help.New()
	h.Width = width
	return ReplayModel{
		title:  title,
		replay: puyocore.NewReplay(ledger),
		screen: core.NewScreen(width, max(height-1, 1)),
		help:   h,
		keys:   DefaultReplayKeyMap(),
		width:  width,
		height: height,
	}
}

// Init initializes the replay model.
func (m ReplayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the replay viewer.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width

	case TickMsg:
		if !m.playing || msg.Gen != m.gen {
			return m, nil
		}
		if !m.replay.Step() {
			m.playing = false
			return m, nil
		}
		return m, tickCmd(replayRate, m.gen)
	}
	return m, nil
}

func (m ReplayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.goingBack = true
		return m, nil
	case key.Matches(msg, m.keys.Play):
		if m.playing {
			m.playing = false
			return m, nil
		}
		if m.replay.AtEnd() {
			m.replay.First()
		}
		m.playing = true
		m.gen = nextGen()
		return m, tickCmd(replayRate, m.gen)
	}

	// Manual navigation stops autoplay
	m.playing = false
	switch {
	case key.Matches(msg, m.keys.Step):
		m.replay.Step()
	case key.Matches(msg, m.keys.Prev):
		m.replay.Prev()
	case key.Matches(msg, m.keys.Next):
		m.replay.Next()
	case key.Matches(msg, m.keys.First):
		m.replay.First()
	case key.Matches(msg, m.keys.Last):
		m.replay.Last()
	}
	return m, nil
}

// Render draws the replay into the model's screen buffer.
func (m ReplayModel) Render(dst *core.Screen) {
	dst.Clear()
	area := dst.Bounds().Centered(puyo.BoardWidth+20, puyo.BoardHeight+1)
	x := core.Clamp(area.X, 0, dst.Width())
	y := core.Clamp(area.Y+1, 1, dst.Height())

	dst.DrawTextColored(x, y-1, m.title, core.ColorCyan)
	puyo.DrawField(dst, x, y, m.replay.Field())
	puyo.DrawCells(dst, x, y, m.replay.Erasing(), puyo.PopRune)

	px := x + puyo.BoardWidth + 2
	dst.DrawText(px, y, fmt.Sprintf("Drop   %d/%d", m.replay.Index(), max(m.replay.Len()-1, 0)))
	dst.DrawText(px, y+1, fmt.Sprintf("Score  %d", m.replay.Score()))
	if c := m.replay.Chain(); c > 0 {
		dst.DrawTextColored(px, y+3, fmt.Sprintf("%d chain!", c), core.ColorOrange)
	}
	if snap, ok := m.replay.Snapshot(); ok {
		dst.DrawText(px, y+5, "NEXT")
		for i := 0; i < 2 && i < len(snap.Queue); i++ {
			puyo.DrawPair(dst, px+1+i*4, y+6, snap.Queue[i])
		}
	}
	switch {
	case m.playing:
		dst.DrawTextColored(px, y+9, "PLAYING", core.ColorBrightGreen)
	case m.replay.AtEnd():
		dst.DrawTextColored(px, y+9, "END", core.ColorGray)
	}
}

// View renders the replay viewer.
func (m ReplayModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}
	m.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// IsGoingBack returns true if user wants to go back.
func (m ReplayModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ReplayModel) IsQuitting() bool {
	return m.quitting
}

// RunReplay starts a standalone Bubble Tea program that replays ledger.
func RunReplay(title string, ledger puyocore.Ledger, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewReplayModel(title, ledger, cfg.ScreenW, cfg.ScreenH),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
