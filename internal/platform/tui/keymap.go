package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-puyo/internal/core"
)

// GameKeyMap defines the in-game key bindings.
type GameKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	RotateCW  key.Binding
	RotateCCW key.Binding
	SoftDrop  key.Binding
	HardDrop  key.Binding
	Column    key.Binding
	Undo      key.Binding
	Start     key.Binding
	Pause     key.Binding
	Restart   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.RotateCW, k.HardDrop, k.Undo, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.SoftDrop, k.HardDrop, k.Column},
		{k.RotateCW, k.RotateCCW, k.Undo},
		{k.Start, k.Pause, k.Restart, k.Back, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/→", "move"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→", "move right"),
		),
		RotateCW: key.NewBinding(
			key.WithKeys("x", "up", "w", "k"),
			key.WithHelp("x/z", "turn"),
		),
		RotateCCW: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "turn left"),
		),
		SoftDrop: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓", "soft drop"),
		),
		HardDrop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "drop"),
		),
		Column: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "jump to column"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "backspace"),
			key.WithHelp("u", "undo"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "menu"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MapKeyToFrame translates a key message into the input frame.
// Returns true if the key was a quit request.
func (k GameKeyMap) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	switch {
	case key.Matches(msg, k.Quit):
		return true
	case key.Matches(msg, k.Left):
		frame.Set(core.ActionLeft)
	case key.Matches(msg, k.Right):
		frame.Set(core.ActionRight)
	case key.Matches(msg, k.RotateCW):
		frame.Set(core.ActionRotateCW)
	case key.Matches(msg, k.RotateCCW):
		frame.Set(core.ActionRotateCCW)
	case key.Matches(msg, k.SoftDrop):
		frame.Set(core.ActionSoftDrop)
	case key.Matches(msg, k.HardDrop):
		frame.Set(core.ActionHardDrop)
	case key.Matches(msg, k.Column):
		frame.SetColumn(int(msg.String()[0] - '1'))
	case key.Matches(msg, k.Undo):
		frame.Set(core.ActionUndo)
	case key.Matches(msg, k.Start):
		frame.Set(core.ActionConfirm)
	case key.Matches(msg, k.Pause):
		frame.Set(core.ActionPause)
	case key.Matches(msg, k.Restart):
		frame.Set(core.ActionRestart)
	case key.Matches(msg, k.Back):
		frame.Set(core.ActionBack)
	}
	return false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
