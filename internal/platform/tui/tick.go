// Package tui provides the Bubble Tea front end: the game loop, menus, the
// history browser, the replay viewer and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation tick. Gen identifies the tick loop
// that scheduled it; a model drops ticks from loops it has replaced.
type TickMsg struct {
	Time time.Time
	Gen  uint64
}

// tickCmd returns a command that sends one tick message at the specified rate.
func tickCmd(tickRate int, gen uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}
