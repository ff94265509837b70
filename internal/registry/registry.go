// Package registry holds the game factories the platform can start.
// Variants register themselves in init(), so the CLI, the terminal UI and the
// SSH server discover them without hardcoded lists.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-puyo/internal/core"
)

// Game is the interface the platform drives at a fixed tick rate.
// Implementations keep their rules free of terminal concerns; the platform
// handles input mapping, timing, and display.
type Game interface {
	// ID returns a unique identifier, used by the CLI and score storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or restarts the game.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into a pre-cleared screen buffer.
	Render(dst *core.Screen)

	// State returns the current summary (score, chain, game over, paused).
	State() core.GameState
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID          string
	Title       string
	Description string
}

// Factory creates a new instance of a game.
type Factory func() Game

type entry struct {
	info    GameInfo
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a game factory. The title is read from a throwaway instance.
// Panics if the ID is already registered.
func Register(id, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}
	entries[id] = entry{
		info:    GameInfo{ID: id, Title: f().Title(), Description: description},
		factory: f,
	}
}

// List returns all registered games sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return e.factory(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
