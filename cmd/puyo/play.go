package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puyo/internal/platform/tui"
	"github.com/vovakirdan/tui-puyo/internal/registry"
)

var flagFresh bool

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play a variant",
	Long: `Start playing the given variant (default: puyo).

A suspended game of the same variant is continued unless --new is given.

Controls:
  Left/Right, A/D  - Move
  X/Up, Z          - Rotate clockwise / counter-clockwise
  Down             - Soft drop
  Space            - Hard drop
  1-6              - Jump to column
  U                - Undo last drop
  P                - Pause
  R                - Restart
  Esc              - Back (when paused or over)
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Slow falls, long chain effects
  normal - Default pacing with progression
  hard   - Fast falls, short settle times
  fixed  - No progression

Examples:
  puyo play
  puyo play puyo_3 --difficulty easy
  puyo play --new --seed 42
  puyo play --config ./my-puyo.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagFresh, "new", false, "Start a new game instead of continuing a suspended one")
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID := "puyo"
	if len(args) > 0 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown variant %q, run 'puyo list' to see them", gameID)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("cannot create game: %w", err)
	}

	cfg := runtimeConfig()
	store := openStore()
	if store != nil {
		defer store.Close()
	}

	closeLog := logToFile()
	defer closeLog()

	key := tui.SessionKey(localUser(), gameID)
	// A fixed seed asks for a reproducible game, which a resume would not be
	resume := !flagFresh && flagSeed == 0
	tui.PrepareGame(game, store, key, resume, logger)

	if err := tui.Run(game, store, cfg, key, logger); err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	return nil
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive menu",
	Long: `Start the puzzle in interactive menu mode.

The menu lists the variants, marking those with a suspended game, and
gives access to the history browser, favorites and high scores.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Q            - Quit`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg := runtimeConfig()
	store := openStore()
	if store != nil {
		defer store.Close()
	}

	closeLog := logToFile()
	defer closeLog()

	return tui.RunSession(store, cfg, localUser(), logger)
}
