package main

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-puyo/internal/config"
	"github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	"github.com/vovakirdan/tui-puyo/internal/storage"
)

var (
	logger   = log.Default()
	settings = config.DefaultPuyoConfig()
)

// setup runs before every command: it builds the logger and loads the game
// configuration with the difficulty preset applied.
func setup(cmd *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "puyo",
		Level:           level,
	})

	settings, err = config.LoadPuyo(flagConfig)
	if err != nil {
		return err
	}
	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return err
		}
		config.ApplyPuyoPreset(&settings, preset)
	}
	puyo.SetConfig(settings)
	logger.Debug("config loaded", "command", cmd.Name(), "colors", settings.Engine.Colors,
		"fall_ticks", settings.Timing.FallTicks, "chain_animation", settings.Timing.ChainAnimation)
	return nil
}

// logToFile moves logging off the terminal while a full-screen program runs.
// It returns a function that closes the file.
func logToFile() func() {
	path := expandHome(flagLogFile)
	if path == "" {
		logger.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		logger.SetOutput(io.Discard)
		return func() {}
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		f.Close()
	}
}

// openStore opens the database. Interactive commands keep working without it,
// so failures are only logged.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, nothing will be saved", "path", flagDBPath, "err", err)
		return nil
	}
	store.SetHistoryLimit(settings.History.MaxEntries)
	return store
}

// mustOpenStore opens the database for commands that cannot work without it.
func mustOpenStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	store.SetHistoryLimit(settings.History.MaxEntries)
	return store, nil
}

// runtimeConfig sizes the screen from the controlling terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// localUser names the owner of local suspended sessions.
func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
