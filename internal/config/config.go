// Package config provides YAML-based game configuration loading and
// difficulty management for the puzzle.
package config

import (
	"fmt"
	"time"
)

// PuyoConfig contains all configuration for the chain puzzle.
type PuyoConfig struct {
	Engine     EngineConfig     `yaml:"engine"`
	Timing     TimingConfig     `yaml:"timing"`
	History    HistoryConfig    `yaml:"history"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// EngineConfig configures the simulation itself.
type EngineConfig struct {
	Colors int `yaml:"colors"` // Active colors per game, 3..5
}

// TimingConfig defines tick-based pacing. All values are in simulation ticks
// unless noted.
type TimingConfig struct {
	FallTicks      int            `yaml:"fall_ticks"`      // Ticks per automatic one-row fall
	SettleTicks    int            `yaml:"settle_ticks"`    // Pause after a lock or a gravity pass
	ChainAnimation ChainAnimation `yaml:"chain_animation"` // How long erased cells stay visible
}

// HistoryConfig bounds the persisted game history.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// ChainAnimation is the erase effect speed setting.
type ChainAnimation string

const (
	ChainAnimationShort  ChainAnimation = "short"
	ChainAnimationMiddle ChainAnimation = "middle"
	ChainAnimationLong   ChainAnimation = "long"
)

// Duration returns the wall-clock length of the erase effect.
func (a ChainAnimation) Duration() time.Duration {
	switch a {
	case ChainAnimationShort:
		return 0
	case ChainAnimationLong:
		return 600 * time.Millisecond
	default:
		return 300 * time.Millisecond
	}
}

// Ticks converts the effect duration into simulation ticks at the given rate.
func (a ChainAnimation) Ticks(tickRate int) int {
	if tickRate <= 0 {
		tickRate = 60
	}
	return int(a.Duration() * time.Duration(tickRate) / time.Second)
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Fall speed added at max difficulty
}

// Validate reports the first out-of-range setting.
func (c PuyoConfig) Validate() error {
	if c.Engine.Colors < 3 || c.Engine.Colors > 5 {
		return fmt.Errorf("config: engine.colors must be 3..5, got %d", c.Engine.Colors)
	}
	if c.Timing.FallTicks <= 0 {
		return fmt.Errorf("config: timing.fall_ticks must be positive, got %d", c.Timing.FallTicks)
	}
	if c.Timing.SettleTicks < 0 {
		return fmt.Errorf("config: timing.settle_ticks must not be negative, got %d", c.Timing.SettleTicks)
	}
	switch c.Timing.ChainAnimation {
	case ChainAnimationShort, ChainAnimationMiddle, ChainAnimationLong:
	default:
		return fmt.Errorf("config: unknown timing.chain_animation %q", c.Timing.ChainAnimation)
	}
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("config: history.max_entries must be positive, got %d", c.History.MaxEntries)
	}
	switch c.Difficulty.Progression.Type {
	case "score", "time", "none":
	default:
		return fmt.Errorf("config: unknown difficulty.progression.type %q", c.Difficulty.Progression.Type)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name; the empty string means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
