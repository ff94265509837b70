package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFile = "puyo.yaml"

// LoadPuyo loads the puzzle configuration.
// Search order: customPath -> ~/.puyo/configs/puyo.yaml -> ./configs/puyo.yaml -> embedded default.
// Missing keys keep their default values.
func LoadPuyo(customPath string) (PuyoConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return PuyoConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return PuyoConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(configFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", configFile)); err == nil {
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultPuyoYAML)
	if err != nil {
		return DefaultPuyoConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parse(data []byte) (PuyoConfig, error) {
	cfg := DefaultPuyoConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PuyoConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return PuyoConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".puyo", "configs", filename)
}

// ApplyPuyoPreset modifies the config based on a difficulty preset.
func ApplyPuyoPreset(cfg *PuyoConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust pacing based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Timing.FallTicks = cfg.Timing.FallTicks * 3 / 2
		cfg.Timing.ChainAnimation = ChainAnimationLong
	case DifficultyHard:
		cfg.Timing.FallTicks = max(1, cfg.Timing.FallTicks*2/3)
		cfg.Timing.SettleTicks = cfg.Timing.SettleTicks / 2
		cfg.Timing.ChainAnimation = ChainAnimationShort
	}
}
