package config

import (
	_ "embed"
)

//go:embed defaults/puyo.yaml
var defaultPuyoYAML []byte

// DefaultPuyoConfig returns the hardcoded configuration used when no YAML is usable.
func DefaultPuyoConfig() PuyoConfig {
	return PuyoConfig{
		Engine: EngineConfig{
			Colors: 4,
		},
		Timing: TimingConfig{
			FallTicks:      45,
			SettleTicks:    12,
			ChainAnimation: ChainAnimationMiddle,
		},
		History: HistoryConfig{
			MaxEntries: 100,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 50000,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 3.0,
			},
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultPuyoYAML
}
