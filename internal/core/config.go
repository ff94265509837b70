package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed; 0 lets the game draw a fresh one
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// GameState is the summary a game reports to the platform after each step.
type GameState struct {
	Score    int
	Chain    int
	MaxChain int
	GameOver bool
	Paused   bool
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}
