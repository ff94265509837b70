// puyo is a falling-pair chain puzzle for the terminal.
//
// Usage:
//
//	puyo list                  - List game variants
//	puyo play [variant]        - Play a variant (default: puyo)
//	puyo menu                  - Start the interactive menu
//	puyo history               - List recorded games
//	puyo favorites             - List favorite games
//	puyo replay <id>           - Replay a recorded game
//	puyo verify [id...]        - Check recorded ledgers for consistency
//	puyo scores [variant]      - Show high scores
//	puyo serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible games
//	--db <path>           - Set database path (default: ~/.puyo/puyo.db)
//	--config <path>       - Use a custom puyo.yaml
//	--difficulty <preset> - easy, normal, hard or fixed
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/vovakirdan/tui-puyo/internal/games/puyo"
)

var (
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "puyo",
	Short: "Falling-pair chain puzzle in your terminal",
	Long: `Drop pairs of colored blobs, connect four or more of a color to pop them
and set up cascades for chain bonuses.

Every drop is recorded, so games can be undone, resumed later and replayed.

Examples:
  puyo play
  puyo play puyo_5 --difficulty hard
  puyo menu
  puyo history
  puyo replay 3f2a
  puyo serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runMenu,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.puyo/puyo.db", "Path to the database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom puyo.yaml")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.puyo/puyo.log", "Log file for interactive commands")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}
