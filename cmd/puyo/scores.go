package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puyo/internal/registry"
)

var (
	flagScoresLimit int
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [variant]",
	Short: "Show high scores",
	Long: `Without a variant, show per-variant statistics. With a variant, show
its top scores.

Examples:
  puyo scores
  puyo scores puyo_5 --limit 20
  puyo scores puyo --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all scores of the variant")
}

func runScores(_ *cobra.Command, args []string) error {
	store, err := mustOpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		stats, err := store.GetAllGamesStats()
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No games recorded yet.")
			return nil
		}
		ids := make([]string, 0, len(stats))
		for id := range stats {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Printf("  %-8s  %6s  %8s  %5s  %8s  %s\n", "Variant", "Games", "Best", "Chain", "Average", "Last played")
		for _, id := range ids {
			s := stats[id]
			fmt.Printf("  %-8s  %6d  %8d  %5d  %8.0f  %s\n",
				id, s.GamesCount, s.HighScore, s.BestChain, s.AvgScore, s.LastPlayed.Format("2006-01-02 15:04"))
		}
		return nil
	}

	gameID := args[0]
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown variant %q, run 'puyo list' to see them", gameID)
	}

	if flagScoresClear {
		if err := store.ClearScores(gameID); err != nil {
			return err
		}
		fmt.Printf("Scores for %s cleared.\n", gameID)
		return nil
	}

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("cannot retrieve scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n\n", gameID)
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Printf("\nPlay 'puyo play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %-5s  %s\n", "Rank", "Score", "Chain", "Date")
	fmt.Printf("  %-4s  %-10s  %-5s  %s\n", "----", "-----", "-----", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-10d  %-5d  %s\n", i+1, e.Score, e.MaxChain, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
