package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puyo/internal/platform/tui"
	"github.com/vovakirdan/tui-puyo/internal/storage"
)

const shortID = 8

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded games",
	Long: `List recorded games, most recently played first. Ids may be shortened
to any unique prefix in every command that takes one.

Examples:
  puyo history
  puyo history note 3f2a "clean GTR #opener"
  puyo history rm 3f2a`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := mustOpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListHistory()
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a recorded game",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEntry(args[0], false, func(store *storage.Store, e storage.HistoryEntry) error {
			return store.DeleteHistory(e.ID)
		})
	},
}

var historyNoteCmd = &cobra.Command{
	Use:   "note <id> <text>",
	Short: "Set the note of a recorded game; words starting with # become tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		note, tags := tui.ParseNote(strings.Join(args[1:], " "))
		return withEntry(args[0], false, func(store *storage.Store, e storage.HistoryEntry) error {
			return store.UpdateHistoryNote(e.ID, note, tags)
		})
	},
}

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "List favorite games",
	Long: `List favorite games. Favorites are copies: deleting or pruning the
recorded game does not affect them.

Examples:
  puyo favorites
  puyo favorites add 3f2a
  puyo favorites rm 9c01`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := mustOpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		favs, err := store.ListFavorites()
		if err != nil {
			return err
		}
		entries := make([]storage.HistoryEntry, len(favs))
		for i, f := range favs {
			entries[i] = f.HistoryEntry
		}
		printEntries(entries)
		return nil
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <history-id>",
	Short: "Copy a recorded game into the favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEntry(args[0], false, func(store *storage.Store, e storage.HistoryEntry) error {
			id, err := store.AddFavorite(e.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Added favorite %s\n", id[:shortID])
			return nil
		})
	},
}

var favoritesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEntry(args[0], true, func(store *storage.Store, e storage.HistoryEntry) error {
			return store.RemoveFavorite(e.ID)
		})
	},
}

var favoritesNoteCmd = &cobra.Command{
	Use:   "note <id> <text>",
	Short: "Set the note of a favorite; words starting with # become tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		note, tags := tui.ParseNote(strings.Join(args[1:], " "))
		return withEntry(args[0], true, func(store *storage.Store, e storage.HistoryEntry) error {
			return store.UpdateFavoriteNote(e.ID, note, tags)
		})
	},
}

func init() {
	historyCmd.AddCommand(historyRmCmd, historyNoteCmd)
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesRmCmd, favoritesNoteCmd)
}

// withEntry resolves ref in the history or the favorites and runs fn on it.
func withEntry(ref string, favorite bool, fn func(*storage.Store, storage.HistoryEntry) error) error {
	store, err := mustOpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := resolve(store, ref, favorite)
	if err != nil {
		return err
	}
	return fn(store, e)
}

// resolve finds the entry whose id is ref or starts with it.
func resolve(store *storage.Store, ref string, favorite bool) (storage.HistoryEntry, error) {
	var candidates []storage.HistoryEntry
	if favorite {
		favs, err := store.ListFavorites()
		if err != nil {
			return storage.HistoryEntry{}, err
		}
		for _, f := range favs {
			candidates = append(candidates, f.HistoryEntry)
		}
	} else {
		entries, err := store.ListHistory()
		if err != nil {
			return storage.HistoryEntry{}, err
		}
		candidates = entries
	}

	var matches []storage.HistoryEntry
	for _, e := range candidates {
		if e.ID == ref {
			return e, nil
		}
		if strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return storage.HistoryEntry{}, fmt.Errorf("%w: %s", storage.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return storage.HistoryEntry{}, fmt.Errorf("id prefix %q is ambiguous (%d matches)", ref, len(matches))
}

// resolveAny looks in the history first, then in the favorites.
func resolveAny(store *storage.Store, ref string) (storage.HistoryEntry, error) {
	e, err := resolve(store, ref, false)
	if errors.Is(err, storage.ErrNotFound) {
		return resolve(store, ref, true)
	}
	return e, err
}

func printEntries(entries []storage.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("Nothing recorded yet.")
		return
	}
	fmt.Printf("  %-8s  %-16s  %-7s  %8s  %5s  %5s  %s\n", "ID", "Played", "Variant", "Score", "Chain", "Drops", "Note")
	for _, e := range entries {
		note := e.Note
		for _, t := range e.Tags {
			note += " #" + t
		}
		fmt.Printf("  %-8s  %-16s  %-7s  %8d  %5d  %5d  %s\n",
			e.ID[:min(shortID, len(e.ID))], e.LastPlayedAt.Format("2006-01-02 15:04"), e.GameID,
			e.Score, e.MaxChain, e.DropCount, strings.TrimSpace(note))
	}
}
