package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puyo/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all game variants",
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	idWidth, titleWidth := 2, 5
	for _, g := range games {
		idWidth = max(idWidth, len(g.ID))
		titleWidth = max(titleWidth, len(g.Title))
	}

	fmt.Println("Available variants:")
	fmt.Println()
	fmt.Printf("  %-*s  %-*s  %s\n", idWidth, "ID", titleWidth, "Title", "Description")
	fmt.Printf("  %-*s  %-*s  %s\n", idWidth, "--", titleWidth, "-----", "-----------")
	for _, g := range games {
		fmt.Printf("  %-*s  %-*s  %s\n", idWidth, g.ID, titleWidth, g.Title, g.Description)
	}
	fmt.Println()
	fmt.Println("Run 'puyo play <id>' to play a variant.")
}
