package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/codeflink/internal/consts"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generations and commands",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", consts.MaxHistoryEntries, "maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store := openHistory()
	if store == nil {
		return errors.New("history is not configured")
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	generations, err := store.RecentGenerations(historyLimit)
	if err != nil {
		return err
	}
	color.Cyan("Generations (%d):", len(generations))
	for _, g := range generations {
		marker := g.Provider
		if g.FromCache {
			marker = "cache"
		}
		fmt.Fprintf(out, "  %s [%s] %.60s\n", g.CreatedAt.Format("2006-01-02 15:04"), marker, g.Prompt)
	}

	commands, err := store.RecentCommands(historyLimit)
	if err != nil {
		return err
	}
	color.Cyan("\nCommands (%d):", len(commands))
	for _, c := range commands {
		if c.Blocked {
			fmt.Fprintf(out, "  %s blocked: %.60s (%s)\n", c.CreatedAt.Format("2006-01-02 15:04"), c.Command, c.Reason)
		} else {
			fmt.Fprintf(out, "  %s exit %d: %.60s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.ExitCode, c.Command)
		}
	}
	return nil
}
