package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured providers, availability and rate limit usage",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	manager := newManager()
	statuses := manager.Status(cmd.Context())

	if len(statuses) == 0 {
		color.Yellow("no providers configured")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, s := range statuses {
		if s.Available {
			color.Green("● %s", s.Name)
		} else {
			color.Red("○ %s", s.Name)
		}
		fmt.Fprintf(out, "  model: %s\n", s.Model)
		if s.RateLimit.HasLimit {
			if s.RateLimit.RPMLimit > 0 {
				fmt.Fprintf(out, "  rate limit: %d/%d rpm, %d/%d rpd\n",
					s.RateLimit.RPMUsed, s.RateLimit.RPMLimit,
					s.RateLimit.RPDUsed, s.RateLimit.RPDLimit)
			} else {
				fmt.Fprintln(out, "  rate limit: enforced server-side")
			}
		} else {
			fmt.Fprintln(out, "  rate limit: none")
		}
	}

	fmt.Fprintln(out, "\nStrategies:")
	for name, chain := range manager.Strategies() {
		fmt.Fprintf(out, "  %s: %v\n", name, chain)
	}

	stats := manager.Cache().Stats()
	fmt.Fprintf(out, "\nCache: %d/%d entries, TTL %s\n", stats.Size, stats.MaxSize, stats.TTL)
	return nil
}
