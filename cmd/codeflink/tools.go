package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools available to the model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		executor, err := newExecutor()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), executor.Registry().Descriptions())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
