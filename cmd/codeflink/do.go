package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/codeflink/internal/agent"
	"github.com/codefionn/codeflink/internal/logger"
	"github.com/codefionn/codeflink/internal/retrieval"
)

var (
	doStrategy string
	doSteps    int
)

var doCmd = &cobra.Command{
	Use:   "do <task>",
	Short: "Run a task with tool access (read, write, search, shell)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDo,
}

func init() {
	doCmd.Flags().StringVarP(&doStrategy, "strategy", "s", "code_generation", "provider strategy")
	doCmd.Flags().IntVar(&doSteps, "max-steps", 0, "maximum generate/execute rounds")
	rootCmd.AddCommand(doCmd)
}

func runDo(cmd *cobra.Command, args []string) error {
	task := strings.Join(args, " ")

	executor, err := newExecutor()
	if err != nil {
		return err
	}

	retriever, err := retrieval.NewFileRetriever(cfg.WorkingDir)
	if err != nil {
		logger.Warn("workspace retrieval disabled: %v", err)
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	opts := agent.Options{
		Strategy: doStrategy,
		MaxSteps: doSteps,
		Store:    store,
	}
	if retriever != nil {
		opts.Retriever = retriever
	}

	a := agent.New(newManager(), executor, opts)

	answer, err := a.Run(cmd.Context(), task)
	if err != nil {
		return err
	}

	color.Green("done")
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
