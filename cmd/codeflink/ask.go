package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/codeflink/internal/history"
	"github.com/codefionn/codeflink/internal/llm"
)

var (
	askStrategy string
	askProvider string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a question without tool access",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askStrategy, "strategy", "s", "simple", "provider strategy (simple, complex, code_generation)")
	askCmd.Flags().StringVarP(&askProvider, "provider", "p", "", "try this provider first")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	manager := newManager()

	resp, err := manager.Generate(cmd.Context(), prompt, "", &llm.GenerateOptions{
		Strategy:          askStrategy,
		PreferredProvider: askProvider,
		SkipCache:         flagNoCache,
	})
	if err != nil {
		var provErr *llm.Error
		if errors.As(err, &provErr) && provErr.Kind == llm.ErrAllFailed {
			color.Red("No provider could answer:")
			fmt.Fprintln(cmd.OutOrStdout(), provErr.Message)
			return errors.New("all providers failed")
		}
		return err
	}

	if store := openHistory(); store != nil {
		defer store.Close()
		_ = store.RecordGeneration(&history.Generation{
			Prompt:     prompt,
			Response:   resp.Content,
			Provider:   resp.Provider,
			Model:      resp.Model,
			Strategy:   askStrategy,
			TokensUsed: resp.TokensUsed,
			FromCache:  resp.Provider == "cache",
		})
	}

	color.Cyan("[%s]", resp.Provider)
	fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return nil
}
