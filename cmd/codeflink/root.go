package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codefionn/codeflink/internal/config"
	"github.com/codefionn/codeflink/internal/history"
	"github.com/codefionn/codeflink/internal/llm"
	"github.com/codefionn/codeflink/internal/logger"
	"github.com/codefionn/codeflink/internal/safety"
	"github.com/codefionn/codeflink/internal/securemem"
	"github.com/codefionn/codeflink/internal/tools"
)

var (
	flagConfig  string
	flagWorkDir string
	flagVerbose bool
	flagNoCache bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "codeflink",
	Short: "LLM-backed coding assistant with provider fallback",
	Long: `codeflink is a coding assistant for the terminal. It routes prompts
across local (Ollama) and cloud (Groq, Together) models with ordered
fallback, caches responses, and can inspect and modify the project
through safety-checked tools.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Global().Close()
		securemem.Purge()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default: user config dir)")
	rootCmd.PersistentFlags().StringVarP(&flagWorkDir, "workdir", "w", "", "project directory (default: config working_dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "bypass the response cache")
}

func setup(cmd *cobra.Command, args []string) error {
	path := flagConfig
	if path == "" {
		path = config.GetConfigPath()
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if flagWorkDir != "" {
		cfg.WorkingDir = flagWorkDir
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	if err := logger.Init(logger.ParseLevel(level), cfg.LogPath); err != nil {
		// Logging is best effort; the CLI stays usable without it.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
	}

	return nil
}

func newManager() *llm.Manager {
	return llm.NewManager(cfg)
}

func newExecutor() (*tools.Executor, error) {
	checker, err := safety.NewChecker(cfg.WorkingDir)
	if err != nil {
		return nil, err
	}
	return tools.NewExecutor(tools.NewRegistry(checker)), nil
}

func openHistory() *history.Store {
	if cfg.HistoryPath == "" {
		return nil
	}
	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		logger.Warn("history disabled: %v", err)
		return nil
	}
	return store
}
