package cli

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/lolopal/internal/config"
	"github.com/pfrederiksen/lolopal/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess        = 0
	ExitError          = 1
	ExitChangesPending = 2
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lolopal",
		Short: "Scrape today's match predictions and commit changes",
		Long: `lolopal wraps the daily match-predictions scrape: it runs the scraper,
compares the resulting snapshot against the last committed state, and
publishes a commit only when the data actually changed.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lolopal version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lolopal %s\n", version)
		},
	}
}

// loadConfig loads configuration and applies the verbose flag to the
// default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
