// Command relkit automates the release process: it bumps the __version__
// marker, categorizes merged pull requests into release notes, opens the
// version-bump pull request, and keeps a local history of what shipped.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"relkit/internal/config"
	"relkit/internal/logging"
)

var (
	// Global flags
	verbose  bool
	repoRoot string

	// Logger
	logger *zap.Logger

	// Loaded per-invocation in PersistentPreRunE.
	cfg *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "relkit",
	Short: "relkit - release automation toolkit",
	Long: `relkit owns the release pipeline for projects that track their version
in a __version__ marker file:

  __version__: v<major>.<minor>.<patch>[-<suffix>]

It bumps the marker, groups merged pull requests into changelog categories
by label, renders release notes, opens the version-bump pull request, and
records every release in a local history database.

Run without arguments to start the interactive release wizard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if repoRoot == "" {
			repoRoot, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}
		}

		cfg, err = config.LoadFromRepo(repoRoot)
		if err != nil {
			return err
		}

		if err := logging.Initialize(repoRoot, logging.Options{
			DebugMode:  cfg.Logging.DebugMode || verbose,
			Categories: toCategoryMap(cfg.Logging.Categories),
		}); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd.Context())
	},
}

func toCategoryMap(m map[string]bool) map[string]bool {
	if len(m) == 0 {
		return nil
	}
	return m
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&repoRoot, "repo-root", "", "repository root (default: current directory)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
