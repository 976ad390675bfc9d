package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/config"
	"github.com/dkessler/runlab/internal/logger"
)

var (
	// Global flags
	cfgFile string
	jsonOut bool
	verbose bool

	// Version info (set from main)
	Version = "0.1.0"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "runlab",
	Short: "Utilities for ML research runs",
	Long: `Runlab bundles the small utilities a training run needs around it:
metric aggregation with pluggable sinks, deterministic seeding, config
schema checks, host and cluster inspection, and S3 artifact fetching.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// loadConfig resolves the effective config for a command invocation.
func loadConfig() *config.Config {
	return config.LoadOrDefault(cfgFile)
}

// newLogger builds the command logger, honoring --verbose over the
// configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logger.NewWithWriter(os.Stderr, level, cfg.Logging.Format)
}
