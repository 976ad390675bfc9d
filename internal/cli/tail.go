package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/cli/tui"
)

var (
	tailInterval int
	tailRows     int
)

var tailCmd = &cobra.Command{
	Use:   "tail [metrics-file]",
	Short: "Live view of a metrics JSONL file",
	Long: `Open a terminal dashboard over an append-only metrics file written by
the jsonl sink. Defaults to the configured metrics.jsonl_path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().IntVar(&tailInterval, "interval", 2, "refresh interval in seconds")
	tailCmd.Flags().IntVar(&tailRows, "rows", 10, "recent snapshots to show")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	path := cfg.Metrics.JSONLPath
	if len(args) > 0 {
		path = args[0]
	}

	return tui.Run(tui.Config{
		Path:            path,
		RefreshInterval: time.Duration(tailInterval) * time.Second,
		MaxRows:         tailRows,
	})
}
