package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/fileio"
	"github.com/dkessler/runlab/internal/runstore"
	"github.com/dkessler/runlab/internal/track"
)

var (
	trackRunID    string
	trackLogEvery int
)

var trackCmd = &cobra.Command{
	Use:   "track <observations-file>",
	Short: "Replay raw observations through the metrics aggregator",
	Long: `Read per-batch observation records and run them through the aggregator
described by the config's metrics section, writing aggregated snapshots
to the configured sinks.

The input is JSONL, one record per batch:
  {"split": "train", "n": 32, "values": {"loss": 0.41}}

With --log-every N, each split is aggregated and reset after N of its
records; otherwise every split is aggregated once over the whole file.
When the runstore sink is configured, --run names the registry entry
whose steps are updated.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackRunID, "run", "", "run ID for the runstore sink")
	trackCmd.Flags().IntVar(&trackLogEvery, "log-every", 0, "snapshot each split every N records")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger(cfg)

	var obs []track.Observation
	if err := fileio.Load(args[0], &obs); err != nil {
		return fmt.Errorf("failed to load observations: %w", err)
	}

	deps := track.Deps{Logger: log}

	var store *runstore.Store
	if slices.Contains(cfg.Metrics.Sinks, "runstore") {
		var err error
		store, err = openStore()
		if err != nil {
			return err
		}
		if trackRunID != "" && store.Get(trackRunID) == nil {
			return fmt.Errorf("unknown run %q", trackRunID)
		}
		deps.Store = store
		deps.RunID = trackRunID
	}

	agg, closeSinks, err := track.NewAggregator(cfg.Metrics, deps)
	if err != nil {
		return fmt.Errorf("failed to build aggregator: %w", err)
	}

	if err := track.Replay(agg, obs, trackLogEvery); err != nil {
		closeSinks()
		return err
	}

	if err := closeSinks(); err != nil {
		return fmt.Errorf("failed to flush sinks: %w", err)
	}

	if store != nil {
		if err := store.Save(); err != nil {
			return fmt.Errorf("failed to save run registry: %w", err)
		}
	}

	fmt.Printf("Replayed %d observations\n", len(obs))
	return nil
}
