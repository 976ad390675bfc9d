package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/runstore"
)

var (
	runSeed       int64
	runConfigPath string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List registered runs",
	Long:  `Show the run registry, newest first, with per-split step counters.`,
	RunE:  runRunsList,
}

var runsNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Register a new run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsNew,
}

func init() {
	runsNewCmd.Flags().Int64Var(&runSeed, "seed", 0, "run seed")
	runsNewCmd.Flags().StringVar(&runConfigPath, "run-config", "", "path of the run's config file")
	runsCmd.AddCommand(runsNewCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*runstore.Store, error) {
	cfg := loadConfig()
	log := newLogger(cfg)

	store := runstore.New(cfg.Store.DataDir, time.Duration(cfg.Store.FlushIntervalSec)*time.Second, log)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load run registry: %w", err)
	}
	return store, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	runs := store.List()

	if jsonOut {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs registered.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-19s  %s\n", "ID", "NAME", "STARTED", "STEPS")
	for _, run := range runs {
		steps := formatSteps(run.Steps)
		fmt.Printf("%-36s  %-20s  %-19s  %s\n",
			run.ID, run.Name, run.StartedAt.Format("2006-01-02 15:04:05"), steps)
	}

	return nil
}

func runRunsNew(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	run := store.Create(args[0], runSeed, runConfigPath)
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save run registry: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Registered run %s (%s)\n", run.Name, run.ID)
	return nil
}

func formatSteps(steps map[string]int64) string {
	if len(steps) == 0 {
		return "-"
	}

	out := ""
	for _, split := range sortedSplits(steps) {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", split, steps[split])
	}
	return out
}

func sortedSplits(steps map[string]int64) []string {
	splits := make([]string, 0, len(steps))
	for split := range steps {
		splits = append(splits, split)
	}
	sort.Strings(splits)
	return splits
}
