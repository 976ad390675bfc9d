package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/inspect"
)

var slurmFlag bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Snapshot local host resources",
	Long: `Collect CPU, memory, storage and GPU state for this host.

With --slurm, query the cluster for idle GPU nodes instead (requires
sinfo on PATH).`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&slurmFlag, "slurm", false, "summarize idle GPU nodes via sinfo")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if slurmFlag {
		return runInspectSlurm()
	}

	cfg := loadConfig()
	log := newLogger(cfg)

	inspector := inspect.NewInspector(cfg.Inspect.Paths, log)
	state := inspector.Snapshot()

	if jsonOut {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("=== Host Snapshot ===")

	fmt.Printf("\nCPU:\n")
	fmt.Printf("  Usage: %.1f%% (%d logical cores)\n", state.CPU.UsagePercent, state.CPU.LogicalCount)

	fmt.Printf("\nMemory:\n")
	fmt.Printf("  Usage: %.1f%%\n", state.Memory.UsagePercent)
	fmt.Printf("  Used:  %.1f / %.1f GB\n",
		gb(state.Memory.UsedBytes), gb(state.Memory.TotalBytes))

	if len(state.Storage) > 0 {
		fmt.Printf("\nStorage:\n")
		for path, disk := range state.Storage {
			fmt.Printf("  %s: %.1f GB free / %.1f GB total\n",
				path, gb(disk.TotalBytes-disk.UsedBytes), gb(disk.TotalBytes))
		}
	}

	if len(state.GPUs) > 0 {
		fmt.Printf("\nGPU:\n")
		for _, gpu := range state.GPUs {
			fmt.Printf("  GPU %d (%s): %.1f%% usage, VRAM: %.1f / %.1f GB\n",
				gpu.Index, gpu.Name, gpu.UsagePercent,
				gb(gpu.VRAMUsedBytes), gb(gpu.VRAMTotalBytes))
		}
	}

	return nil
}

func runInspectSlurm() error {
	idle, err := inspect.CollectSlurmIdleGPUs()
	if err != nil {
		return fmt.Errorf("failed to inspect cluster: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(idle, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("=== Idle GPU Nodes ===")

	if len(idle.ByNodeType) == 0 {
		fmt.Println("No idle GPU nodes.")
		return nil
	}

	fmt.Printf("\nBy node type:\n")
	for _, nt := range idle.ByNodeType {
		fmt.Printf("  %-12s %3d  (partitions: %s)\n",
			nt.NodeType, nt.Count, strings.Join(nt.Partitions, ", "))
	}

	fmt.Printf("\nBy partition:\n")
	for _, p := range idle.ByPartition {
		fmt.Printf("  %-12s %3d  (node types: %s)\n",
			p.Partition, p.Count, strings.Join(p.NodeTypes, ", "))
	}

	return nil
}

func gb(n uint64) float64 {
	return float64(n) / 1024 / 1024 / 1024
}
