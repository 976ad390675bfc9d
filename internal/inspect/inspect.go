// Package inspect takes one-shot snapshots of the machine a run is about
// to use: CPU, memory, disk, GPUs, and idle Slurm GPU nodes when run on a
// cluster login host.
package inspect

import (
	"log/slog"
	"time"
)

type Collector interface {
	Name() string
	Collect() (any, error)
}

type CPUState struct {
	UsagePercent float64   `json:"usage_percent"`
	Cores        []float64 `json:"cores"`
	LogicalCount int       `json:"logical_count"`
}

type MemoryState struct {
	UsedBytes    uint64  `json:"used_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

type DiskState struct {
	UsedBytes    uint64  `json:"used_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

type StorageState map[string]DiskState

type GPUState struct {
	Index          int     `json:"index"`
	Name           string  `json:"name"`
	UsagePercent   float64 `json:"usage_percent"`
	VRAMUsedBytes  uint64  `json:"vram_used_bytes"`
	VRAMTotalBytes uint64  `json:"vram_total_bytes"`
}

type HostState struct {
	CPU       CPUState     `json:"cpu"`
	Memory    MemoryState  `json:"memory"`
	Storage   StorageState `json:"storage"`
	GPUs      []GPUState   `json:"gpus"`
	Timestamp time.Time    `json:"timestamp"`
}

// Inspector aggregates one-shot collectors into a HostState. Collectors
// that fail are logged and skipped so a missing GPU stack never blocks a
// CPU-only snapshot.
type Inspector struct {
	collectors []Collector
	logger     *slog.Logger
}

func NewInspector(paths []string, logger *slog.Logger) *Inspector {
	return &Inspector{
		collectors: []Collector{
			NewCPUCollector(),
			NewMemoryCollector(),
			NewStorageCollector(paths),
			NewGPUCollector(),
		},
		logger: logger,
	}
}

func (i *Inspector) Snapshot() *HostState {
	state := &HostState{
		Timestamp: time.Now(),
		GPUs:      []GPUState{},
		Storage:   make(StorageState),
	}

	for _, c := range i.collectors {
		data, err := c.Collect()
		if err != nil {
			i.logger.Warn("collector failed",
				"collector", c.Name(),
				"error", err,
			)
			continue
		}

		switch c.Name() {
		case "cpu":
			if cpuState, ok := data.(*CPUState); ok {
				state.CPU = *cpuState
			}
		case "memory":
			if memState, ok := data.(*MemoryState); ok {
				state.Memory = *memState
			}
		case "storage":
			if storageState, ok := data.(StorageState); ok {
				state.Storage = storageState
			}
		case "gpu":
			if gpuStates, ok := data.([]GPUState); ok {
				state.GPUs = gpuStates
			}
		}
	}

	return state
}
