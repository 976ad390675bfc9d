package inspect

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

type CPUCollector struct{}

func NewCPUCollector() *CPUCollector {
	return &CPUCollector{}
}

func (c *CPUCollector) Name() string {
	return "cpu"
}

func (c *CPUCollector) Collect() (any, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return nil, err
	}

	var overall float64
	if len(percentages) > 0 {
		overall = percentages[0]
	}

	corePercentages, err := cpu.Percent(0, true)
	if err != nil {
		return nil, err
	}

	logical, err := cpu.Counts(true)
	if err != nil {
		logical = len(corePercentages)
	}

	return &CPUState{
		UsagePercent: overall,
		Cores:        corePercentages,
		LogicalCount: logical,
	}, nil
}

type MemoryCollector struct{}

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

func (c *MemoryCollector) Name() string {
	return "memory"
}

func (c *MemoryCollector) Collect() (any, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}

	return &MemoryState{
		UsedBytes:    v.Used,
		TotalBytes:   v.Total,
		UsagePercent: v.UsedPercent,
	}, nil
}

type StorageCollector struct {
	paths []string
}

func NewStorageCollector(paths []string) *StorageCollector {
	if len(paths) == 0 {
		paths = []string{"/"}
	}
	return &StorageCollector{paths: paths}
}

func (c *StorageCollector) Name() string {
	return "storage"
}

func (c *StorageCollector) Collect() (any, error) {
	state := make(StorageState)

	for _, path := range c.paths {
		usage, err := disk.Usage(path)
		if err != nil {
			// Skip paths that are not accessible
			continue
		}

		state[path] = DiskState{
			UsedBytes:    usage.Used,
			TotalBytes:   usage.Total,
			UsagePercent: usage.UsedPercent,
		}
	}

	return state, nil
}
