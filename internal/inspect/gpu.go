package inspect

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const mib = 1024 * 1024

// GPUCollector shells out to nvidia-smi. When the binary is absent (CPU
// host, macOS laptop) it degrades to an empty GPU list.
type GPUCollector struct {
	run func() ([]byte, error)
}

func NewGPUCollector() *GPUCollector {
	return &GPUCollector{run: runNvidiaSMI}
}

func (c *GPUCollector) Name() string {
	return "gpu"
}

func (c *GPUCollector) Collect() (any, error) {
	out, err := c.run()
	if err != nil {
		return []GPUState{}, nil
	}
	return parseNvidiaSMI(string(out))
}

func runNvidiaSMI() ([]byte, error) {
	return exec.Command(
		"nvidia-smi",
		"--query-gpu=index,name,utilization.gpu,memory.used,memory.total",
		"--format=csv,noheader,nounits",
	).Output()
}

// parseNvidiaSMI reads the CSV emitted with csv,noheader,nounits: one GPU
// per line, memory in MiB.
func parseNvidiaSMI(out string) ([]GPUState, error) {
	gpus := []GPUState{}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected nvidia-smi line: %q", line)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		index, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("bad gpu index %q: %w", fields[0], err)
		}
		usage, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad gpu utilization %q: %w", fields[2], err)
		}
		usedMiB, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad gpu memory.used %q: %w", fields[3], err)
		}
		totalMiB, err := strconv.ParseUint(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad gpu memory.total %q: %w", fields[4], err)
		}

		gpus = append(gpus, GPUState{
			Index:          index,
			Name:           fields[1],
			UsagePercent:   usage,
			VRAMUsedBytes:  usedMiB * mib,
			VRAMTotalBytes: totalMiB * mib,
		})
	}

	return gpus, nil
}
