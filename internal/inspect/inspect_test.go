package inspect

import (
	"log/slog"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeCollector struct {
	name string
	data any
	err  error
}

func (c *fakeCollector) Name() string {
	return c.name
}

func (c *fakeCollector) Collect() (any, error) {
	return c.data, c.err
}

func TestSnapshotMergesCollectors(t *testing.T) {
	inspector := &Inspector{
		collectors: []Collector{
			&fakeCollector{
				name: "cpu",
				data: &CPUState{UsagePercent: 35.0, Cores: []float64{30.0, 40.0}, LogicalCount: 2},
			},
			&fakeCollector{
				name: "memory",
				data: &MemoryState{UsedBytes: 1024, TotalBytes: 4096, UsagePercent: 25.0},
			},
			&fakeCollector{
				name: "gpu",
				data: []GPUState{{Index: 0, Name: "A100", UsagePercent: 90.0}},
			},
		},
		logger: testLogger(),
	}

	state := inspector.Snapshot()

	if state.CPU.UsagePercent != 35.0 {
		t.Errorf("expected cpu 35.0, got %f", state.CPU.UsagePercent)
	}
	if state.Memory.UsagePercent != 25.0 {
		t.Errorf("expected memory 25.0, got %f", state.Memory.UsagePercent)
	}
	if len(state.GPUs) != 1 || state.GPUs[0].Name != "A100" {
		t.Errorf("expected one A100 gpu, got %v", state.GPUs)
	}
	if state.Timestamp.IsZero() {
		t.Errorf("expected timestamp to be set")
	}
}

func TestSnapshotSkipsFailingCollector(t *testing.T) {
	inspector := &Inspector{
		collectors: []Collector{
			&fakeCollector{name: "cpu", err: os.ErrPermission},
			&fakeCollector{
				name: "memory",
				data: &MemoryState{UsagePercent: 50.0},
			},
		},
		logger: testLogger(),
	}

	state := inspector.Snapshot()
	if state.Memory.UsagePercent != 50.0 {
		t.Errorf("healthy collector should still contribute")
	}
}

func TestStorageCollectorDefaultsToRoot(t *testing.T) {
	c := NewStorageCollector(nil)
	data, err := c.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if _, ok := data.(StorageState); !ok {
		t.Fatalf("expected StorageState, got %T", data)
	}
}
