package inspect

import (
	"errors"
	"testing"
)

func TestParseNvidiaSMI(t *testing.T) {
	out := `0, NVIDIA A100-SXM4-80GB, 96, 71424, 81920
1, NVIDIA A100-SXM4-80GB, 0, 3, 81920
`
	gpus, err := parseNvidiaSMI(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(gpus) != 2 {
		t.Fatalf("expected 2 gpus, got %d", len(gpus))
	}

	first := gpus[0]
	if first.Index != 0 || first.Name != "NVIDIA A100-SXM4-80GB" {
		t.Errorf("unexpected first gpu: %+v", first)
	}
	if first.UsagePercent != 96.0 {
		t.Errorf("expected 96%% utilization, got %f", first.UsagePercent)
	}
	if first.VRAMTotalBytes != 81920*mib {
		t.Errorf("expected MiB converted to bytes, got %d", first.VRAMTotalBytes)
	}
}

func TestParseNvidiaSMIMalformed(t *testing.T) {
	for _, out := range []string{
		"0, A100, 96",
		"zero, A100, 96, 1, 2",
		"0, A100, fast, 1, 2",
	} {
		if _, err := parseNvidiaSMI(out); err == nil {
			t.Errorf("expected parse error for %q", out)
		}
	}
}

func TestGPUCollectorDegradesWithoutBinary(t *testing.T) {
	c := &GPUCollector{run: func() ([]byte, error) {
		return nil, errors.New("executable file not found")
	}}

	data, err := c.Collect()
	if err != nil {
		t.Fatalf("collect should not fail: %v", err)
	}
	gpus, ok := data.([]GPUState)
	if !ok || len(gpus) != 0 {
		t.Errorf("expected empty gpu list, got %v", data)
	}
}
