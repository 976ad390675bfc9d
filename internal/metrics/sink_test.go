package metrics

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONLSinkAppendsOneLinePerWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.jsonl")
	sink, err := NewJSONLSink(path)
	if err != nil {
		t.Fatalf("NewJSONLSink: %v", err)
	}
	defer sink.Close()

	writes := []struct {
		split string
		step  int64
		loss  float64
	}{
		{"train", 1, 0.52},
		{"train", 2, 0.48},
		{"val", 1, 0.61},
	}
	for _, w := range writes {
		if err := sink.Write(w.split, w.step, map[string]any{"loss": w.loss}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var lines []map[string]any
	for scanner.Scan() {
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(lines)+1, err)
		}
		lines = append(lines, record)
	}

	if len(lines) != len(writes) {
		t.Fatalf("expected %d lines, got %d", len(writes), len(lines))
	}
	for i, w := range writes {
		record := lines[i]
		if record["split"] != w.split {
			t.Errorf("line %d: expected split %q, got %v", i, w.split, record["split"])
		}
		if record["step"] != float64(w.step) {
			t.Errorf("line %d: expected step %d, got %v", i, w.step, record["step"])
		}
		if record["loss"] != w.loss {
			t.Errorf("line %d: expected loss %v, got %v", i, w.loss, record["loss"])
		}
	}
}

func TestSlogSinkEmitsSplitAndStep(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewSlogSink(logger)

	if err := sink.Write("val", 7, map[string]any{"loss": 0.3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"split":"val"`, `"step":7`, `"loss":0.3`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
