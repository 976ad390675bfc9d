package metrics

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// Sink consumes aggregated metric snapshots. Writes are synchronous; no
// retry or backpressure is applied here.
type Sink interface {
	Name() string
	Write(split string, step int64, values map[string]any) error
}

// SlogSink forwards snapshots to a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Name() string {
	return "slog"
}

func (s *SlogSink) Write(split string, step int64, values map[string]any) error {
	args := []any{
		slog.String("split", split),
		slog.Int64("step", step),
	}
	for key, val := range values {
		args = append(args, slog.Any(key, val))
	}
	s.logger.Info("metrics", args...)
	return nil
}

// JSONLSink appends one JSON object per Write to a file. Each line is
// {"split": ..., "step": ..., <key>: <value>, ...}.
type JSONLSink struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func NewJSONLSink(path string) (*JSONLSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &JSONLSink{path: path, file: file}, nil
}

func (s *JSONLSink) Name() string {
	return "jsonl"
}

func (s *JSONLSink) Write(split string, step int64, values map[string]any) error {
	record := make(map[string]any, len(values)+2)
	for key, val := range values {
		record[key] = val
	}
	record["split"] = split
	record["step"] = step

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(data, '\n'))
	return err
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
