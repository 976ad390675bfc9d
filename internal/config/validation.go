package config

import (
	"errors"
	"fmt"
)

// Strategy names accepted for metric keys; the set mirrors the aggregator
// and existing run configs depend on these exact spellings.
var validStrategies = map[string]bool{
	"list":                    true,
	"batch_weighted_avg_list": true,
	"sum":                     true,
	"last":                    true,
}

var validSinks = map[string]bool{
	"slog":     true,
	"jsonl":    true,
	"runstore": true,
}

func (c *Config) Validate() error {
	var errs []error

	if err := c.Run.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("run: %w", err))
	}

	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}

	if err := c.Notes.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notes: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (r *RunConfig) Validate() error {
	if r.Name == "" {
		return errors.New("name must not be empty")
	}
	if r.ValRatio < 0 || r.ValRatio > 1 {
		return fmt.Errorf("val_ratio must be between 0 and 1, got %v", r.ValRatio)
	}
	return nil
}

func (m *MetricsConfig) Validate() error {
	var errs []error

	for key, strategy := range m.Keys {
		if !validStrategies[strategy] {
			errs = append(errs, fmt.Errorf("key %q has unknown strategy %q", key, strategy))
		}
	}

	for _, sink := range m.Sinks {
		if !validSinks[sink] {
			errs = append(errs, fmt.Errorf("unknown sink %q", sink))
		}
		if sink == "jsonl" && m.JSONLPath == "" {
			errs = append(errs, errors.New("jsonl sink requires jsonl_path"))
		}
	}

	return errors.Join(errs...)
}

func (s *StoreConfig) Validate() error {
	if s.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if s.FlushIntervalSec < 1 {
		return fmt.Errorf("flush_interval_sec must be at least 1, got %d", s.FlushIntervalSec)
	}
	return nil
}

func (n *NotesConfig) Validate() error {
	// The notes section is optional, but a graph without a token cannot
	// authenticate.
	if n.Graph != "" && n.Token == "" {
		return errors.New("graph is set but token is empty")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", l.Level)
	}

	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", l.Format)
	}

	return nil
}
