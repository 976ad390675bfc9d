package track

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dkessler/runlab/internal/config"
	"github.com/dkessler/runlab/internal/metrics"
	"github.com/dkessler/runlab/internal/runstore"
)

// Deps carries the externally owned pieces the configured sinks need.
// Store and RunID are only required when the runstore sink is configured.
type Deps struct {
	Logger *slog.Logger
	Store  *runstore.Store
	RunID  string
}

// NewAggregator builds the aggregator a config describes: strategy
// bindings from metrics.keys and one sink per entry in metrics.sinks.
// The returned close function flushes file-backed sinks and must be
// called once logging is done.
func NewAggregator(cfg config.MetricsConfig, deps Deps) (*metrics.Aggregator, func() error, error) {
	var sinks []metrics.Sink
	var closers []func() error

	for _, name := range cfg.Sinks {
		switch name {
		case "slog":
			if deps.Logger == nil {
				return nil, nil, errors.New("slog sink requires a logger")
			}
			sinks = append(sinks, metrics.NewSlogSink(deps.Logger))
		case "jsonl":
			sink, err := metrics.NewJSONLSink(cfg.JSONLPath)
			if err != nil {
				return nil, nil, fmt.Errorf("jsonl sink: %w", err)
			}
			sinks = append(sinks, sink)
			closers = append(closers, sink.Close)
		case "runstore":
			if deps.Store == nil || deps.RunID == "" {
				return nil, nil, errors.New("runstore sink requires a registered run")
			}
			sinks = append(sinks, runstore.NewStepSink(deps.Store, deps.RunID))
		default:
			return nil, nil, fmt.Errorf("unknown sink %q", name)
		}
	}

	agg, err := metrics.New(cfg.Keys, sinks...)
	if err != nil {
		return nil, nil, err
	}

	closeAll := func() error {
		var errs []error
		for _, closeSink := range closers {
			if err := closeSink(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return agg, closeAll, nil
}

// Observation is one raw per-batch record replayed into the aggregator.
type Observation struct {
	Split  string         `json:"split"`
	N      int            `json:"n"`
	Values map[string]any `json:"values"`
}

// Replay feeds observations through the aggregator in order. When
// logEvery is positive, every split is logged and reset after that many
// of its observations; any remainder, or everything when logEvery is
// zero, is logged once at the end.
func Replay(agg *metrics.Aggregator, obs []Observation, logEvery int) error {
	counts := make(map[string]int)
	var splits []string

	for i, o := range obs {
		if err := agg.Record(o.Split, o.Values, o.N); err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}

		if counts[o.Split] == 0 {
			splits = append(splits, o.Split)
		}
		counts[o.Split]++

		if logEvery > 0 && counts[o.Split]%logEvery == 0 {
			if _, err := agg.Log(o.Split); err != nil {
				return fmt.Errorf("split %q: %w", o.Split, err)
			}
			agg.Reset(o.Split)
		}
	}

	for _, split := range splits {
		if logEvery > 0 && counts[split]%logEvery == 0 {
			continue
		}
		if _, err := agg.Log(split); err != nil {
			return fmt.Errorf("split %q: %w", split, err)
		}
	}

	return nil
}
