package metrics

import (
	"errors"
	"fmt"
	"sort"
)

// BatchKey is the reserved key under which sample counts are tracked when
// it is declared with the list strategy.
const BatchKey = "batch_size"

// Aggregator accumulates labeled observations per split and per key, using
// the strategy declared for each key at construction time.
//
// The usage model is single-threaded: one training loop records, aggregates
// and resets on one goroutine. Callers embedding the aggregator in a
// multi-worker setup must either keep one instance per worker or serialize
// access externally.
type Aggregator struct {
	strategies map[string]Strategy
	sinks      []Sink
	splits     map[string]*splitState
}

// splitState holds the accumulators and step counter for one split name.
// Created lazily on first Record for that split.
type splitState struct {
	accs map[string]*accumulator
	step int64
}

type accumulator struct {
	strategy Strategy

	list        []any
	weightedSum float64
	totalWeight int64
	sum         float64
	last        any

	observed bool
}

// New builds an Aggregator from a key -> strategy-name map and an optional
// list of sinks. An unrecognized strategy name is a configuration error.
func New(keys map[string]string, sinks ...Sink) (*Aggregator, error) {
	strategies := make(map[string]Strategy, len(keys))
	for key, name := range keys {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", key, err)
		}
		strategies[key] = s
	}

	return &Aggregator{
		strategies: strategies,
		sinks:      sinks,
		splits:     make(map[string]*splitState),
	}, nil
}

// Keys returns the declared metric keys in sorted order.
func (a *Aggregator) Keys() []string {
	keys := make([]string, 0, len(a.strategies))
	for k := range a.strategies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record accumulates one observation: a mapping of declared keys to values,
// weighted by sample count n. Undeclared keys and non-positive n fail
// before any accumulator is touched, so a failed Record leaves all state
// unchanged. If BatchKey is declared with the list strategy, n is appended
// to it as well.
func (a *Aggregator) Record(split string, values map[string]any, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveCount, n)
	}
	for key := range values {
		if _, ok := a.strategies[key]; !ok {
			return &UnknownKeyError{Key: key}
		}
	}
	// Numeric strategies must be able to coerce their values; check before
	// mutating so partial updates never happen.
	for key, val := range values {
		switch a.strategies[key] {
		case StrategySum, StrategyBatchWeightedAvg:
			if _, err := toFloat(val); err != nil {
				return fmt.Errorf("metric %q: %w", key, err)
			}
		}
	}

	state := a.split(split)
	for key, val := range values {
		state.acc(key, a.strategies[key]).add(val, n)
	}
	if s, ok := a.strategies[BatchKey]; ok && s == StrategyList {
		if _, tracked := values[BatchKey]; !tracked {
			state.acc(BatchKey, s).add(n, n)
		}
	}

	return nil
}

// Aggregate returns the current aggregated value for every key observed in
// the split since the last reset. Keys never observed are omitted, as is a
// weighted average whose total weight is zero. Aggregate does not mutate
// state: consecutive calls without an intervening Record return the same
// mapping.
func (a *Aggregator) Aggregate(split string) map[string]any {
	out := make(map[string]any)
	state, ok := a.splits[split]
	if !ok {
		return out
	}

	for key, acc := range state.accs {
		if !acc.observed {
			continue
		}
		if val, ok := acc.aggregate(); ok {
			out[key] = val
		}
	}
	return out
}

// Log aggregates the split, advances its step counter and writes the
// snapshot to every configured sink. All sinks are attempted even when an
// earlier one fails; failures are joined and each wrapped in a
// SinkWriteError naming the sink. Accumulator state is never affected by
// sink failures, so the caller may retry or keep training.
func (a *Aggregator) Log(split string) (map[string]any, error) {
	agg := a.Aggregate(split)
	state := a.split(split)
	state.step++

	var errs []error
	for _, sink := range a.sinks {
		if err := sink.Write(split, state.step, agg); err != nil {
			errs = append(errs, &SinkWriteError{Sink: sink.Name(), Err: err})
		}
	}

	return agg, errors.Join(errs...)
}

// Step returns the number of Log calls issued for the split.
func (a *Aggregator) Step(split string) int64 {
	if state, ok := a.splits[split]; ok {
		return state.step
	}
	return 0
}

// Reset clears all accumulators for the split, leaving key bindings, other
// splits and the split's step counter intact. Typically called at epoch
// boundaries.
func (a *Aggregator) Reset(split string) {
	if state, ok := a.splits[split]; ok {
		state.accs = make(map[string]*accumulator)
	}
}

func (a *Aggregator) split(name string) *splitState {
	state, ok := a.splits[name]
	if !ok {
		state = &splitState{accs: make(map[string]*accumulator)}
		a.splits[name] = state
	}
	return state
}

func (s *splitState) acc(key string, strategy Strategy) *accumulator {
	acc, ok := s.accs[key]
	if !ok {
		acc = &accumulator{strategy: strategy}
		s.accs[key] = acc
	}
	return acc
}

func (acc *accumulator) add(val any, n int) {
	switch acc.strategy {
	case StrategyList:
		acc.list = append(acc.list, val)
	case StrategyBatchWeightedAvg:
		f, _ := toFloat(val)
		acc.weightedSum += f * float64(n)
		acc.totalWeight += int64(n)
	case StrategySum:
		f, _ := toFloat(val)
		acc.sum += f
	case StrategyLast:
		acc.last = val
	}
	acc.observed = true
}

func (acc *accumulator) aggregate() (any, bool) {
	switch acc.strategy {
	case StrategyList:
		out := make([]any, len(acc.list))
		copy(out, acc.list)
		return out, true
	case StrategyBatchWeightedAvg:
		if acc.totalWeight == 0 {
			return nil, false
		}
		return acc.weightedSum / float64(acc.totalWeight), true
	case StrategySum:
		return acc.sum, true
	case StrategyLast:
		return acc.last, true
	default:
		return nil, false
	}
}

func toFloat(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, val)
	}
}
