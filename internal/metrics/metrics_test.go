package metrics

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func testKeys() map[string]string {
	return map[string]string{
		"loss":    "batch_weighted_avg_list",
		"preds":   "list",
		"correct": "sum",
		"lr":      "last",
		BatchKey:  "list",
	}
}

func mustNew(t *testing.T, keys map[string]string, sinks ...Sink) *Aggregator {
	t.Helper()
	agg, err := New(keys, sinks...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return agg
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New(map[string]string{"loss": "average"})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestParseStrategyRoundTrip(t *testing.T) {
	for _, name := range StrategyNames() {
		s, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("ParseStrategy(%q): %v", name, err)
			continue
		}
		if s.String() != name {
			t.Errorf("round trip %q -> %q", name, s.String())
		}
	}
}

func TestBatchWeightedAverage(t *testing.T) {
	agg := mustNew(t, testKeys())

	if err := agg.Record("train", map[string]any{"loss": 0.6}, 4); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := agg.Record("train", map[string]any{"loss": 0.2}, 1); err != nil {
		t.Fatalf("record: %v", err)
	}

	got := agg.Aggregate("train")
	want := (0.6*4 + 0.2*1) / 5
	loss, ok := got["loss"].(float64)
	if !ok {
		t.Fatalf("expected float64 loss, got %T", got["loss"])
	}
	if math.Abs(loss-want) > 1e-12 {
		t.Errorf("expected loss %v, got %v", want, loss)
	}
}

func TestListRetainsCallOrder(t *testing.T) {
	agg := mustNew(t, testKeys())

	agg.Record("train", map[string]any{"preds": 0.6}, 1)
	agg.Record("train", map[string]any{"preds": 0.2}, 1)

	got := agg.Aggregate("train")
	want := []any{0.6, 0.2}
	if !reflect.DeepEqual(got["preds"], want) {
		t.Errorf("expected %v, got %v", want, got["preds"])
	}
}

func TestSumAndLast(t *testing.T) {
	agg := mustNew(t, testKeys())

	agg.Record("train", map[string]any{"correct": 3, "lr": 0.1}, 8)
	agg.Record("train", map[string]any{"correct": 5, "lr": 0.05}, 8)

	got := agg.Aggregate("train")
	if got["correct"] != 8.0 {
		t.Errorf("expected sum 8.0, got %v", got["correct"])
	}
	if got["lr"] != 0.05 {
		t.Errorf("expected last 0.05, got %v", got["lr"])
	}
}

func TestBatchKeyTracksSampleCounts(t *testing.T) {
	agg := mustNew(t, testKeys())

	agg.Record("train", map[string]any{"loss": 0.6}, 4)
	agg.Record("train", map[string]any{"loss": 0.2}, 1)

	got := agg.Aggregate("train")
	want := []any{4, 1}
	if !reflect.DeepEqual(got[BatchKey], want) {
		t.Errorf("expected %v, got %v", want, got[BatchKey])
	}
}

func TestAggregateIdempotent(t *testing.T) {
	agg := mustNew(t, testKeys())
	agg.Record("train", map[string]any{"loss": 0.5, "preds": 1}, 2)

	first := agg.Aggregate("train")
	second := agg.Aggregate("train")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive aggregates differ: %v vs %v", first, second)
	}
}

func TestUnobservedKeysOmitted(t *testing.T) {
	agg := mustNew(t, testKeys())
	agg.Record("train", map[string]any{"loss": 0.5}, 1)

	got := agg.Aggregate("train")
	if _, ok := got["correct"]; ok {
		t.Errorf("unobserved key should be omitted, got %v", got)
	}
	if _, ok := got["lr"]; ok {
		t.Errorf("unobserved key should be omitted, got %v", got)
	}
}

func TestRecordUndeclaredKey(t *testing.T) {
	agg := mustNew(t, testKeys())
	agg.Record("train", map[string]any{"loss": 0.5}, 2)
	before := agg.Aggregate("train")

	err := agg.Record("train", map[string]any{"loss": 0.9, "accuracy": 0.8}, 2)
	var unknownErr *UnknownKeyError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownKeyError, got %v", err)
	}
	if unknownErr.Key != "accuracy" {
		t.Errorf("expected key accuracy, got %q", unknownErr.Key)
	}

	// A failed record must leave existing accumulators unchanged.
	after := agg.Aggregate("train")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("failed record mutated state: %v vs %v", before, after)
	}
}

func TestRecordNonPositiveCount(t *testing.T) {
	agg := mustNew(t, testKeys())
	for _, n := range []int{0, -1} {
		err := agg.Record("train", map[string]any{"loss": 0.5}, n)
		if !errors.Is(err, ErrNonPositiveCount) {
			t.Errorf("n=%d: expected ErrNonPositiveCount, got %v", n, err)
		}
	}
}

func TestRecordNonNumericValue(t *testing.T) {
	agg := mustNew(t, testKeys())
	err := agg.Record("train", map[string]any{"loss": "high"}, 1)
	if !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
	if len(agg.Aggregate("train")) != 0 {
		t.Errorf("failed record mutated state")
	}
}

func TestResetScopedToSplit(t *testing.T) {
	agg := mustNew(t, testKeys())
	agg.Record("train", map[string]any{"loss": 0.5}, 2)
	agg.Record("val", map[string]any{"loss": 0.3}, 2)

	agg.Reset("train")

	if got := agg.Aggregate("train"); len(got) != 0 {
		t.Errorf("expected empty aggregate after reset, got %v", got)
	}
	if got := agg.Aggregate("val"); len(got) == 0 {
		t.Errorf("reset of train must not affect val")
	}
}

func TestSplitsIndependent(t *testing.T) {
	agg := mustNew(t, testKeys())
	agg.Record("train", map[string]any{"loss": 1.0}, 1)
	agg.Record("val", map[string]any{"loss": 3.0}, 1)

	train := agg.Aggregate("train")
	val := agg.Aggregate("val")
	if train["loss"] == val["loss"] {
		t.Errorf("splits should track independently: %v vs %v", train, val)
	}
}

type captureSink struct {
	name   string
	splits []string
	steps  []int64
	values []map[string]any
	err    error
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) Write(split string, step int64, values map[string]any) error {
	if s.err != nil {
		return s.err
	}
	s.splits = append(s.splits, split)
	s.steps = append(s.steps, step)
	s.values = append(s.values, values)
	return nil
}

func TestLogWritesEachSinkOnce(t *testing.T) {
	first := &captureSink{name: "first"}
	second := &captureSink{name: "second"}
	agg := mustNew(t, testKeys(), first, second)

	agg.Record("train", map[string]any{"loss": 0.5}, 2)
	if _, err := agg.Log("train"); err != nil {
		t.Fatalf("log: %v", err)
	}

	for _, sink := range []*captureSink{first, second} {
		if len(sink.steps) != 1 {
			t.Fatalf("sink %s: expected 1 write, got %d", sink.name, len(sink.steps))
		}
		if sink.splits[0] != "train" || sink.steps[0] != 1 {
			t.Errorf("sink %s: got split=%s step=%d", sink.name, sink.splits[0], sink.steps[0])
		}
	}
}

func TestLogStepStrictlyIncreasing(t *testing.T) {
	sink := &captureSink{name: "capture"}
	agg := mustNew(t, testKeys(), sink)

	for i := 0; i < 3; i++ {
		agg.Record("train", map[string]any{"loss": 0.5}, 1)
		if _, err := agg.Log("train"); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	// Steps survive resets so logged snapshots stay sequenced.
	agg.Reset("train")
	agg.Record("train", map[string]any{"loss": 0.4}, 1)
	if _, err := agg.Log("train"); err != nil {
		t.Fatalf("log: %v", err)
	}

	for i := 1; i < len(sink.steps); i++ {
		if sink.steps[i] <= sink.steps[i-1] {
			t.Errorf("steps not strictly increasing: %v", sink.steps)
		}
	}
}

func TestLogSinkFailure(t *testing.T) {
	bad := &captureSink{name: "bad", err: errors.New("disk full")}
	good := &captureSink{name: "good"}
	agg := mustNew(t, testKeys(), bad, good)

	agg.Record("train", map[string]any{"loss": 0.5}, 2)
	before := agg.Aggregate("train")

	_, err := agg.Log("train")
	var sinkErr *SinkWriteError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("expected SinkWriteError, got %v", err)
	}
	if sinkErr.Sink != "bad" {
		t.Errorf("expected failing sink to be named, got %q", sinkErr.Sink)
	}

	// The healthy sink is still written and accumulators survive.
	if len(good.steps) != 1 {
		t.Errorf("expected good sink to receive the write")
	}
	after := agg.Aggregate("train")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("sink failure corrupted accumulator state")
	}
}

func TestZeroWeightOmitsKeyOnly(t *testing.T) {
	// A weighted key that was never recorded has zero total weight; other
	// keys in the same aggregate still succeed.
	agg := mustNew(t, testKeys())
	agg.Record("train", map[string]any{"correct": 4}, 1)

	got := agg.Aggregate("train")
	if _, ok := got["loss"]; ok {
		t.Errorf("zero-weight key should be omitted")
	}
	if got["correct"] != 4.0 {
		t.Errorf("expected correct=4.0, got %v", got["correct"])
	}
}
