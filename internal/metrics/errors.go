package metrics

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStrategy indicates a strategy name outside the closed set.
	ErrUnknownStrategy = errors.New("unknown aggregation strategy")

	// ErrNonPositiveCount indicates a Record call with n < 1.
	ErrNonPositiveCount = errors.New("sample count must be a positive integer")

	// ErrNotNumeric indicates a non-numeric value recorded under a
	// numeric strategy (sum or batch_weighted_avg_list).
	ErrNotNumeric = errors.New("value is not numeric")
)

// UnknownKeyError is returned when a value is recorded for a key that was
// never declared at construction time. This is a configuration bug in the
// caller, not a recoverable runtime condition.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("metric key %q was not declared", e.Key)
}

// SinkWriteError wraps a sink failure, identifying which sink failed.
// Accumulator state remains valid after this error.
type SinkWriteError struct {
	Sink string
	Err  error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink %q write failed: %v", e.Sink, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}
