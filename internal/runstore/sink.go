package runstore

import (
	"github.com/dkessler/runlab/internal/metrics"
)

// StepSink adapts a run entry into a metrics sink: every logged snapshot
// records its step in the registry so `runlab runs` shows progress.
type StepSink struct {
	store *Store
	runID string
}

var _ metrics.Sink = (*StepSink)(nil)

func NewStepSink(store *Store, runID string) *StepSink {
	return &StepSink{store: store, runID: runID}
}

func (s *StepSink) Name() string {
	return "runstore"
}

func (s *StepSink) Write(split string, step int64, values map[string]any) error {
	s.store.Touch(s.runID, split, step)
	return nil
}
