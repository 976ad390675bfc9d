package runstore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCreateAndGet(t *testing.T) {
	store := New(t.TempDir(), time.Minute, testLogger())

	run := store.Create("cifar-baseline", 15, "configs/cifar.yaml")
	if run.ID == "" {
		t.Fatalf("expected run id")
	}
	if run.Name != "cifar-baseline" || run.Seed != 15 {
		t.Errorf("unexpected run: %+v", run)
	}

	got := store.Get(run.ID)
	if got == nil || got.Name != "cifar-baseline" {
		t.Errorf("expected to retrieve run, got %+v", got)
	}
	if store.Get("missing") != nil {
		t.Errorf("expected nil for unknown run id")
	}
}

func TestTouchRecordsSteps(t *testing.T) {
	store := New(t.TempDir(), time.Minute, testLogger())
	run := store.Create("exp", 1, "")

	store.Touch(run.ID, "train", 10)
	store.Touch(run.ID, "train", 11)
	store.Touch(run.ID, "val", 2)

	got := store.Get(run.ID)
	if got.Steps["train"] != 11 || got.Steps["val"] != 2 {
		t.Errorf("unexpected steps: %v", got.Steps)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := New(dir, time.Minute, testLogger())
	run := store.Create("exp", 7, "")
	store.Touch(run.ID, "train", 3)
	if err := store.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.IsDirty() {
		t.Errorf("save should clear dirty flag")
	}

	reloaded := New(dir, time.Minute, testLogger())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := reloaded.Get(run.ID)
	if got == nil {
		t.Fatalf("expected run to survive reload")
	}
	if got.Steps["train"] != 3 {
		t.Errorf("expected steps to survive reload, got %v", got.Steps)
	}
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	store := New(t.TempDir(), time.Minute, testLogger())
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("expected empty registry")
	}
}

func TestLoadCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, registryFile), []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store := New(dir, time.Minute, testLogger())
	if err := store.Load(); err != nil {
		t.Fatalf("load should tolerate corrupt file: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("expected empty registry after corrupt load")
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	store := New(t.TempDir(), time.Minute, testLogger())
	first := store.Create("first", 1, "")
	store.registry.Runs[first.ID].StartedAt = time.Now().Add(-time.Hour)
	second := store.Create("second", 2, "")

	runs := store.List()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID {
		t.Errorf("expected most recent run first, got %s", runs[0].Name)
	}
}

func TestStepSink(t *testing.T) {
	store := New(t.TempDir(), time.Minute, testLogger())
	run := store.Create("exp", 1, "")

	sink := NewStepSink(store, run.ID)
	if sink.Name() != "runstore" {
		t.Errorf("unexpected sink name %q", sink.Name())
	}
	if err := sink.Write("train", 5, map[string]any{"loss": 0.4}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := store.Get(run.ID); got.Steps["train"] != 5 {
		t.Errorf("expected step recorded, got %v", got.Steps)
	}
}
