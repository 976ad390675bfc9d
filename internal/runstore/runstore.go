// Package runstore persists the registry of training runs: which runs
// exist, when they started, and the last metrics step logged per split.
package runstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the persisted data structure.
type Registry struct {
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Runs      map[string]*Run `json:"runs"`
}

// Run is one registered training run.
type Run struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	StartedAt  time.Time        `json:"started_at"`
	ConfigPath string           `json:"config_path,omitempty"`
	Seed       int64            `json:"seed"`
	Steps      map[string]int64 `json:"steps"`
}

const (
	currentVersion = 1
	registryFile   = "runlab_runs.json"
)

// Store handles persistence of the run registry.
type Store struct {
	dataDir       string
	flushInterval time.Duration
	logger        *slog.Logger

	mu       sync.RWMutex
	registry *Registry
	dirty    bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(dataDir string, flushInterval time.Duration, logger *slog.Logger) *Store {
	return &Store{
		dataDir:       dataDir,
		flushInterval: flushInterval,
		logger:        logger,
		registry:      newEmptyRegistry(),
		done:          make(chan struct{}),
	}
}

func newEmptyRegistry() *Registry {
	return &Registry{
		Version: currentVersion,
		Runs:    make(map[string]*Run),
	}
}

// Load reads the registry from disk. A missing file starts fresh.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dataDir, registryFile)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing run registry, starting fresh", "path", path)
			s.registry = newEmptyRegistry()
			return nil
		}
		return err
	}
	defer file.Close()

	var registry Registry
	if err := json.NewDecoder(file).Decode(&registry); err != nil {
		s.logger.Warn("failed to decode run registry, starting fresh", "error", err)
		s.registry = newEmptyRegistry()
		return nil
	}

	if registry.Version > currentVersion {
		s.logger.Warn("run registry version is newer than supported, starting fresh",
			"file_version", registry.Version,
			"supported_version", currentVersion,
		)
		s.registry = newEmptyRegistry()
		return nil
	}

	if registry.Runs == nil {
		registry.Runs = make(map[string]*Run)
	}

	s.registry = &registry
	s.logger.Info("loaded run registry",
		"path", path,
		"runs", len(registry.Runs),
	)

	return nil
}

// Save writes the registry to disk with an atomic rename.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, registryFile)
	tempPath := path + ".tmp"

	s.registry.UpdatedAt = time.Now()

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.registry); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}

	s.dirty = false
	s.logger.Debug("saved run registry", "path", path)

	return nil
}

// Start begins the periodic flush goroutine.
func (s *Store) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.flushLoop(ctx)
}

// Stop halts periodic flushing and saves final state.
func (s *Store) Stop() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	return s.Save()
}

func (s *Store) flushLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			dirty := s.dirty
			s.mu.RUnlock()

			if dirty {
				if err := s.Save(); err != nil {
					s.logger.Error("failed to save run registry", "error", err)
				}
			}
		}
	}
}

// Create registers a new run and returns it.
func (s *Store) Create(name string, seed int64, configPath string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:         uuid.NewString(),
		Name:       name,
		StartedAt:  time.Now(),
		ConfigPath: configPath,
		Seed:       seed,
		Steps:      make(map[string]int64),
	}
	s.registry.Runs[run.ID] = run
	s.dirty = true

	return cloneRun(run)
}

// Get returns a run by ID, or nil when unknown.
func (s *Store) Get(id string) *Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.registry.Runs[id]
	if !ok {
		return nil
	}
	return cloneRun(run)
}

// List returns all runs ordered most recent first.
func (s *Store) List() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*Run, 0, len(s.registry.Runs))
	for _, run := range s.registry.Runs {
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs
}

// Touch records the last logged step for a run's split.
func (s *Store) Touch(id, split string, step int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.registry.Runs[id]
	if !ok {
		return
	}
	run.Steps[split] = step
	s.dirty = true
}

// Count returns the number of registered runs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry.Runs)
}

// IsDirty reports whether unsaved changes exist.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func cloneRun(run *Run) *Run {
	copied := *run
	copied.Steps = make(map[string]int64, len(run.Steps))
	for k, v := range run.Steps {
		copied.Steps[k] = v
	}
	return &copied
}
