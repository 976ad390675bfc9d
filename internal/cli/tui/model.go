package tui

import (
	"time"
)

// Config holds TUI configuration
type Config struct {
	Path            string
	RefreshInterval time.Duration
	MaxRows         int
}

// Snapshot is one aggregated metrics record read from the JSONL file.
type Snapshot struct {
	Split  string
	Step   int64
	Values map[string]any
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from the metrics file
	snaps  []Snapshot
	latest map[string]Snapshot
	prev   map[string]Snapshot

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time

	// Table scroll position
	tableOffset int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	if cfg.MaxRows < 1 {
		cfg.MaxRows = 10
	}
	return Model{
		config:  cfg,
		loading: true,
		latest:  make(map[string]Snapshot),
		prev:    make(map[string]Snapshot),
	}
}

// ingest replaces the snapshot window and recomputes the per-split
// latest and previous records used for delta display.
func (m *Model) ingest(snaps []Snapshot) {
	m.snaps = snaps
	m.latest = make(map[string]Snapshot)
	m.prev = make(map[string]Snapshot)

	for _, s := range snaps {
		if cur, ok := m.latest[s.Split]; ok {
			m.prev[s.Split] = cur
		}
		m.latest[s.Split] = s
	}
}
