package tui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for tea.Cmd
type snapshotsMsg struct {
	snaps []Snapshot
	err   error
}

type tickMsg time.Time

// readSnapshots parses the whole metrics file. One JSON object per line;
// malformed lines are skipped so a torn write at the tail never kills
// the view.
func readSnapshots(path string) ([]Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics file: %w", err)
	}
	defer f.Close()

	var snaps []Snapshot

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}

		snaps = append(snaps, toSnapshot(record))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metrics file: %w", err)
	}

	return snaps, nil
}

func toSnapshot(record map[string]any) Snapshot {
	snap := Snapshot{Values: make(map[string]any)}

	for key, value := range record {
		switch key {
		case "split":
			if s, ok := value.(string); ok {
				snap.Split = s
			}
		case "step":
			if f, ok := value.(float64); ok {
				snap.Step = int64(f)
			}
		default:
			snap.Values[key] = value
		}
	}

	return snap
}

// loadSnapshots reads the metrics file as a tea.Cmd
func loadSnapshots(cfg Config) tea.Cmd {
	return func() tea.Msg {
		snaps, err := readSnapshots(cfg.Path)
		if err != nil {
			return snapshotsMsg{err: err}
		}
		return snapshotsMsg{snaps: snaps}
	}
}

// tick creates a periodic tick command
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
