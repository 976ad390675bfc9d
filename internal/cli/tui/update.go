package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadSnapshots(m.config),
		tick(m.config.RefreshInterval),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.ingest(msg.snaps)
			m.lastUpdated = time.Now()
		}
		return m, nil

	case tickMsg:
		m.loading = true
		return m, tea.Batch(
			loadSnapshots(m.config),
			tick(m.config.RefreshInterval),
		)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		// Manual refresh
		m.loading = true
		return m, loadSnapshots(m.config)

	case "up", "k":
		if m.tableOffset > 0 {
			m.tableOffset--
		}
		return m, nil

	case "down", "j":
		if m.tableOffset < len(m.snaps)-m.config.MaxRows {
			m.tableOffset++
		}
		return m, nil
	}

	return m, nil
}
