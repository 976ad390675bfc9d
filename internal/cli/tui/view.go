package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	// Title bar
	sections = append(sections, m.renderTitleBar())

	// Error display
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Latest aggregate per split
	if len(m.latest) > 0 {
		sections = append(sections, m.renderSplits())
	}

	// Recent snapshots
	if len(m.snaps) > 0 {
		sections = append(sections, m.renderRecent())
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("RUNLAB METRICS")
	path := labelStyle.Render(m.config.Path)

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh ↑↓:scroll")

	left := fmt.Sprintf("%s %s", title, path)
	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", left, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderSplits() string {
	var lines []string

	splits := make([]string, 0, len(m.latest))
	for split := range m.latest {
		splits = append(splits, split)
	}
	sort.Strings(splits)

	for _, split := range splits {
		snap := m.latest[split]
		lines = append(lines, sectionHeaderStyle.Render(
			fmt.Sprintf("  %s (step %d)", split, snap.Step)))

		keys := make([]string, 0, len(snap.Values))
		for key := range snap.Values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			line := fmt.Sprintf("    %s %s",
				labelStyle.Render(fmt.Sprintf("%-16s", key)),
				valueStyle.Render(formatValue(snap.Values[key])))

			if delta, ok := m.delta(split, key); ok {
				line += " " + formatDelta(delta)
			}

			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// delta returns the change of a numeric key since the previous snapshot
// of the same split.
func (m Model) delta(split, key string) (float64, bool) {
	prev, ok := m.prev[split]
	if !ok {
		return 0, false
	}

	cur, ok := asFloat(m.latest[split].Values[key])
	if !ok {
		return 0, false
	}
	old, ok := asFloat(prev.Values[key])
	if !ok {
		return 0, false
	}

	return cur - old, true
}

func (m Model) renderRecent() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Recent"))

	header := fmt.Sprintf("  %8s │ %-10s │ %s", "Step", "Split", "Metrics")
	lines = append(lines, tableHeaderStyle.Render(header))

	// Newest first
	ordered := make([]Snapshot, len(m.snaps))
	for i, s := range m.snaps {
		ordered[len(m.snaps)-1-i] = s
	}

	start := m.tableOffset
	if start > len(ordered) {
		start = 0
	}
	end := start + m.config.MaxRows
	if end > len(ordered) {
		end = len(ordered)
	}

	for _, snap := range ordered[start:end] {
		row := fmt.Sprintf("  %8d │ %-10s │ %s",
			snap.Step, snap.Split, summarizeValues(snap.Values))
		lines = append(lines, tableCellStyle.Render(row))
	}

	if len(ordered) > m.config.MaxRows {
		scrollInfo := fmt.Sprintf("  [%d-%d of %d snapshots]", start+1, end, len(ordered))
		lines = append(lines, helpStyle.Render(scrollInfo))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	if len(m.snaps) == 0 {
		return helpStyle.Render("  No snapshots yet.")
	}

	updated := m.lastUpdated.Format("15:04:05")
	return helpStyle.Render(fmt.Sprintf(
		"  Snapshots: %d │ Splits: %d │ Updated: %s",
		len(m.snaps), len(m.latest), updated))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("%.4g", val)
	case []any:
		return fmt.Sprintf("[%d values]", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

func summarizeValues(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, formatValue(values[key])))
	}
	return strings.Join(parts, " ")
}

func formatDelta(delta float64) string {
	if delta == 0 {
		return ""
	}
	if delta > 0 {
		return risingStyle.Render(fmt.Sprintf("▲ %+.4g", delta))
	}
	return fallingStyle.Render(fmt.Sprintf("▼ %.4g", delta))
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
