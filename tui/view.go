package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	headerHeight = 2
	footerHeight = 2
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedResultStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("25"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// renderView renders the entire UI
func renderView(m *Model) string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		m.queryInput.View(),
		renderStatus(m),
		renderResults(m),
		dividerStyle.Render(strings.Repeat("─", m.width)),
		m.preview.View(),
		m.help.ShortHelpView(m.helpKeys()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) helpKeys() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.submit, m.keys.cancel}
	}
	return []key.Binding{
		m.keys.up, m.keys.down, m.preview.KeyMap.PageDown,
		m.keys.open, m.keys.edit, m.keys.quit,
	}
}

// renderStatus renders the line under the query input
func renderStatus(m *Model) string {
	var status string
	switch {
	case m.isSearching:
		status = "Searching..."
	case m.searchError != nil:
		return errorStyle.Render(ansi.Truncate("Error: "+m.searchError.Error(), m.width, "…"))
	case m.request.Query == "":
		status = "Enter a search query..."
	case len(m.results) == 0:
		status = "No results found."
	default:
		status = fmt.Sprintf("Found %d result(s)", len(m.results))
		if m.selectedIndex >= 0 {
			status += fmt.Sprintf(", %d/%d", m.selectedIndex+1, len(m.results))
		}
	}
	if m.notice != "" {
		status += "  " + m.notice
	}
	return statusStyle.Render(ansi.Truncate(status, m.width, "…"))
}

// renderResults renders the visible window of the result list
func renderResults(m *Model) string {
	visible := m.visibleResults()
	lines := make([]string, 0, visible)

	end := min(m.resultsOffset+visible, len(m.results))
	for i := m.resultsOffset; i < end; i++ {
		lines = append(lines, formatResult(m, i))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// formatResult renders one list row as "repo  path", cut to the window width
func formatResult(m *Model, i int) string {
	r := m.results[i]
	repo := ansi.Truncate(r.Repository, m.width, "…")
	row := repo
	if room := m.width - ansi.StringWidth(repo) - 2; room > 0 {
		row += "  " + pathStyle.Render(ansi.Truncate(r.Path, room, "…"))
	}

	if i == m.selectedIndex {
		return selectedResultStyle.Width(m.width).Render(ansi.Strip(row))
	}
	return resultStyle.Render(row)
}
