package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/groupfit/pkg/snapshot"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// SnapshotPickerModel - Interactive snapshot selection
// =============================================================================

// SnapshotPickerModel is the bubbletea model for picking a stored snapshot.
// Typing filters the list by fuzzy match on name, notes and id.
type SnapshotPickerModel struct {
	Snapshots []snapshot.Summary
	Filtered  []snapshot.Summary
	Cursor    int
	Selected  *snapshot.Summary
	Height    int
	Offset    int

	filter textinput.Model
}

// NewSnapshotPickerModel creates a picker over snapshots, newest first.
func NewSnapshotPickerModel(snapshots []snapshot.Summary) SnapshotPickerModel {
	filter := textinput.New()
	filter.Placeholder = "filter..."
	filter.Prompt = "/ "
	filter.CharLimit = 50
	filter.Focus()

	return SnapshotPickerModel{
		Snapshots: snapshots,
		Filtered:  snapshots,
		Height:    15,
		filter:    filter,
	}
}

func (m SnapshotPickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SnapshotPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
			return m, nil
		case "down", "ctrl+n":
			if m.Cursor < len(m.Filtered)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
			return m, nil
		case "enter":
			if len(m.Filtered) == 0 {
				return m, nil
			}
			s := m.Filtered[m.Cursor]
			m.Selected = &s
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// summarySource implements fuzzy.Source over snapshot summaries.
type summarySource []snapshot.Summary

func (s summarySource) String(i int) string {
	return s[i].DiagramName + " " + s[i].Notes + " " + s[i].ID
}

func (s summarySource) Len() int {
	return len(s)
}

// applyFilter narrows Filtered to fuzzy matches of the filter input, best
// match first, and keeps the cursor in bounds.
func (m *SnapshotPickerModel) applyFilter() {
	query := m.filter.Value()
	if query == "" {
		m.Filtered = m.Snapshots
	} else {
		matches := fuzzy.FindFrom(query, summarySource(m.Snapshots))
		m.Filtered = make([]snapshot.Summary, 0, len(matches))
		for _, match := range matches {
			m.Filtered = append(m.Filtered, m.Snapshots[match.Index])
		}
	}

	if m.Cursor >= len(m.Filtered) {
		m.Cursor = len(m.Filtered) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m SnapshotPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Snapshot"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.Filtered) == 0 {
		b.WriteString(listDimStyle.Render("  no matching snapshots"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Filtered))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, snapshotRow(cursor, m.Filtered[i]))
	}

	t := snapshotTable(rows, func(row int) bool { return m.Offset+row == m.Cursor })
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Filtered))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// snapshotRow formats one table row. cursor is empty outside the picker.
func snapshotRow(cursor string, s snapshot.Summary) []string {
	notes := s.Notes
	if notes == "" {
		notes = "—"
	}
	row := []string{
		s.ID[:min(8, len(s.ID))],
		s.DiagramName,
		fmt.Sprintf("%d/%d", s.GroupCount, s.NodeCount),
		formatRelativeTime(s.CreatedAt),
		truncate(notes, 40),
	}
	if cursor == "" {
		return row
	}
	return append([]string{cursor}, row...)
}

// snapshotTable renders rows with the shared header. current marks the row
// under the cursor, if any.
func snapshotTable(rows [][]string, current func(row int) bool) *table.Table {
	headers := []string{"ID", "Name", "Groups/Nodes", "Created", "Notes"}
	if len(rows) > 0 && len(rows[0]) > len(headers) {
		headers = append([]string{""}, headers...)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if current != nil && current(row) {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if headers[col] == "Created" || headers[col] == "ID" {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
