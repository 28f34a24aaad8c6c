package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/groupfit/pkg/errors"
	"github.com/matzehuels/groupfit/pkg/snapshot"
)

var promptBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1)

// =============================================================================
// SaveDialogModel - Interactive snapshot notes
// =============================================================================

// savedMsg reports the outcome of the save callback.
type savedMsg struct{ err error }

// SaveDialogModel asks for optional notes and hands them to a SaveFunc.
// ctrl+s saves, esc cancels. A failed save keeps the dialog open and shows
// the error so the notes can be edited and resubmitted.
type SaveDialogModel struct {
	Title     string
	Saved     bool
	Cancelled bool
	Err       error

	ctx    context.Context
	save   snapshot.SaveFunc
	notes  textarea.Model
	saving bool
}

// NewSaveDialogModel creates a dialog titled after the diagram being saved.
func NewSaveDialogModel(ctx context.Context, title string, save snapshot.SaveFunc) SaveDialogModel {
	notes := textarea.New()
	notes.Placeholder = "What changed? (optional)"
	notes.CharLimit = errors.MaxNotesLength
	notes.ShowLineNumbers = false
	notes.SetWidth(60)
	notes.SetHeight(5)
	notes.Focus()

	return SaveDialogModel{
		Title: title,
		ctx:   ctx,
		save:  save,
		notes: notes,
	}
}

// Notes returns the trimmed notes text.
func (m SaveDialogModel) Notes() string {
	return strings.TrimSpace(m.notes.Value())
}

func (m SaveDialogModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m SaveDialogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.Saved = true
		return m, tea.Quit
	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Cancelled = true
			return m, tea.Quit
		case "ctrl+s":
			m.saving = true
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

// submit runs the save callback outside the update loop.
func (m SaveDialogModel) submit() tea.Cmd {
	ctx, save, notes := m.ctx, m.save, m.Notes()
	return func() tea.Msg {
		return savedMsg{err: save(ctx, notes)}
	}
}

func (m SaveDialogModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Save Snapshot"))
	if m.Title != "" {
		b.WriteString(" " + StyleDim.Render(m.Title))
	}
	b.WriteString("\n\n")
	b.WriteString(promptBoxStyle.Render(m.notes.View()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d", len([]rune(m.notes.Value())), errors.MaxNotesLength)))
	b.WriteString("\n\n")

	switch {
	case m.saving:
		b.WriteString(StyleDim.Render("Saving..."))
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("ctrl+s retry  esc cancel"))
	default:
		b.WriteString(StyleDim.Render("ctrl+s save  esc cancel"))
	}
	return b.String()
}
