package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// ExecuteQueryMsg asks to run the editor's statement
type ExecuteQueryMsg struct {
	ConnectionID string
	SQL          string
}

// CloseEditorMsg is sent when the editor is dismissed
type CloseEditorMsg struct{}

// SQLEditor is a multiline statement editor bound to one connection
type SQLEditor struct {
	Input textarea.Model
	Theme theme.Theme

	Width  int
	Height int

	connectionID   string
	connectionName string

	// previous statements, newest first
	history    []string
	historyIdx int
	draft      string
}

// NewSQLEditor creates a hidden editor
func NewSQLEditor(th theme.Theme) *SQLEditor {
	ta := textarea.New()
	ta.Placeholder = "SELECT ..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.Prompt = ""

	return &SQLEditor{Input: ta, Theme: th, Width: 80, Height: 12, historyIdx: -1}
}

// Open shows the editor for a connection and focuses it. Text typed
// for the same connection earlier is kept.
func (e *SQLEditor) Open(connectionID, connectionName string, history []string) tea.Cmd {
	if connectionID != e.connectionID {
		e.Input.Reset()
	}
	e.connectionID = connectionID
	e.connectionName = connectionName
	e.history = history
	e.historyIdx = -1
	e.resize()
	return e.Input.Focus()
}

// Close hides the editor
func (e *SQLEditor) Close() {
	e.Input.Blur()
}

// Visible reports whether the editor takes the keys
func (e *SQLEditor) Visible() bool {
	return e.Input.Focused()
}

// ConnectionID returns the connection queries run against
func (e *SQLEditor) ConnectionID() string {
	return e.connectionID
}

// Value returns the current statement
func (e *SQLEditor) Value() string {
	return e.Input.Value()
}

// Update handles keys while the editor is open
func (e *SQLEditor) Update(msg tea.Msg) (*SQLEditor, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			e.Close()
			return e, func() tea.Msg { return CloseEditorMsg{} }
		case "ctrl+r":
			sql := strings.TrimSpace(e.Input.Value())
			if sql == "" {
				return e, nil
			}
			id := e.connectionID
			return e, func() tea.Msg { return ExecuteQueryMsg{ConnectionID: id, SQL: sql} }
		case "ctrl+l":
			e.Input.Reset()
			e.historyIdx = -1
			return e, nil
		case "ctrl+p":
			e.recall(1)
			return e, nil
		case "ctrl+n":
			e.recall(-1)
			return e, nil
		}
	}

	var cmd tea.Cmd
	e.Input, cmd = e.Input.Update(msg)
	return e, cmd
}

// recall steps through earlier statements; stepping past the newest
// restores what was being typed
func (e *SQLEditor) recall(step int) {
	if len(e.history) == 0 {
		return
	}
	if e.historyIdx == -1 {
		e.draft = e.Input.Value()
	}
	idx := min(max(e.historyIdx+step, -1), len(e.history)-1)
	if idx == e.historyIdx {
		return
	}
	e.historyIdx = idx
	if idx == -1 {
		e.Input.SetValue(e.draft)
		return
	}
	e.Input.SetValue(e.history[idx])
}

func (e *SQLEditor) resize() {
	// border, padding, title and hint
	e.Input.SetWidth(max(e.Width-6, 10))
	e.Input.SetHeight(max(e.Height-8, 3))
}

// View renders the editor box
func (e *SQLEditor) View() string {
	e.resize()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(e.Theme.BorderFocused)
	hint := lipgloss.NewStyle().Foreground(e.Theme.Metadata).Italic(true)

	title := "Query"
	if e.connectionName != "" {
		title += " on " + e.connectionName
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.BorderFocused).
		Padding(1, 2).
		Width(e.Width).
		Render(titleStyle.Render(title) + "\n\n" + e.Input.View() + "\n\n" +
			hint.Render("Ctrl+R: Run │ Ctrl+P/N: History │ Ctrl+L: Clear │ Esc: Close"))
}
