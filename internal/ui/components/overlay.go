package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// ErrorOverlay shows the last failure until dismissed
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates an overlay for err
func NewErrorOverlay(th theme.Theme, title string, err error) *ErrorOverlay {
	return &ErrorOverlay{Title: title, Message: err.Error(), Width: 60, Theme: th}
}

// View renders the overlay box
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(e.Theme.Error)
	hint := lipgloss.NewStyle().Foreground(e.Theme.Metadata).Italic(true)

	body := lipgloss.NewStyle().Width(e.Width - 6).Render(e.Message)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(titleStyle.Render(e.Title) + "\n\n" + body + "\n\n" + hint.Render("Esc/Enter: Dismiss"))
}

// ConfirmResultMsg reports the answer to a ConfirmDialog
type ConfirmResultMsg struct {
	Confirmed bool
}

// ConfirmDialog asks a yes/no question
type ConfirmDialog struct {
	Question string
	Width    int
	Theme    theme.Theme
}

// NewConfirmDialog creates a yes/no dialog
func NewConfirmDialog(th theme.Theme, question string) *ConfirmDialog {
	return &ConfirmDialog{Question: question, Width: 50, Theme: th}
}

// Update answers on y/enter or n/esc
func (c *ConfirmDialog) Update(msg tea.KeyMsg) tea.Cmd {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		return func() tea.Msg { return ConfirmResultMsg{Confirmed: true} }
	case "n", "esc", "q":
		return func() tea.Msg { return ConfirmResultMsg{Confirmed: false} }
	}
	return nil
}

// View renders the dialog box
func (c *ConfirmDialog) View() string {
	hint := lipgloss.NewStyle().Foreground(c.Theme.Metadata).Italic(true)
	body := lipgloss.NewStyle().Width(c.Width - 6).Render(c.Question)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.Theme.Warning).
		Padding(1, 2).
		Width(c.Width).
		Render(body + "\n\n" + hint.Render("y: Yes │ n: No"))
}
