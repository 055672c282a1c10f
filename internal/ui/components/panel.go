package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// Panel is a bordered box with a title line
type Panel struct {
	Title   string
	Content string
	Width   int // outer width including the border
	Height  int // outer height including the border
	Focused bool
	Theme   theme.Theme
}

// InnerSize returns the space left for content
func (p *Panel) InnerSize() (width, height int) {
	// border on each side, plus the title line
	return max(p.Width-2, 0), max(p.Height-3, 0)
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 2 || p.Height <= 2 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(border)

	content := titleStyle.Render(p.Title) + "\n" + p.Content
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(p.Width - 2).
		Height(p.Height - 2).
		MaxHeight(p.Height).
		Render(content)
}
