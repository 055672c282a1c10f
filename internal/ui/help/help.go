package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of bindings
type Section struct {
	Title    string
	Bindings []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Tab", "Switch panel focus"},
		{"/", "Filter objects"},
		{"n", "New connection"},
	}
}

// GetConnectionKeys returns bindings that act on a connection row
func GetConnectionKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter, c", "Connect"},
		{"x", "Disconnect"},
		{"r, F5", "Reload metadata"},
		{"e", "Edit connection"},
		{"D", "Duplicate connection"},
		{"d", "Delete connection"},
		{"y", "Copy connection URL"},
		{"s", "Open query editor"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"g/G", "Jump to top/bottom"},
		{"←/h", "Collapse or go to parent"},
		{"→/l", "Expand"},
		{"Space", "Toggle"},
		{"*", "Expand all"},
		{"-", "Collapse all"},
		{"Enter", "Preview table, view or column"},
	}
}

// GetPreviewKeys returns bindings of the preview panel
func GetPreviewKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/↓", "Move selection"},
		{"←/→", "Scroll columns"},
		{"PgUp/PgDn", "Page"},
		{"H", "Show preview history"},
		{"E", "Export preview to file"},
	}
}

// GetEditorKeys returns bindings of the query editor
func GetEditorKeys() []KeyBinding {
	return []KeyBinding{
		{"Ctrl+R", "Run statement"},
		{"Ctrl+P/Ctrl+N", "Previous/next statement"},
		{"Ctrl+L", "Clear"},
		{"Esc", "Close editor"},
	}
}

// Sections lists every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Connection", GetConnectionKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Preview", GetPreviewKeys()},
		{"Query Editor", GetEditorKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder
	b.WriteString(titleStyle.Render("lazyexplorer - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, s := range Sections() {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Bindings {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		MaxHeight(max(height, 10))

	return boxStyle.Render(b.String())
}
