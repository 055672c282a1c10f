package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyexplorer/internal/explorer"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// CloseSearchMsg is sent when the search bar is dismissed
type CloseSearchMsg struct{}

// SearchInput edits the tree's free-text filter. Every keystroke is
// applied to the tree immediately.
type SearchInput struct {
	Input textinput.Model
	Tree  *explorer.MetadataTree
	Theme theme.Theme
	Width int
}

// NewSearchInput creates a search bar bound to tree
func NewSearchInput(tree *explorer.MetadataTree, th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Filter objects..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Width = 30

	return &SearchInput{Input: ti, Tree: tree, Theme: th}
}

// Open shows the bar and focuses it, keeping any current filter text
func (s *SearchInput) Open() tea.Cmd {
	if !s.Tree.SearchVisible() {
		s.Tree.ToggleSearch()
	}
	s.Input.SetValue(s.Tree.SearchText())
	s.Input.CursorEnd()
	return s.Input.Focus()
}

// Close hides the bar, which also clears the filter
func (s *SearchInput) Close() {
	if s.Tree.SearchVisible() {
		s.Tree.ToggleSearch()
	}
	s.Input.Reset()
	s.Input.Blur()
}

// Focused reports whether keys go to the bar
func (s *SearchInput) Focused() bool {
	return s.Input.Focused()
}

// Update handles messages while the bar is focused
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			// keep the filter and hand the keys back to the tree
			s.Input.Blur()
			return s, nil
		case "esc":
			s.Close()
			return s, func() tea.Msg { return CloseSearchMsg{} }
		}
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	s.Tree.SetSearch(s.Input.Value())
	return s, cmd
}

// View renders the search bar
func (s *SearchInput) View() string {
	s.Input.Width = max(s.Width-4, 10)

	border := s.Theme.Border
	if s.Input.Focused() {
		border = s.Theme.BorderFocused
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(s.Width-2, 10)).
		Render(s.Input.View())
}
