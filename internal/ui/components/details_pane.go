package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyexplorer/internal/explorer"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// DetailsPane shows the cached facts about the selected tree item
type DetailsPane struct {
	Width  int
	Height int
	Title  string
	Theme  theme.Theme

	details []explorer.Detail
	lines   []string // formatted on demand
	scrollY int
}

// NewDetailsPane creates an empty details pane
func NewDetailsPane(th theme.Theme) *DetailsPane {
	return &DetailsPane{Width: 40, Height: 10, Theme: th}
}

// SetDetails replaces the shown facts. Unchanged content keeps the
// scroll position.
func (p *DetailsPane) SetDetails(title string, details []explorer.Detail) {
	if p.Title == title && sameDetails(p.details, details) {
		return
	}
	p.Title = title
	p.details = details
	p.lines = nil
	p.scrollY = 0
}

func sameDetails(a, b []explorer.Detail) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// format aligns keys and wraps long values under their value column
func (p *DetailsPane) format() {
	keyWidth := 0
	for _, d := range p.details {
		keyWidth = max(keyWidth, runewidth.StringWidth(d.Key))
	}
	valueWidth := max(p.Width-keyWidth-2, 10)

	keyStyle := lipgloss.NewStyle().Foreground(p.Theme.Info)
	valueStyle := lipgloss.NewStyle().Foreground(p.Theme.Foreground)

	p.lines = p.lines[:0]
	for _, d := range p.details {
		for i, part := range wrapText(d.Value, valueWidth) {
			key := ""
			if i == 0 {
				key = d.Key
			}
			p.lines = append(p.lines,
				keyStyle.Render(runewidth.FillRight(key, keyWidth))+"  "+valueStyle.Render(part))
		}
	}
}

// wrapText wraps text to fit within maxWidth cells
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, r := range line {
			rWidth := runewidth.RuneWidth(r)
			if currentWidth+rWidth > maxWidth {
				result = append(result, current.String())
				current.Reset()
				currentWidth = 0
			}
			current.WriteRune(r)
			currentWidth += rWidth
		}
		if current.Len() > 0 {
			result = append(result, current.String())
		}
	}
	return result
}

func (p *DetailsPane) bodyHeight() int {
	// one line for the title
	return max(p.Height-1, 1)
}

// ScrollUp scrolls content up
func (p *DetailsPane) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls content down
func (p *DetailsPane) ScrollDown() {
	if p.lines == nil {
		p.format()
	}
	if p.scrollY < len(p.lines)-p.bodyHeight() {
		p.scrollY++
	}
}

// View renders the pane
func (p *DetailsPane) View() string {
	titleStyle := lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true)
	title := "Details"
	if p.Title != "" {
		title = runewidth.Truncate("Details: "+p.Title, max(p.Width, 10), "…")
	}

	if len(p.details) == 0 {
		hint := lipgloss.NewStyle().Foreground(p.Theme.Metadata).Italic(true).
			Render("Nothing cached for this item yet")
		return titleStyle.Render(title) + "\n" + hint
	}

	if p.lines == nil {
		p.format()
	}
	end := min(p.scrollY+p.bodyHeight(), len(p.lines))
	parts := append([]string{titleStyle.Render(title)}, p.lines[p.scrollY:end]...)
	return strings.Join(parts, "\n")
}
