package components

// TreeView renders the rows of an explorer.MetadataTree and turns keys
// into expansion changes and connection actions on that tree.
//
// The view keeps no copy of the tree. Rows are recomputed on every
// Update and View, and the cursor follows the tree's selection so that
// rows appearing above it after a fetch do not move it.
//
// Usage:
//
//	tv := components.NewTreeView(ctrl.Tree(), theme)
//	tv.Width, tv.Height = 40, 20
//
//	// In your Update method:
//	tv, cmd = tv.Update(keyMsg)
//
//	// In your View method:
//	content := tv.View()

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyexplorer/internal/explorer"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// TreeView is the navigator panel
type TreeView struct {
	Tree         *explorer.MetadataTree
	CursorIndex  int
	Width        int
	Height       int // rows available for content
	Theme        theme.Theme
	ScrollOffset int
}

// TreeItemSelectedMsg is sent when enter is pressed on a previewable row
type TreeItemSelectedMsg struct {
	Item models.TreeItem
}

// NewTreeView creates a tree view over tree
func NewTreeView(tree *explorer.MetadataTree, th theme.Theme) *TreeView {
	return &TreeView{
		Tree:   tree,
		Width:  40,
		Height: 20,
		Theme:  th,
	}
}

// rows returns the visible rows with the cursor moved onto the
// selected item when it is still visible
func (tv *TreeView) rows() []explorer.Row {
	if tv.Tree == nil {
		return nil
	}
	rows := tv.Tree.Rows()
	item, ok := tv.Tree.SelectedItem()
	if ok {
		ok = false
		for i, r := range rows {
			if r.Item == item {
				tv.CursorIndex, ok = i, true
				break
			}
		}
	}
	if tv.CursorIndex >= len(rows) {
		tv.CursorIndex = len(rows) - 1
	}
	if tv.CursorIndex < 0 {
		tv.CursorIndex = 0
	}
	// a selection hidden by a collapse moves to the row under the cursor
	if !ok && item != (models.TreeItem{}) && len(rows) > 0 {
		tv.Tree.Select(rows[tv.CursorIndex].Item)
	}
	return rows
}

// moveTo places the cursor on row i and selects its item
func (tv *TreeView) moveTo(rows []explorer.Row, i int) {
	if len(rows) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(rows) {
		i = len(rows) - 1
	}
	tv.CursorIndex = i
	tv.Tree.Select(rows[i].Item)
}

// CurrentRow returns the row under the cursor
func (tv *TreeView) CurrentRow() (explorer.Row, bool) {
	rows := tv.rows()
	if len(rows) == 0 {
		return explorer.Row{}, false
	}
	return rows[tv.CursorIndex], true
}

// View renders the visible window of rows
func (tv *TreeView) View() string {
	rows := tv.rows()
	if len(rows) == 0 {
		return tv.emptyState()
	}

	viewHeight := tv.Height
	if viewHeight < 1 {
		viewHeight = 1
	}
	tv.adjustScrollOffset(len(rows), viewHeight)

	startIdx := tv.ScrollOffset
	endIdx := tv.ScrollOffset + viewHeight
	if endIdx > len(rows) {
		endIdx = len(rows)
	}

	lines := make([]string, 0, viewHeight)
	for i := startIdx; i < endIdx; i++ {
		gutter := "  "
		switch {
		case i == startIdx && startIdx > 0:
			gutter = "↑ "
		case i == endIdx-1 && endIdx < len(rows):
			gutter = "↓ "
		}
		lines = append(lines, tv.renderRow(rows[i], i == tv.CursorIndex, gutter))
	}
	for len(lines) < viewHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Update handles keyboard input for tree navigation
func (tv *TreeView) Update(msg tea.KeyMsg) (*TreeView, tea.Cmd) {
	rows := tv.rows()
	if len(rows) == 0 {
		return tv, nil
	}
	row := rows[tv.CursorIndex]
	item := row.Item

	switch msg.String() {
	case "up", "k":
		tv.moveTo(rows, tv.CursorIndex-1)

	case "down", "j":
		tv.moveTo(rows, tv.CursorIndex+1)

	case "g", "home":
		tv.moveTo(rows, 0)
		tv.ScrollOffset = 0

	case "G", "end":
		tv.moveTo(rows, len(rows)-1)

	case "pgup", "ctrl+u":
		tv.moveTo(rows, tv.CursorIndex-tv.pageSize())

	case "pgdown", "ctrl+d":
		tv.moveTo(rows, tv.CursorIndex+tv.pageSize())

	case "right", "l":
		if row.Expandable && !row.Expanded {
			tv.Tree.SetExpanded(item, true)
		} else if row.Expanded && tv.CursorIndex+1 < len(rows) {
			tv.moveTo(rows, tv.CursorIndex+1)
		}

	case " ":
		if row.Expandable {
			tv.Tree.Toggle(item)
		}

	case "left", "h":
		if row.Expandable && row.Expanded {
			tv.Tree.SetExpanded(item, false)
		} else if parent := parentIndex(rows, tv.CursorIndex); parent >= 0 {
			tv.moveTo(rows, parent)
		}

	case "enter":
		switch item.Kind {
		case models.ItemSavedConnection:
			if !row.Connected {
				tv.Tree.RequestAction(models.ActionConnect, item.ConnectionID)
				tv.Tree.SetExpanded(item, true)
			} else {
				tv.Tree.Toggle(item)
			}
		case models.ItemTable, models.ItemView, models.ItemColumn:
			return tv, func() tea.Msg { return TreeItemSelectedMsg{Item: item} }
		default:
			if row.Expandable {
				tv.Tree.Toggle(item)
			}
		}

	case "c":
		tv.requestAction(item, models.ActionConnect)
	case "e":
		tv.requestAction(item, models.ActionEdit)
	case "D":
		tv.requestAction(item, models.ActionDuplicate)
	case "d":
		tv.requestAction(item, models.ActionDelete)
	case "y":
		tv.requestAction(item, models.ActionCopyURL)

	case "*":
		tv.Tree.ExpandAll()
	case "-":
		tv.Tree.CollapseAll()
		tv.ScrollOffset = 0
	}

	return tv, nil
}

// requestAction queues action for the connection owning item. Only
// connection rows carry connection actions.
func (tv *TreeView) requestAction(item models.TreeItem, action models.ConnectionAction) {
	if item.Kind != models.ItemSavedConnection && item.Kind != models.ItemConnection {
		return
	}
	tv.Tree.RequestAction(action, item.ConnectionID)
}

func (tv *TreeView) pageSize() int {
	if tv.Height > 1 {
		return tv.Height - 1
	}
	return 1
}

// parentIndex finds the closest row above i with a smaller depth
func parentIndex(rows []explorer.Row, i int) int {
	depth := rows[i].Depth
	for j := i - 1; j >= 0; j-- {
		if rows[j].Depth < depth {
			return j
		}
	}
	return -1
}

// renderRow renders a single row with appropriate styling
func (tv *TreeView) renderRow(row explorer.Row, selected bool, gutter string) string {
	maxWidth := tv.Width - 2
	if maxWidth < 4 {
		maxWidth = 4
	}

	main := gutter + strings.Repeat("  ", row.Depth) + rowIcon(row) + " " + row.Label
	var suffix string
	if row.HasCount {
		suffix = fmt.Sprintf(" (%s)", formatNumber(int64(row.Count)))
	}
	if row.Detail != "" {
		suffix += " " + row.Detail
	}

	if runewidth.StringWidth(main+suffix) > maxWidth {
		main = runewidth.Truncate(main+suffix, maxWidth, "…")
		suffix = ""
	}

	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.Selection).
			Foreground(tv.Theme.Foreground).
			Bold(true).
			Width(maxWidth).
			Render(main + suffix)
	}

	mainStyle := lipgloss.NewStyle().Foreground(tv.rowColor(row))
	if row.Placeholder() {
		mainStyle = mainStyle.Italic(true)
	}
	metaStyle := lipgloss.NewStyle().Foreground(tv.Theme.Metadata)
	return mainStyle.Render(main) + metaStyle.Render(suffix)
}

func rowIcon(row explorer.Row) string {
	switch {
	case row.Placeholder():
		return " "
	case !row.Expandable:
		return "•"
	case row.Expanded:
		return "▾"
	default:
		return "▸"
	}
}

func (tv *TreeView) rowColor(row explorer.Row) lipgloss.Color {
	switch row.Item.Kind {
	case models.ItemSavedConnection, models.ItemConnection:
		if row.Connected {
			return tv.Theme.DatabaseActive
		}
		return tv.Theme.DatabaseInactive
	case models.ItemSchema:
		if row.Expanded {
			return tv.Theme.SchemaExpanded
		}
		return tv.Theme.SchemaCollapsed
	case models.ItemCategory:
		return tv.Theme.Info
	case models.ItemTable:
		return tv.Theme.TableIcon
	case models.ItemView:
		return tv.Theme.ViewIcon
	case models.ItemFunction, models.ItemTrigger:
		return tv.Theme.FunctionIcon
	case models.ItemColumn:
		return tv.Theme.ColumnIcon
	case models.ItemNone:
		return tv.Theme.Metadata
	default:
		return tv.Theme.Foreground
	}
}

// adjustScrollOffset adjusts the scroll offset to keep the cursor visible
func (tv *TreeView) adjustScrollOffset(total, viewHeight int) {
	if tv.CursorIndex < tv.ScrollOffset {
		tv.ScrollOffset = tv.CursorIndex
	}
	if tv.CursorIndex >= tv.ScrollOffset+viewHeight {
		tv.ScrollOffset = tv.CursorIndex - viewHeight + 1
	}

	maxScroll := total - viewHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if tv.ScrollOffset > maxScroll {
		tv.ScrollOffset = maxScroll
	}
	if tv.ScrollOffset < 0 {
		tv.ScrollOffset = 0
	}
}

// emptyState returns the empty state view
func (tv *TreeView) emptyState() string {
	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Width(tv.Width - 2).
		Align(lipgloss.Center)

	return style.Render("No connections. Press n to add one.")
}

// formatNumber abbreviates large counts
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 10000 {
		k := float64(n) / 1000.0
		if k == float64(int(k)) {
			return fmt.Sprintf("%.0fk", k)
		}
		return fmt.Sprintf("%.1fk", k)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.0fk", float64(n)/1000.0)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
}
