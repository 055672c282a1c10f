package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyexplorer/internal/db/query"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 40
)

// TableView displays preview rows with vertical and horizontal scrolling
type TableView struct {
	Columns []string
	Rows    [][]string
	Width   int
	Height  int
	Theme   theme.Theme

	TopRow      int
	SelectedRow int
	LeftColumn  int

	columnWidths []int
}

// NewTableView creates an empty table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{Theme: th}
}

// SetResult replaces the table data with a preview result
func (tv *TableView) SetResult(res query.Result) {
	tv.SetData(res.Columns, res.Rows)
}

// SetData sets the table data and resets scrolling
func (tv *TableView) SetData(columns []string, rows [][]string) {
	tv.Columns = columns
	tv.Rows = rows
	tv.TopRow, tv.SelectedRow, tv.LeftColumn = 0, 0, 0
	tv.calculateColumnWidths()
}

// calculateColumnWidths sizes each column to its widest cell, within bounds
func (tv *TableView) calculateColumnWidths() {
	tv.columnWidths = make([]int, len(tv.Columns))
	for i, col := range tv.Columns {
		tv.columnWidths[i] = runewidth.StringWidth(col)
	}
	for _, row := range tv.Rows {
		for i, cell := range row {
			if i < len(tv.columnWidths) {
				if w := runewidth.StringWidth(cell); w > tv.columnWidths[i] {
					tv.columnWidths[i] = w
				}
			}
		}
	}
	for i, w := range tv.columnWidths {
		tv.columnWidths[i] = min(max(w, minColumnWidth), maxColumnWidth)
	}
}

func (tv *TableView) visibleRows() int {
	// header, separator and status line
	if n := tv.Height - 3; n > 0 {
		return n
	}
	return 1
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(tv.Theme.Metadata).Italic(true).Render("No data")
	}

	var b strings.Builder
	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())

	endRow := min(tv.TopRow+tv.visibleRows(), len(tv.Rows))
	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString("\n")
		b.WriteString(tv.renderRow(tv.Rows[i], i, i == tv.SelectedRow))
	}

	b.WriteString("\n")
	b.WriteString(tv.renderStatus(endRow))
	return b.String()
}

// visibleColumns returns the column indexes that fit from LeftColumn on
func (tv *TableView) visibleColumns() []int {
	var cols []int
	used := 1
	for i := tv.LeftColumn; i < len(tv.columnWidths); i++ {
		w := tv.columnWidths[i] + 3
		if len(cols) > 0 && tv.Width > 0 && used+w > tv.Width {
			break
		}
		cols = append(cols, i)
		used += w
	}
	return cols
}

func (tv *TableView) renderHeader() string {
	var parts []string
	for _, i := range tv.visibleColumns() {
		parts = append(parts, pad(tv.Columns[i], tv.columnWidths[i]))
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader).
		Render(" " + strings.Join(parts, " │ ") + " ")
}

func (tv *TableView) renderSeparator() string {
	var parts []string
	for _, i := range tv.visibleColumns() {
		parts = append(parts, strings.Repeat("─", tv.columnWidths[i]))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row []string, index int, selected bool) string {
	var parts []string
	for _, i := range tv.visibleColumns() {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts = append(parts, pad(cell, tv.columnWidths[i]))
	}
	line := " " + strings.Join(parts, " │ ") + " "

	style := lipgloss.NewStyle().Foreground(tv.Theme.Foreground)
	switch {
	case selected:
		style = style.Background(tv.Theme.TableRowSelected).Bold(true)
	case index%2 == 1:
		style = style.Background(tv.Theme.TableRowOdd)
	}
	return style.Render(line)
}

func (tv *TableView) renderStatus(endRow int) string {
	status := "0 rows"
	if len(tv.Rows) > 0 {
		status = fmt.Sprintf("%d-%d of %d rows", tv.TopRow+1, endRow, len(tv.Rows))
	}
	if cols := tv.visibleColumns(); len(cols) < len(tv.Columns) {
		status += fmt.Sprintf(", columns %d-%d of %d", tv.LeftColumn+1, tv.LeftColumn+len(cols), len(tv.Columns))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Render(" " + status)
}

// pad fits s into exactly width cells
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	if len(tv.Rows) == 0 {
		return
	}
	tv.SelectedRow = min(max(tv.SelectedRow+delta, 0), len(tv.Rows)-1)

	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if visible := tv.visibleRows(); tv.SelectedRow >= tv.TopRow+visible {
		tv.TopRow = tv.SelectedRow - visible + 1
	}
}

// PageUp moves the selection one screen up
func (tv *TableView) PageUp() {
	tv.MoveSelection(-tv.visibleRows())
}

// PageDown moves the selection one screen down
func (tv *TableView) PageDown() {
	tv.MoveSelection(tv.visibleRows())
}

// ScrollColumns shifts the first visible column
func (tv *TableView) ScrollColumns(delta int) {
	if len(tv.Columns) == 0 {
		return
	}
	tv.LeftColumn = min(max(tv.LeftColumn+delta, 0), len(tv.Columns)-1)
}
