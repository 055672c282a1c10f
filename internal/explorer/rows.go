package explorer

import (
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// Row is one visible line of the tree
type Row struct {
	Item       models.TreeItem // zero for placeholder lines
	Depth      int
	Label      string
	Detail     string // secondary text, e.g. a column type
	Count      int    // shown when HasCount is set
	HasCount   bool
	Expandable bool
	Expanded   bool
	Connected  bool // connection rows only
}

// Placeholder reports whether the row is an informational line
func (r Row) Placeholder() bool {
	return r.Item.IsZero()
}

// Rows flattens the visible part of the tree. Saved connections come
// first, then active connections that are not saved, so no connection
// id is listed twice. The result depends only on the cache, the
// expansion flags and the filter.
func (t *MetadataTree) Rows() []Row {
	var rows []Row
	savedIDs := make(map[string]struct{}, len(t.saved))
	for _, cfg := range t.saved {
		savedIDs[cfg.ID] = struct{}{}
		item := models.SavedConnectionItem(cfg.ID)
		node, active := t.connections[cfg.ID]
		open := t.expanded.isOpen(item)
		rows = append(rows, Row{
			Item:       item,
			Label:      cfg.Name,
			Detail:     cfg.Info(),
			Expandable: true,
			Expanded:   open,
			Connected:  active && node.connected,
		})
		if !open {
			continue
		}
		if !active {
			rows = append(rows, placeholder(1, "Not connected"))
			continue
		}
		rows = t.appendSchemas(rows, node)
	}

	for _, id := range t.order {
		if _, ok := savedIDs[id]; ok {
			continue
		}
		node := t.connections[id]
		item := models.ConnectionItem(id)
		open := t.expanded.isOpen(item)
		rows = append(rows, Row{
			Item:       item,
			Label:      node.name,
			Expandable: true,
			Expanded:   open,
			Connected:  node.connected,
		})
		if open {
			rows = t.appendSchemas(rows, node)
		}
	}
	return rows
}

func placeholder(depth int, label string) Row {
	return Row{Depth: depth, Label: label}
}

func (t *MetadataTree) appendSchemas(rows []Row, node *ConnectionNode) []Row {
	if len(node.schemas) == 0 {
		return append(rows, placeholder(1, "No schemas found"))
	}
	for _, s := range node.schemas {
		item := models.SchemaItem(node.id, s.Name)
		open := t.expanded.isOpen(item)
		row := Row{
			Item:       item,
			Depth:      1,
			Label:      s.Name,
			Expandable: true,
			Expanded:   open,
		}
		if counts, ok := node.counts[s.Name]; ok && counts.Total() > 0 {
			row.Count, row.HasCount = counts.Total(), true
		}
		rows = append(rows, row)
		if !open {
			continue
		}
		for _, category := range models.Categories {
			rows = t.appendCategory(rows, node, s.Name, category)
		}
	}
	return rows
}

// categoryVisible applies the category rule: a nonzero count, and under
// an active filter at least one loaded member that matches. Unloaded
// categories have no members and stay hidden while filtering.
func (t *MetadataTree) categoryVisible(node *ConnectionNode, schema string, category models.ObjectCategory) (int, bool) {
	count := node.categoryCount(schema, category)
	if count == 0 {
		return 0, false
	}
	if t.filter.active() && !t.filter.anyMatch(node.memberNames(schema, category)) {
		return count, false
	}
	return count, true
}

func (t *MetadataTree) appendCategory(rows []Row, node *ConnectionNode, schema string, category models.ObjectCategory) []Row {
	count, ok := t.categoryVisible(node, schema, category)
	if !ok {
		return rows
	}
	item := models.CategoryItem(node.id, schema, category)
	open := t.expanded.isOpen(item)
	rows = append(rows, Row{
		Item:       item,
		Depth:      2,
		Label:      category.String(),
		Count:      count,
		HasCount:   true,
		Expandable: true,
		Expanded:   open,
	})
	if !open {
		return rows
	}
	if !node.categoryLoaded(schema, category) {
		return append(rows, placeholder(3, fmt.Sprintf("Loading %s...", lowerCategory(category))))
	}

	id := node.id
	switch category {
	case models.CategoryTables:
		for _, tbl := range node.tables[schema] {
			if t.filter.matches(tbl.Name) {
				rows = t.appendTable(rows, node, schema, tbl)
			}
		}
	case models.CategoryViews:
		for _, v := range node.views[schema] {
			if t.filter.matches(v.Name) {
				detail := ""
				if v.Type == models.MaterializedView {
					detail = "materialized"
				}
				rows = append(rows, leaf(models.ViewItem(id, schema, v.Name), v.Name, detail))
			}
		}
	case models.CategoryFunctions:
		for _, f := range node.functions[schema] {
			if t.filter.matches(f.Name) {
				rows = append(rows, leaf(models.FunctionItem(id, schema, f.Name), f.Name, "("+f.Arguments+")"))
			}
		}
	case models.CategoryTriggers:
		for _, tr := range node.triggers[schema] {
			if t.filter.matches(tr.Name) {
				rows = append(rows, leaf(models.TriggerItem(id, schema, tr.Table, tr.Name), tr.Name, "on "+tr.Table))
			}
		}
	case models.CategorySequences:
		for _, sq := range node.sequences[schema] {
			if t.filter.matches(sq.Name) {
				rows = append(rows, leaf(models.SequenceItem(id, schema, sq.Name), sq.Name, ""))
			}
		}
	case models.CategoryIndexes:
		for _, ix := range node.indexes[schema] {
			if t.filter.matches(ix.Name) {
				rows = append(rows, leaf(models.IndexItem(id, schema, ix.Table, ix.Name), ix.Name, "on "+ix.Table))
			}
		}
	}
	return rows
}

func leaf(item models.TreeItem, label, detail string) Row {
	return Row{Item: item, Depth: 3, Label: label, Detail: detail}
}

func (t *MetadataTree) appendTable(rows []Row, node *ConnectionNode, schema string, tbl models.Table) []Row {
	item := models.TableItem(node.id, schema, tbl.Name)
	open := t.expanded.isOpen(item)
	rows = append(rows, Row{
		Item:       item,
		Depth:      3,
		Label:      tbl.Name,
		Expandable: true,
		Expanded:   open,
	})
	if !open {
		return rows
	}
	columns, ok := node.columns[columnKey{schema, tbl.Name}]
	if !ok {
		return append(rows, placeholder(4, "Loading columns..."))
	}
	// columns of a visible table are listed unfiltered
	for _, c := range columns {
		rows = append(rows, Row{
			Item:   models.ColumnItem(node.id, schema, tbl.Name, c.Name),
			Depth:  4,
			Label:  c.Name,
			Detail: c.DataType,
		})
	}
	return rows
}

func lowerCategory(c models.ObjectCategory) string {
	switch c {
	case models.CategoryTables:
		return "tables"
	case models.CategoryViews:
		return "views"
	case models.CategoryFunctions:
		return "functions"
	case models.CategoryTriggers:
		return "triggers"
	case models.CategorySequences:
		return "sequences"
	case models.CategoryIndexes:
		return "indexes"
	default:
		return "objects"
	}
}
