// Package explorer holds the lazily populated metadata tree shown in the
// explorer panel.
//
// The tree performs no I/O. Expanding a row whose data is not cached
// records a fetch request; the owner drains those requests, runs the
// queries elsewhere and feeds the results back through the setters.
// A MetadataTree is not safe for concurrent use and has a single owner.
package explorer

import (
	"cmp"
	"slices"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// MetadataTree is the explorer state: cached metadata per connection,
// expansion flags, fetch queues, search filter and selection.
type MetadataTree struct {
	connections map[string]*ConnectionNode
	order       []string
	saved       []models.ConnectionConfig

	expanded expansion
	queues   fetchQueues
	filter   searchFilter

	selected models.TreeItem
	actions  []models.PendingAction
	loading  bool
}

// New creates an empty tree
func New() *MetadataTree {
	return &MetadataTree{
		connections: make(map[string]*ConnectionNode),
		expanded:    newExpansion(),
	}
}

// AddConnection creates an empty node for id. Re-adding an existing id
// replaces the node and discards everything cached for it.
func (t *MetadataTree) AddConnection(id, name string) {
	if _, ok := t.connections[id]; !ok {
		t.order = append(t.order, id)
	}
	t.connections[id] = newConnectionNode(id, name)
}

// RemoveConnection drops the node and every expansion flag it owns
func (t *MetadataTree) RemoveConnection(id string) {
	if _, ok := t.connections[id]; !ok {
		t.expanded.prune(id)
		return
	}
	delete(t.connections, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.expanded.prune(id)
	if t.selected.ConnectionID == id {
		t.selected = models.TreeItem{}
	}
}

// Connection returns the node for id
func (t *MetadataTree) Connection(id string) (*ConnectionNode, bool) {
	n, ok := t.connections[id]
	return n, ok
}

// ConnectionIDs returns the active connection ids in insertion order
func (t *MetadataTree) ConnectionIDs() []string {
	return append([]string(nil), t.order...)
}

// SetConnectionStatus marks an active connection as connected or not
func (t *MetadataTree) SetConnectionStatus(id string, connected bool) {
	if n, ok := t.connections[id]; ok {
		n.connected = connected
	}
}

// SetSchemas replaces the schema list and clears the loading indicator
func (t *MetadataTree) SetSchemas(id string, schemas []models.Schema) {
	if n, ok := t.connections[id]; ok {
		n.schemas = schemas
		t.loading = false
	}
}

func (t *MetadataTree) SetTables(id, schema string, tables []models.Table) {
	if n, ok := t.connections[id]; ok {
		n.tables[schema] = orEmpty(tables)
	}
}

func (t *MetadataTree) SetColumns(id, schema, table string, columns []models.Column) {
	if n, ok := t.connections[id]; ok {
		n.columns[columnKey{schema, table}] = orEmpty(columns)
	}
}

func (t *MetadataTree) SetViews(id, schema string, views []models.View) {
	if n, ok := t.connections[id]; ok {
		n.views[schema] = orEmpty(views)
	}
}

func (t *MetadataTree) SetFunctions(id, schema string, functions []models.Function) {
	if n, ok := t.connections[id]; ok {
		n.functions[schema] = orEmpty(functions)
	}
}

func (t *MetadataTree) SetTriggers(id, schema string, triggers []models.Trigger) {
	if n, ok := t.connections[id]; ok {
		n.triggers[schema] = orEmpty(triggers)
	}
}

func (t *MetadataTree) SetSequences(id, schema string, sequences []models.Sequence) {
	if n, ok := t.connections[id]; ok {
		n.sequences[schema] = orEmpty(sequences)
	}
}

func (t *MetadataTree) SetIndexes(id, schema string, indexes []models.Index) {
	if n, ok := t.connections[id]; ok {
		n.indexes[schema] = orEmpty(indexes)
	}
}

func (t *MetadataTree) SetObjectCounts(id, schema string, counts models.ObjectCounts) {
	if n, ok := t.connections[id]; ok {
		n.counts[schema] = counts
	}
}

// orEmpty keeps a nil result distinguishable from "never fetched"
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// SetSavedConnections replaces the saved connection list
func (t *MetadataTree) SetSavedConnections(saved []models.ConnectionConfig) {
	t.saved = append([]models.ConnectionConfig(nil), saved...)
}

// RefreshSavedConnections replaces the saved list and forgets the
// expansion state of saved entries that no longer exist
func (t *MetadataTree) RefreshSavedConnections(saved []models.ConnectionConfig) {
	t.SetSavedConnections(saved)
	keep := make(map[string]struct{}, len(saved))
	for _, c := range saved {
		keep[c.ID] = struct{}{}
	}
	for id := range t.expanded.saved {
		if _, ok := keep[id]; !ok {
			delete(t.expanded.saved, id)
		}
	}
}

// SavedConnections returns the saved connection list
func (t *MetadataTree) SavedConnections() []models.ConnectionConfig {
	return t.saved
}

func (t *MetadataTree) SetLoading(loading bool) { t.loading = loading }
func (t *MetadataTree) IsLoading() bool         { return t.loading }

// Clear drops every connection, expansion flag and the selection
func (t *MetadataTree) Clear() {
	t.connections = make(map[string]*ConnectionNode)
	t.order = nil
	t.expanded.collapse()
	t.selected = models.TreeItem{}
}

// IsExpanded reports whether item is open
func (t *MetadataTree) IsExpanded(item models.TreeItem) bool {
	return t.expanded.isOpen(item)
}

// Toggle flips the expanded state of item and returns the new state
func (t *MetadataTree) Toggle(item models.TreeItem) bool {
	open := !t.expanded.isOpen(item)
	t.SetExpanded(item, open)
	return t.expanded.isOpen(item)
}

// SetExpanded opens or closes item. Opening a closed row whose data is
// not cached queues a fetch; nothing else does.
func (t *MetadataTree) SetExpanded(item models.TreeItem, open bool) {
	var node *ConnectionNode
	switch item.Kind {
	case models.ItemSchema, models.ItemCategory, models.ItemTable:
		var ok bool
		if node, ok = t.connections[item.ConnectionID]; !ok {
			return
		}
	}

	wasOpen, ok := t.expanded.set(item, open)
	if !ok || !open || wasOpen || node == nil {
		return
	}

	switch item.Kind {
	case models.ItemSchema:
		t.needTables(node, item.Schema)
	case models.ItemCategory:
		switch item.Category {
		case models.CategoryTables:
			t.needTables(node, item.Schema)
		case models.CategorySystemCatalog:
			t.queues.objects = append(t.queues.objects, ObjectFetch{node.id, item.Schema, item.Category})
		default:
			if !node.categoryLoaded(item.Schema, item.Category) {
				t.queues.objects = append(t.queues.objects, ObjectFetch{node.id, item.Schema, item.Category})
			}
		}
	case models.ItemTable:
		if _, ok := node.columns[columnKey{item.Schema, item.Name}]; !ok {
			t.queues.columns = append(t.queues.columns, ColumnFetch{node.id, item.Schema, item.Name})
		}
	}
}

// OpenItems returns the open schema, category and table rows of
// connection id, parents before children so that reopening them in
// order walks the tree top down.
func (t *MetadataTree) OpenItems(id string) []models.TreeItem {
	schemas, categories, tables := t.expanded.openItems(id)
	for _, items := range [][]models.TreeItem{schemas, categories, tables} {
		slices.SortFunc(items, func(a, b models.TreeItem) int {
			if c := cmp.Compare(a.Schema, b.Schema); c != 0 {
				return c
			}
			if c := cmp.Compare(a.Category, b.Category); c != 0 {
				return c
			}
			return cmp.Compare(a.Name, b.Name)
		})
	}
	out := make([]models.TreeItem, 0, len(schemas)+len(categories)+len(tables))
	out = append(out, schemas...)
	out = append(out, categories...)
	return append(out, tables...)
}

func (t *MetadataTree) needTables(node *ConnectionNode, schema string) {
	if _, ok := node.tables[schema]; !ok {
		t.queues.tables = append(t.queues.tables, TableFetch{node.id, schema})
	}
}

// ExpandAll opens every active connection, schema and loaded table.
// Schemas and tables without cached data are queued for loading.
func (t *MetadataTree) ExpandAll() {
	for _, id := range t.order {
		node := t.connections[id]
		t.SetExpanded(models.ConnectionItem(id), true)
		if t.isSaved(id) {
			t.SetExpanded(models.SavedConnectionItem(id), true)
		}
		for _, s := range node.schemas {
			t.SetExpanded(models.SchemaItem(id, s.Name), true)
		}
		for _, s := range node.schemas {
			for _, tbl := range node.tables[s.Name] {
				t.SetExpanded(models.TableItem(id, s.Name, tbl.Name), true)
			}
		}
	}
}

// CollapseAll closes every row
func (t *MetadataTree) CollapseAll() {
	t.expanded.collapse()
}

func (t *MetadataTree) isSaved(id string) bool {
	for _, c := range t.saved {
		if c.ID == id {
			return true
		}
	}
	return false
}
