package explorer

import "github.com/rebeliceyang/lazyexplorer/internal/models"

// TableFetch asks for the tables of one schema
type TableFetch struct {
	ConnectionID string
	Schema       string
}

// ObjectFetch asks for the members of one non-table category
type ObjectFetch struct {
	ConnectionID string
	Schema       string
	Category     models.ObjectCategory
}

// ColumnFetch asks for the columns of one table
type ColumnFetch struct {
	ConnectionID string
	Schema       string
	Table        string
}

// fetchQueues collect load requests produced by expansion until the
// controller drains them. Entries are never deduplicated.
type fetchQueues struct {
	tables  []TableFetch
	objects []ObjectFetch
	columns []ColumnFetch
}

// SchemasNeedingTables drains the table fetch queue
func (t *MetadataTree) SchemasNeedingTables() []TableFetch {
	q := t.queues.tables
	t.queues.tables = nil
	return q
}

// SchemasNeedingObjects drains the category fetch queue
func (t *MetadataTree) SchemasNeedingObjects() []ObjectFetch {
	q := t.queues.objects
	t.queues.objects = nil
	return q
}

// TablesNeedingColumns drains the column fetch queue
func (t *MetadataTree) TablesNeedingColumns() []ColumnFetch {
	q := t.queues.columns
	t.queues.columns = nil
	return q
}
