package explorer

import (
	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

type schemaFlag struct {
	id, schema string
}

type categoryFlag struct {
	id, schema string
	category   models.ObjectCategory
}

type tableFlag struct {
	id, schema, table string
}

// expansion records which collapsible rows are open. Flags are
// independent of whether the data behind a row has been loaded.
type expansion struct {
	saved       map[string]bool // connection id
	connections map[string]bool // connection id
	schemas     map[schemaFlag]bool
	categories  map[categoryFlag]bool
	tables      map[tableFlag]bool
}

func newExpansion() expansion {
	return expansion{
		saved:       make(map[string]bool),
		connections: make(map[string]bool),
		schemas:     make(map[schemaFlag]bool),
		categories:  make(map[categoryFlag]bool),
		tables:      make(map[tableFlag]bool),
	}
}

func (e *expansion) isOpen(item models.TreeItem) bool {
	switch item.Kind {
	case models.ItemSavedConnection:
		return e.saved[item.ConnectionID]
	case models.ItemConnection:
		return e.connections[item.ConnectionID]
	case models.ItemSchema:
		return e.schemas[schemaFlag{item.ConnectionID, item.Schema}]
	case models.ItemCategory:
		return e.categories[categoryFlag{item.ConnectionID, item.Schema, item.Category}]
	case models.ItemTable:
		return e.tables[tableFlag{item.ConnectionID, item.Schema, item.Name}]
	default:
		return false
	}
}

// set stores the flag of item. ok is false for rows that cannot expand.
func (e *expansion) set(item models.TreeItem, open bool) (wasOpen, ok bool) {
	switch item.Kind {
	case models.ItemSavedConnection:
		return setFlag(e.saved, item.ConnectionID, open), true
	case models.ItemConnection:
		return setFlag(e.connections, item.ConnectionID, open), true
	case models.ItemSchema:
		return setFlag(e.schemas, schemaFlag{item.ConnectionID, item.Schema}, open), true
	case models.ItemCategory:
		return setFlag(e.categories, categoryFlag{item.ConnectionID, item.Schema, item.Category}, open), true
	case models.ItemTable:
		return setFlag(e.tables, tableFlag{item.ConnectionID, item.Schema, item.Name}, open), true
	default:
		return false, false
	}
}

func setFlag[K comparable](m map[K]bool, key K, open bool) bool {
	was := m[key]
	if open {
		m[key] = true
	} else {
		delete(m, key)
	}
	return was
}

// openItems returns the open schema, category and table rows of id
func (e *expansion) openItems(id string) (schemas, categories, tables []models.TreeItem) {
	for k := range e.schemas {
		if k.id == id {
			schemas = append(schemas, models.SchemaItem(id, k.schema))
		}
	}
	for k := range e.categories {
		if k.id == id {
			categories = append(categories, models.CategoryItem(id, k.schema, k.category))
		}
	}
	for k := range e.tables {
		if k.id == id {
			tables = append(tables, models.TableItem(id, k.schema, k.table))
		}
	}
	return schemas, categories, tables
}

// prune drops every flag owned by connection id
func (e *expansion) prune(id string) {
	delete(e.saved, id)
	delete(e.connections, id)
	for k := range e.schemas {
		if k.id == id {
			delete(e.schemas, k)
		}
	}
	for k := range e.categories {
		if k.id == id {
			delete(e.categories, k)
		}
	}
	for k := range e.tables {
		if k.id == id {
			delete(e.tables, k)
		}
	}
}

// collapse closes everything
func (e *expansion) collapse() {
	clear(e.saved)
	clear(e.connections)
	clear(e.schemas)
	clear(e.categories)
	clear(e.tables)
}

// size is the number of open rows
func (e *expansion) size() int {
	return len(e.saved) + len(e.connections) + len(e.schemas) + len(e.categories) + len(e.tables)
}
