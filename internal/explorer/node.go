package explorer

import "github.com/rebeliceyang/lazyexplorer/internal/models"

type columnKey struct {
	schema string
	table  string
}

// ConnectionNode holds the cached metadata of one open connection.
// A missing map entry means "not fetched yet"; an empty slice means
// "fetched, nothing there".
type ConnectionNode struct {
	id        string
	name      string
	connected bool

	schemas   []models.Schema
	tables    map[string][]models.Table
	views     map[string][]models.View
	functions map[string][]models.Function
	triggers  map[string][]models.Trigger
	sequences map[string][]models.Sequence
	indexes   map[string][]models.Index
	columns   map[columnKey][]models.Column
	counts    map[string]models.ObjectCounts
}

func newConnectionNode(id, name string) *ConnectionNode {
	return &ConnectionNode{
		id:        id,
		name:      name,
		tables:    make(map[string][]models.Table),
		views:     make(map[string][]models.View),
		functions: make(map[string][]models.Function),
		triggers:  make(map[string][]models.Trigger),
		sequences: make(map[string][]models.Sequence),
		indexes:   make(map[string][]models.Index),
		columns:   make(map[columnKey][]models.Column),
		counts:    make(map[string]models.ObjectCounts),
	}
}

func (n *ConnectionNode) ID() string      { return n.id }
func (n *ConnectionNode) Name() string    { return n.name }
func (n *ConnectionNode) Connected() bool { return n.connected }

// Schemas returns the schema list in server order
func (n *ConnectionNode) Schemas() []models.Schema { return n.schemas }

func (n *ConnectionNode) Tables(schema string) ([]models.Table, bool) {
	v, ok := n.tables[schema]
	return v, ok
}

func (n *ConnectionNode) Columns(schema, table string) ([]models.Column, bool) {
	v, ok := n.columns[columnKey{schema, table}]
	return v, ok
}

func (n *ConnectionNode) Views(schema string) ([]models.View, bool) {
	v, ok := n.views[schema]
	return v, ok
}

func (n *ConnectionNode) Functions(schema string) ([]models.Function, bool) {
	v, ok := n.functions[schema]
	return v, ok
}

func (n *ConnectionNode) Triggers(schema string) ([]models.Trigger, bool) {
	v, ok := n.triggers[schema]
	return v, ok
}

func (n *ConnectionNode) Sequences(schema string) ([]models.Sequence, bool) {
	v, ok := n.sequences[schema]
	return v, ok
}

func (n *ConnectionNode) Indexes(schema string) ([]models.Index, bool) {
	v, ok := n.indexes[schema]
	return v, ok
}

// Counts returns the object counts fetched for schema
func (n *ConnectionNode) Counts(schema string) (models.ObjectCounts, bool) {
	v, ok := n.counts[schema]
	return v, ok
}

// categoryLoaded reports whether the member list behind category is cached.
// The system catalog has no backing list and is never loaded.
func (n *ConnectionNode) categoryLoaded(schema string, category models.ObjectCategory) bool {
	var ok bool
	switch category {
	case models.CategoryTables:
		_, ok = n.tables[schema]
	case models.CategoryViews:
		_, ok = n.views[schema]
	case models.CategoryFunctions:
		_, ok = n.functions[schema]
	case models.CategoryTriggers:
		_, ok = n.triggers[schema]
	case models.CategorySequences:
		_, ok = n.sequences[schema]
	case models.CategoryIndexes:
		_, ok = n.indexes[schema]
	}
	return ok
}

// memberNames lists the names of the cached members of category
func (n *ConnectionNode) memberNames(schema string, category models.ObjectCategory) []string {
	var names []string
	switch category {
	case models.CategoryTables:
		for _, t := range n.tables[schema] {
			names = append(names, t.Name)
		}
	case models.CategoryViews:
		for _, v := range n.views[schema] {
			names = append(names, v.Name)
		}
	case models.CategoryFunctions:
		for _, f := range n.functions[schema] {
			names = append(names, f.Name)
		}
	case models.CategoryTriggers:
		for _, t := range n.triggers[schema] {
			names = append(names, t.Name)
		}
	case models.CategorySequences:
		for _, s := range n.sequences[schema] {
			names = append(names, s.Name)
		}
	case models.CategoryIndexes:
		for _, i := range n.indexes[schema] {
			names = append(names, i.Name)
		}
	}
	return names
}

// categoryCount is the number shown beside a category row. Fetched
// counts win; without them the length of the loaded list is used.
func (n *ConnectionNode) categoryCount(schema string, category models.ObjectCategory) int {
	if category == models.CategorySystemCatalog {
		return 0
	}
	if counts, ok := n.counts[schema]; ok {
		return category.Count(counts)
	}
	return len(n.memberNames(schema, category))
}
