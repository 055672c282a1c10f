package models

// Schema represents a database schema
type Schema struct {
	Name  string
	Owner string
}

// Table represents a base table
type Table struct {
	Schema  string
	Name    string
	Comment string
}

// Column represents a table column
type Column struct {
	Name       string
	DataType   string
	Nullable   bool
	Default    *string
	PrimaryKey bool
	Comment    string
}

// ViewType distinguishes plain and materialized views
type ViewType int

const (
	RegularView ViewType = iota
	MaterializedView
)

func (t ViewType) String() string {
	if t == MaterializedView {
		return "MATERIALIZED VIEW"
	}
	return "VIEW"
}

// View represents a view or materialized view
type View struct {
	Schema     string
	Name       string
	Type       ViewType
	Owner      string
	Comment    string
	Definition string
}

// FunctionType distinguishes routine kinds
type FunctionType int

const (
	PlainFunction FunctionType = iota
	Procedure
	Aggregate
	WindowFunction
)

func (t FunctionType) String() string {
	switch t {
	case Procedure:
		return "PROCEDURE"
	case Aggregate:
		return "AGGREGATE"
	case WindowFunction:
		return "WINDOW"
	default:
		return "FUNCTION"
	}
}

// Function represents a function or procedure
type Function struct {
	Schema     string
	Name       string
	Type       FunctionType
	Arguments  string
	ReturnType string
	Language   string
	Owner      string
	Comment    string
}

// Trigger represents a table trigger
type Trigger struct {
	Schema         string
	Name           string
	Table          string
	Timing         string // BEFORE, AFTER, INSTEAD_OF
	Events         []string
	Level          string // ROW or STATEMENT
	FunctionSchema string
	FunctionName   string
	Comment        string
}

// Sequence represents a sequence generator
type Sequence struct {
	Schema     string
	Name       string
	DataType   string
	Start      int64
	Min        int64
	Max        int64
	Increment  int64
	Cycle      bool
	LastValue  *int64
	OwnerTable string
	Comment    string
}

// Index represents a table index
type Index struct {
	Schema  string
	Name    string
	Table   string
	Type    string // btree, hash, gin, gist, brin, spgist
	Columns []string
	Unique  bool
	Primary bool
	Partial bool
	Size    string
	Comment string
}

// ObjectCounts holds the number of objects of each kind in one schema
type ObjectCounts struct {
	Tables            int
	Views             int
	MaterializedViews int
	Functions         int
	Procedures        int
	Triggers          int
	Sequences         int
	Indexes           int
}

// Total returns the sum over every kind
func (c ObjectCounts) Total() int {
	return c.Tables + c.Views + c.MaterializedViews + c.Functions +
		c.Procedures + c.Triggers + c.Sequences + c.Indexes
}

// ObjectCategory is a grouping row rendered under a schema
type ObjectCategory int

const (
	CategoryTables ObjectCategory = iota
	CategoryViews
	CategoryFunctions
	CategoryTriggers
	CategorySequences
	CategoryIndexes
	CategorySystemCatalog
)

// Categories lists every category in display order
var Categories = []ObjectCategory{
	CategoryTables,
	CategoryViews,
	CategoryFunctions,
	CategoryTriggers,
	CategorySequences,
	CategoryIndexes,
	CategorySystemCatalog,
}

func (c ObjectCategory) String() string {
	switch c {
	case CategoryTables:
		return "Tables"
	case CategoryViews:
		return "Views"
	case CategoryFunctions:
		return "Functions"
	case CategoryTriggers:
		return "Triggers"
	case CategorySequences:
		return "Sequences"
	case CategoryIndexes:
		return "Indexes"
	case CategorySystemCatalog:
		return "System Catalog"
	default:
		return "Unknown"
	}
}

// Count returns the number of objects counts attributes to the category.
// Views include materialized views and Functions include procedures.
func (c ObjectCategory) Count(counts ObjectCounts) int {
	switch c {
	case CategoryTables:
		return counts.Tables
	case CategoryViews:
		return counts.Views + counts.MaterializedViews
	case CategoryFunctions:
		return counts.Functions + counts.Procedures
	case CategoryTriggers:
		return counts.Triggers
	case CategorySequences:
		return counts.Sequences
	case CategoryIndexes:
		return counts.Indexes
	default:
		return 0
	}
}
