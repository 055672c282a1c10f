package models

// ItemKind tags the variant held by a TreeItem
type ItemKind int

const (
	ItemNone ItemKind = iota
	ItemSavedConnection
	ItemConnection
	ItemSchema
	ItemCategory
	ItemTable
	ItemView
	ItemFunction
	ItemTrigger
	ItemSequence
	ItemIndex
	ItemColumn
)

func (k ItemKind) String() string {
	switch k {
	case ItemSavedConnection:
		return "saved connection"
	case ItemConnection:
		return "connection"
	case ItemSchema:
		return "schema"
	case ItemCategory:
		return "category"
	case ItemTable:
		return "table"
	case ItemView:
		return "view"
	case ItemFunction:
		return "function"
	case ItemTrigger:
		return "trigger"
	case ItemSequence:
		return "sequence"
	case ItemIndex:
		return "index"
	case ItemColumn:
		return "column"
	default:
		return "none"
	}
}

// TreeItem identifies one element of the explorer tree.
// Only the fields meaningful for Kind are set, so two items are
// equal exactly when they point at the same element.
type TreeItem struct {
	Kind         ItemKind
	ConnectionID string
	Schema       string
	Category     ObjectCategory
	Table        string // owning table for columns, triggers and indexes
	Name         string
}

// IsZero reports whether the item is the empty selection
func (i TreeItem) IsZero() bool {
	return i.Kind == ItemNone
}

func SavedConnectionItem(id string) TreeItem {
	return TreeItem{Kind: ItemSavedConnection, ConnectionID: id}
}

func ConnectionItem(id string) TreeItem {
	return TreeItem{Kind: ItemConnection, ConnectionID: id}
}

func SchemaItem(id, schema string) TreeItem {
	return TreeItem{Kind: ItemSchema, ConnectionID: id, Schema: schema}
}

func CategoryItem(id, schema string, category ObjectCategory) TreeItem {
	return TreeItem{Kind: ItemCategory, ConnectionID: id, Schema: schema, Category: category}
}

func TableItem(id, schema, table string) TreeItem {
	return TreeItem{Kind: ItemTable, ConnectionID: id, Schema: schema, Name: table}
}

func ViewItem(id, schema, view string) TreeItem {
	return TreeItem{Kind: ItemView, ConnectionID: id, Schema: schema, Name: view}
}

func FunctionItem(id, schema, function string) TreeItem {
	return TreeItem{Kind: ItemFunction, ConnectionID: id, Schema: schema, Name: function}
}

func TriggerItem(id, schema, table, trigger string) TreeItem {
	return TreeItem{Kind: ItemTrigger, ConnectionID: id, Schema: schema, Table: table, Name: trigger}
}

func SequenceItem(id, schema, sequence string) TreeItem {
	return TreeItem{Kind: ItemSequence, ConnectionID: id, Schema: schema, Name: sequence}
}

func IndexItem(id, schema, table, index string) TreeItem {
	return TreeItem{Kind: ItemIndex, ConnectionID: id, Schema: schema, Table: table, Name: index}
}

func ColumnItem(id, schema, table, column string) TreeItem {
	return TreeItem{Kind: ItemColumn, ConnectionID: id, Schema: schema, Table: table, Name: column}
}

// ConnectionAction is a request from a tree row to the controller
type ConnectionAction int

const (
	ActionConnect ConnectionAction = iota
	ActionEdit
	ActionDuplicate
	ActionDelete
	ActionCopyURL
)

func (a ConnectionAction) String() string {
	switch a {
	case ActionConnect:
		return "connect"
	case ActionEdit:
		return "edit"
	case ActionDuplicate:
		return "duplicate"
	case ActionDelete:
		return "delete"
	case ActionCopyURL:
		return "copy-url"
	default:
		return "unknown"
	}
}

// PendingAction is an action waiting for the controller
type PendingAction struct {
	Action       ConnectionAction
	ConnectionID string
}
