package explorer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// Detail is one key/value fact about a tree item
type Detail struct {
	Key   string
	Value string
}

// Details describes item from the cached metadata. Items that are not
// cached yield nil.
func (t *MetadataTree) Details(item models.TreeItem) []Detail {
	node, ok := t.connections[item.ConnectionID]
	if !ok {
		if item.Kind == models.ItemSavedConnection {
			return t.savedDetails(item.ConnectionID)
		}
		return nil
	}

	switch item.Kind {
	case models.ItemSavedConnection, models.ItemConnection:
		d := []Detail{{"Name", node.name}, {"Status", status(node.connected)}, {"Schemas", strconv.Itoa(len(node.schemas))}}
		if saved := t.savedDetails(item.ConnectionID); saved != nil {
			d = append(d, saved[1:]...)
		}
		return d
	case models.ItemSchema:
		for _, s := range node.schemas {
			if s.Name == item.Schema {
				d := []Detail{{"Schema", s.Name}, {"Owner", orDash(s.Owner)}}
				if counts, ok := node.counts[s.Name]; ok {
					d = append(d, Detail{"Objects", strconv.Itoa(counts.Total())})
				}
				return d
			}
		}
	case models.ItemCategory:
		return []Detail{
			{"Category", item.Category.String()},
			{"Count", strconv.Itoa(node.categoryCount(item.Schema, item.Category))},
			{"Loaded", strconv.FormatBool(node.categoryLoaded(item.Schema, item.Category))},
		}
	case models.ItemTable:
		for _, tbl := range node.tables[item.Schema] {
			if tbl.Name == item.Name {
				d := []Detail{{"Table", tbl.Name}, {"Schema", item.Schema}, {"Comment", orDash(tbl.Comment)}}
				if cols, ok := node.columns[columnKey{item.Schema, tbl.Name}]; ok {
					d = append(d, Detail{"Columns", strconv.Itoa(len(cols))})
				}
				return d
			}
		}
	case models.ItemColumn:
		for _, c := range node.columns[columnKey{item.Schema, item.Table}] {
			if c.Name == item.Name {
				def := "-"
				if c.Default != nil {
					def = *c.Default
				}
				return []Detail{
					{"Column", c.Name},
					{"Type", c.DataType},
					{"Nullable", yesNo(c.Nullable)},
					{"Default", def},
					{"Primary key", yesNo(c.PrimaryKey)},
					{"Comment", orDash(c.Comment)},
				}
			}
		}
	case models.ItemView:
		for _, v := range node.views[item.Schema] {
			if v.Name == item.Name {
				return []Detail{{"View", v.Name}, {"Type", v.Type.String()}, {"Owner", orDash(v.Owner)}, {"Comment", orDash(v.Comment)}}
			}
		}
	case models.ItemFunction:
		for _, f := range node.functions[item.Schema] {
			if f.Name == item.Name {
				return []Detail{
					{"Function", f.Name},
					{"Type", f.Type.String()},
					{"Arguments", orDash(f.Arguments)},
					{"Returns", orDash(f.ReturnType)},
					{"Language", orDash(f.Language)},
					{"Owner", orDash(f.Owner)},
				}
			}
		}
	case models.ItemTrigger:
		for _, tr := range node.triggers[item.Schema] {
			if tr.Name == item.Name && tr.Table == item.Table {
				return []Detail{
					{"Trigger", tr.Name},
					{"Table", tr.Table},
					{"Timing", tr.Timing},
					{"Events", strings.Join(tr.Events, ", ")},
					{"Level", tr.Level},
					{"Function", qualified(tr.FunctionSchema, tr.FunctionName)},
				}
			}
		}
	case models.ItemSequence:
		for _, sq := range node.sequences[item.Schema] {
			if sq.Name == item.Name {
				last := "-"
				if sq.LastValue != nil {
					last = strconv.FormatInt(*sq.LastValue, 10)
				}
				return []Detail{
					{"Sequence", sq.Name},
					{"Type", orDash(sq.DataType)},
					{"Range", fmt.Sprintf("%d..%d", sq.Min, sq.Max)},
					{"Increment", strconv.FormatInt(sq.Increment, 10)},
					{"Cycle", yesNo(sq.Cycle)},
					{"Last value", last},
					{"Owned by", orDash(sq.OwnerTable)},
				}
			}
		}
	case models.ItemIndex:
		for _, ix := range node.indexes[item.Schema] {
			if ix.Name == item.Name && ix.Table == item.Table {
				return []Detail{
					{"Index", ix.Name},
					{"Table", ix.Table},
					{"Method", orDash(ix.Type)},
					{"Columns", strings.Join(ix.Columns, ", ")},
					{"Unique", yesNo(ix.Unique)},
					{"Primary", yesNo(ix.Primary)},
					{"Partial", yesNo(ix.Partial)},
					{"Size", orDash(ix.Size)},
				}
			}
		}
	}
	return nil
}

func (t *MetadataTree) savedDetails(id string) []Detail {
	for _, c := range t.saved {
		if c.ID == id {
			return []Detail{{"Name", c.Name}, {"Driver", c.Driver.String()}, {"Location", c.Info()}}
		}
	}
	return nil
}

func status(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func qualified(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}
