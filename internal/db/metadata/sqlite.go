package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// SQLite reads sqlite_master and the table-valued pragmas.
// Attached databases are presented as schemas.
type SQLite struct {
	q connection.Querier
}

func NewSQLite(q connection.Querier) *SQLite {
	return &SQLite{q: q}
}

// master names the sqlite_master table of an attached database
func master(schema string) string {
	return pgx.Identifier{schema, "sqlite_master"}.Sanitize()
}

func (s *SQLite) Schemas(ctx context.Context) ([]models.Schema, error) {
	rows, err := s.q.Query(ctx, `SELECT name FROM pragma_database_list ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	schemas := make([]models.Schema, 0, len(rows))
	for _, row := range rows {
		schemas = append(schemas, models.Schema{Name: toString(row["name"])})
	}
	return schemas, nil
}

func (s *SQLite) Tables(ctx context.Context, schema string) ([]models.Table, error) {
	query := fmt.Sprintf(`SELECT name FROM %s
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%%'
		ORDER BY name`, master(schema))
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]models.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, models.Table{Schema: schema, Name: toString(row["name"])})
	}
	return tables, nil
}

func (s *SQLite) Columns(ctx context.Context, schema, table string) ([]models.Column, error) {
	rows, err := s.q.Query(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?, ?) ORDER BY cid`,
		table, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columns := make([]models.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, models.Column{
			Name:       toString(row["name"]),
			DataType:   toString(row["type"]),
			Nullable:   !toBool(row["notnull"]),
			Default:    toStringPtr(row["dflt_value"]),
			PrimaryKey: toInt64(row["pk"]) > 0,
		})
	}
	return columns, nil
}

func (s *SQLite) Views(ctx context.Context, schema string) ([]models.View, error) {
	query := fmt.Sprintf(`SELECT name, sql FROM %s WHERE type = 'view' ORDER BY name`, master(schema))
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}

	views := make([]models.View, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.View{
			Schema:     schema,
			Name:       toString(row["name"]),
			Definition: toString(row["sql"]),
		})
	}
	return views, nil
}

// Functions is always empty; SQLite has no stored routines
func (s *SQLite) Functions(ctx context.Context, schema string) ([]models.Function, error) {
	return []models.Function{}, nil
}

func (s *SQLite) Triggers(ctx context.Context, schema string) ([]models.Trigger, error) {
	query := fmt.Sprintf(`SELECT name, tbl_name, sql FROM %s WHERE type = 'trigger' ORDER BY tbl_name, name`, master(schema))
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}

	triggers := make([]models.Trigger, 0, len(rows))
	for _, row := range rows {
		timing, events := parseTriggerSQL(toString(row["sql"]))
		triggers = append(triggers, models.Trigger{
			Schema: schema,
			Name:   toString(row["name"]),
			Table:  toString(row["tbl_name"]),
			Timing: timing,
			Events: events,
			Level:  "ROW",
		})
	}
	return triggers, nil
}

// parseTriggerSQL extracts timing and events from a CREATE TRIGGER statement
func parseTriggerSQL(sql string) (string, []string) {
	// only the header before the body matters
	upper := strings.ToUpper(sql)
	if i := strings.Index(upper, " BEGIN"); i >= 0 {
		upper = upper[:i]
	}
	fields := strings.Fields(upper)

	timing := "BEFORE"
	switch {
	case containsSeq(fields, "INSTEAD", "OF"):
		timing = "INSTEAD_OF"
	case containsSeq(fields, "AFTER"):
		timing = "AFTER"
	}

	var events []string
	for _, ev := range []string{"INSERT", "UPDATE", "DELETE"} {
		if containsSeq(fields, ev) {
			events = append(events, ev)
		}
	}
	return timing, events
}

func containsSeq(fields []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(fields); i++ {
		match := true
		for j, s := range seq {
			if fields[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Sequences reports AUTOINCREMENT counters from sqlite_sequence
func (s *SQLite) Sequences(ctx context.Context, schema string) ([]models.Sequence, error) {
	exists, err := s.q.Query(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE type = 'table' AND name = 'sqlite_sequence'`, master(schema)))
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}
	if len(exists) == 0 {
		return []models.Sequence{}, nil
	}

	query := fmt.Sprintf(`SELECT name, seq FROM %s ORDER BY name`, pgx.Identifier{schema, "sqlite_sequence"}.Sanitize())
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}

	sequences := make([]models.Sequence, 0, len(rows))
	for _, row := range rows {
		name := toString(row["name"])
		sequences = append(sequences, models.Sequence{
			Schema:     schema,
			Name:       name,
			DataType:   "INTEGER",
			Start:      1,
			Min:        1,
			Max:        1<<63 - 1,
			Increment:  1,
			LastValue:  toInt64Ptr(row["seq"]),
			OwnerTable: name,
		})
	}
	return sequences, nil
}

func (s *SQLite) Indexes(ctx context.Context, schema string) ([]models.Index, error) {
	query := fmt.Sprintf(`
		SELECT
			m.name as name,
			m.tbl_name as table_name,
			il."unique" as is_unique,
			il.origin as origin,
			il.partial as is_partial,
			(SELECT group_concat(ii.name, ',') FROM pragma_index_info(m.name, ?) ii) as columns
		FROM %s m
		JOIN pragma_index_list(m.tbl_name, ?) il ON il.name = m.name
		WHERE m.type = 'index'
		ORDER BY m.tbl_name, m.name`, master(schema))
	rows, err := s.q.Query(ctx, query, schema, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}

	indexes := make([]models.Index, 0, len(rows))
	for _, row := range rows {
		indexes = append(indexes, models.Index{
			Schema:  schema,
			Name:    toString(row["name"]),
			Table:   toString(row["table_name"]),
			Type:    "btree",
			Columns: toStringSlice(row["columns"]),
			Unique:  toBool(row["is_unique"]),
			Primary: toString(row["origin"]) == "pk",
			Partial: toBool(row["is_partial"]),
		})
	}
	return indexes, nil
}

func (s *SQLite) ObjectCounts(ctx context.Context, schema string) (models.ObjectCounts, error) {
	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(type = 'table' AND name NOT LIKE 'sqlite_%%'), 0) as tables,
			COALESCE(SUM(type = 'view'), 0) as views,
			COALESCE(SUM(type = 'trigger'), 0) as triggers,
			COALESCE(SUM(type = 'index'), 0) as indexes
		FROM %s`, master(schema))
	row, err := s.q.QueryRow(ctx, query)
	if err != nil {
		return models.ObjectCounts{}, fmt.Errorf("failed to count objects in %s: %w", schema, err)
	}
	counts := countsFromRow(row)

	sequences, err := s.Sequences(ctx, schema)
	if err != nil {
		return models.ObjectCounts{}, err
	}
	counts.Sequences = len(sequences)
	return counts, nil
}
