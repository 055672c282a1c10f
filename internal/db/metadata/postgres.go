package metadata

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// Postgres reads pg_catalog and information_schema
type Postgres struct {
	q connection.Querier
}

func NewPostgres(q connection.Querier) *Postgres {
	return &Postgres{q: q}
}

const pgSchemasQuery = `
	SELECT
		schema_name as name,
		schema_owner as owner
	FROM information_schema.schemata
	WHERE schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		AND schema_name NOT LIKE 'pg_temp_%'
		AND schema_name NOT LIKE 'pg_toast_temp_%'
	ORDER BY schema_name;
`

// Schemas returns all user schemas in the current database
func (p *Postgres) Schemas(ctx context.Context) ([]models.Schema, error) {
	rows, err := p.q.Query(ctx, pgSchemasQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	schemas := make([]models.Schema, 0, len(rows))
	for _, row := range rows {
		schemas = append(schemas, models.Schema{
			Name:  toString(row["name"]),
			Owner: toString(row["owner"]),
		})
	}
	return schemas, nil
}

const pgTablesQuery = `
	SELECT
		c.relname as name,
		COALESCE(obj_description(c.oid, 'pg_class'), '') as comment
	FROM pg_class c
	JOIN pg_namespace n ON n.oid = c.relnamespace
	WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
	ORDER BY c.relname;
`

// Tables returns the base and partitioned tables of a schema
func (p *Postgres) Tables(ctx context.Context, schema string) ([]models.Table, error) {
	rows, err := p.q.Query(ctx, pgTablesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]models.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, models.Table{
			Schema:  schema,
			Name:    toString(row["name"]),
			Comment: toString(row["comment"]),
		})
	}
	return tables, nil
}

const pgColumnsQuery = `
	SELECT
		a.attname as name,
		format_type(a.atttypid, a.atttypmod) as data_type,
		NOT a.attnotnull as is_nullable,
		pg_get_expr(d.adbin, d.adrelid) as default_value,
		COALESCE(i.indisprimary, false) as is_primary_key,
		COALESCE(col_description(c.oid, a.attnum), '') as comment
	FROM pg_attribute a
	JOIN pg_class c ON c.oid = a.attrelid
	JOIN pg_namespace n ON n.oid = c.relnamespace
	LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
	LEFT JOIN pg_index i ON i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY(i.indkey)
	WHERE n.nspname = $1 AND c.relname = $2
		AND a.attnum > 0 AND NOT a.attisdropped
	ORDER BY a.attnum;
`

// Columns returns the columns of a table in ordinal order
func (p *Postgres) Columns(ctx context.Context, schema, table string) ([]models.Column, error) {
	rows, err := p.q.Query(ctx, pgColumnsQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columns := make([]models.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, models.Column{
			Name:       toString(row["name"]),
			DataType:   toString(row["data_type"]),
			Nullable:   toBool(row["is_nullable"]),
			Default:    toStringPtr(row["default_value"]),
			PrimaryKey: toBool(row["is_primary_key"]),
			Comment:    toString(row["comment"]),
		})
	}
	return columns, nil
}

const pgViewsQuery = `
	SELECT
		c.relname as name,
		c.relkind = 'm' as materialized,
		pg_get_userbyid(c.relowner) as owner,
		COALESCE(obj_description(c.oid, 'pg_class'), '') as comment,
		pg_get_viewdef(c.oid) as definition
	FROM pg_class c
	JOIN pg_namespace n ON n.oid = c.relnamespace
	WHERE n.nspname = $1 AND c.relkind IN ('v', 'm')
	ORDER BY c.relname;
`

// Views returns regular and materialized views
func (p *Postgres) Views(ctx context.Context, schema string) ([]models.View, error) {
	rows, err := p.q.Query(ctx, pgViewsQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}

	views := make([]models.View, 0, len(rows))
	for _, row := range rows {
		v := models.View{
			Schema:     schema,
			Name:       toString(row["name"]),
			Owner:      toString(row["owner"]),
			Comment:    toString(row["comment"]),
			Definition: toString(row["definition"]),
		}
		if toBool(row["materialized"]) {
			v.Type = models.MaterializedView
		}
		views = append(views, v)
	}
	return views, nil
}

const pgFunctionsQuery = `
	SELECT
		p.proname as name,
		p.prokind::text as kind,
		pg_get_function_arguments(p.oid) as arguments,
		COALESCE(pg_get_function_result(p.oid), '') as return_type,
		l.lanname as language,
		pg_get_userbyid(p.proowner) as owner,
		COALESCE(obj_description(p.oid, 'pg_proc'), '') as comment
	FROM pg_proc p
	JOIN pg_namespace n ON n.oid = p.pronamespace
	JOIN pg_language l ON l.oid = p.prolang
	WHERE n.nspname = $1 AND p.prokind IN ('f', 'p', 'a', 'w')
	ORDER BY p.proname;
`

// Functions returns functions, procedures, aggregates and window functions
func (p *Postgres) Functions(ctx context.Context, schema string) ([]models.Function, error) {
	rows, err := p.q.Query(ctx, pgFunctionsQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}

	functions := make([]models.Function, 0, len(rows))
	for _, row := range rows {
		functions = append(functions, models.Function{
			Schema:     schema,
			Name:       toString(row["name"]),
			Type:       functionType(toString(row["kind"])),
			Arguments:  toString(row["arguments"]),
			ReturnType: toString(row["return_type"]),
			Language:   toString(row["language"]),
			Owner:      toString(row["owner"]),
			Comment:    toString(row["comment"]),
		})
	}
	return functions, nil
}

func functionType(kind string) models.FunctionType {
	switch kind {
	case "p":
		return models.Procedure
	case "a":
		return models.Aggregate
	case "w":
		return models.WindowFunction
	default:
		return models.PlainFunction
	}
}

const pgTriggersQuery = `
	SELECT
		t.tgname as name,
		c.relname as table_name,
		CASE WHEN t.tgtype & 1 = 1 THEN 'ROW' ELSE 'STATEMENT' END as level,
		array_to_string(ARRAY[
			CASE WHEN t.tgtype & 4 = 4 THEN 'INSERT' END,
			CASE WHEN t.tgtype & 8 = 8 THEN 'DELETE' END,
			CASE WHEN t.tgtype & 16 = 16 THEN 'UPDATE' END,
			CASE WHEN t.tgtype & 32 = 32 THEN 'TRUNCATE' END
		]::text[], ',') as events,
		CASE
			WHEN t.tgtype & 2 = 2 THEN 'BEFORE'
			WHEN t.tgtype & 64 = 64 THEN 'INSTEAD_OF'
			ELSE 'AFTER'
		END as timing,
		fn.nspname as function_schema,
		p.proname as function_name,
		COALESCE(obj_description(t.oid, 'pg_trigger'), '') as comment
	FROM pg_trigger t
	JOIN pg_class c ON c.oid = t.tgrelid
	JOIN pg_namespace n ON n.oid = c.relnamespace
	JOIN pg_proc p ON p.oid = t.tgfoid
	JOIN pg_namespace fn ON fn.oid = p.pronamespace
	WHERE n.nspname = $1 AND NOT t.tgisinternal
	ORDER BY c.relname, t.tgname;
`

// Triggers returns the user triggers of every table in a schema
func (p *Postgres) Triggers(ctx context.Context, schema string) ([]models.Trigger, error) {
	rows, err := p.q.Query(ctx, pgTriggersQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}

	triggers := make([]models.Trigger, 0, len(rows))
	for _, row := range rows {
		triggers = append(triggers, models.Trigger{
			Schema:         schema,
			Name:           toString(row["name"]),
			Table:          toString(row["table_name"]),
			Timing:         toString(row["timing"]),
			Events:         toStringSlice(row["events"]),
			Level:          toString(row["level"]),
			FunctionSchema: toString(row["function_schema"]),
			FunctionName:   toString(row["function_name"]),
			Comment:        toString(row["comment"]),
		})
	}
	return triggers, nil
}

const pgSequencesQuery = `
	SELECT
		c.relname as name,
		format_type(s.seqtypid, NULL) as data_type,
		s.seqstart as start_value,
		s.seqmin as min_value,
		s.seqmax as max_value,
		s.seqincrement as increment,
		s.seqcycle as cycle,
		pg_sequence_last_value(c.oid) as last_value,
		dep_c.relname as owner_table,
		COALESCE(obj_description(c.oid, 'pg_class'), '') as comment
	FROM pg_class c
	JOIN pg_namespace n ON n.oid = c.relnamespace
	JOIN pg_sequence s ON s.seqrelid = c.oid
	LEFT JOIN pg_depend d ON d.objid = c.oid AND d.classid = 'pg_class'::regclass AND d.deptype = 'a'
	LEFT JOIN pg_class dep_c ON dep_c.oid = d.refobjid
	WHERE c.relkind = 'S' AND n.nspname = $1
	ORDER BY c.relname;
`

// Sequences returns sequence definitions with their current value
func (p *Postgres) Sequences(ctx context.Context, schema string) ([]models.Sequence, error) {
	rows, err := p.q.Query(ctx, pgSequencesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}

	sequences := make([]models.Sequence, 0, len(rows))
	for _, row := range rows {
		sequences = append(sequences, models.Sequence{
			Schema:     schema,
			Name:       toString(row["name"]),
			DataType:   toString(row["data_type"]),
			Start:      toInt64(row["start_value"]),
			Min:        toInt64(row["min_value"]),
			Max:        toInt64(row["max_value"]),
			Increment:  toInt64(row["increment"]),
			Cycle:      toBool(row["cycle"]),
			LastValue:  toInt64Ptr(row["last_value"]),
			OwnerTable: toString(row["owner_table"]),
			Comment:    toString(row["comment"]),
		})
	}
	return sequences, nil
}

const pgIndexesQuery = `
	SELECT
		i.relname as name,
		t.relname as table_name,
		am.amname as index_type,
		ix.indisunique as is_unique,
		ix.indisprimary as is_primary,
		ix.indpred IS NOT NULL as is_partial,
		pg_size_pretty(pg_relation_size(i.oid)) as size,
		COALESCE(obj_description(i.oid, 'pg_class'), '') as comment,
		array_to_string(ARRAY(
			SELECT a.attname
			FROM pg_attribute a
			WHERE a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
			ORDER BY array_position(ix.indkey, a.attnum)
		), ',') as columns
	FROM pg_class i
	JOIN pg_namespace n ON n.oid = i.relnamespace
	JOIN pg_index ix ON ix.indexrelid = i.oid
	JOIN pg_class t ON t.oid = ix.indrelid
	JOIN pg_am am ON am.oid = i.relam
	WHERE i.relkind = 'i' AND n.nspname = $1
	ORDER BY t.relname, i.relname;
`

// Indexes returns every index in a schema
func (p *Postgres) Indexes(ctx context.Context, schema string) ([]models.Index, error) {
	rows, err := p.q.Query(ctx, pgIndexesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}

	indexes := make([]models.Index, 0, len(rows))
	for _, row := range rows {
		indexes = append(indexes, models.Index{
			Schema:  schema,
			Name:    toString(row["name"]),
			Table:   toString(row["table_name"]),
			Type:    toString(row["index_type"]),
			Columns: toStringSlice(row["columns"]),
			Unique:  toBool(row["is_unique"]),
			Primary: toBool(row["is_primary"]),
			Partial: toBool(row["is_partial"]),
			Size:    toString(row["size"]),
			Comment: toString(row["comment"]),
		})
	}
	return indexes, nil
}

// each count is a correlated subquery; joining the catalogs would
// multiply the rows
const pgObjectCountsQuery = `
	SELECT
		(SELECT count(*) FROM pg_class c WHERE c.relnamespace = n.oid AND c.relkind IN ('r', 'p')) as tables,
		(SELECT count(*) FROM pg_class c WHERE c.relnamespace = n.oid AND c.relkind = 'v') as views,
		(SELECT count(*) FROM pg_class c WHERE c.relnamespace = n.oid AND c.relkind = 'm') as materialized_views,
		(SELECT count(*) FROM pg_proc p WHERE p.pronamespace = n.oid AND p.prokind IN ('f', 'a', 'w')) as functions,
		(SELECT count(*) FROM pg_proc p WHERE p.pronamespace = n.oid AND p.prokind = 'p') as procedures,
		(SELECT count(*) FROM pg_trigger t JOIN pg_class c ON c.oid = t.tgrelid
			WHERE c.relnamespace = n.oid AND NOT t.tgisinternal) as triggers,
		(SELECT count(*) FROM pg_class c WHERE c.relnamespace = n.oid AND c.relkind = 'S') as sequences,
		(SELECT count(*) FROM pg_class c WHERE c.relnamespace = n.oid AND c.relkind = 'i') as indexes
	FROM pg_namespace n
	WHERE n.nspname = $1;
`

// ObjectCounts returns the number of objects of each kind in a schema
func (p *Postgres) ObjectCounts(ctx context.Context, schema string) (models.ObjectCounts, error) {
	row, err := p.q.QueryRow(ctx, pgObjectCountsQuery, schema)
	if err != nil {
		return models.ObjectCounts{}, fmt.Errorf("failed to count objects in %s: %w", schema, err)
	}
	return countsFromRow(row), nil
}

func countsFromRow(row map[string]interface{}) models.ObjectCounts {
	return models.ObjectCounts{
		Tables:            toInt(row["tables"]),
		Views:             toInt(row["views"]),
		MaterializedViews: toInt(row["materialized_views"]),
		Functions:         toInt(row["functions"]),
		Procedures:        toInt(row["procedures"]),
		Triggers:          toInt(row["triggers"]),
		Sequences:         toInt(row["sequences"]),
		Indexes:           toInt(row["indexes"]),
	}
}
