package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
)

// Result is a query result rendered as text cells
type Result struct {
	SQL      string
	Columns  []string
	Rows     [][]string
	Duration time.Duration
	Error    error
}

// Execute runs sql and renders every value as text. Failures are
// reported in Result.Error so callers can still show the statement.
func Execute(ctx context.Context, q connection.Querier, sql string) Result {
	start := time.Now()

	res, err := q.QueryWithColumns(ctx, sql)
	if err != nil {
		return Result{
			SQL:      sql,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	rows := make([][]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		row := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			row[i] = convertValueToString(r[col])
		}
		rows = append(rows, row)
	}

	return Result{
		SQL:      sql,
		Columns:  res.Columns,
		Rows:     rows,
		Duration: time.Since(start),
	}
}

// convertValueToString converts a database value to string, handling JSON values
func convertValueToString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case map[string]interface{}, []interface{}:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
