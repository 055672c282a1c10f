package metadata

import (
	"context"
	"strings"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
)

// fakeQuerier answers queries by matching a fragment of the SQL text
type fakeQuerier struct {
	responses map[string][]map[string]interface{}
	err       error
	calls     []call
}

type call struct {
	sql  string
	args []interface{}
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if f.err != nil {
		return nil, f.err
	}
	for fragment, rows := range f.responses {
		if strings.Contains(sql, fragment) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeQuerier) QueryWithColumns(ctx context.Context, sql string, args ...interface{}) (*connection.QueryResult, error) {
	rows, err := f.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &connection.QueryResult{Rows: rows}, nil
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) (map[string]interface{}, error) {
	rows, err := f.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, connection.ErrNoRows
	}
	return rows[0], nil
}

func (f *fakeQuerier) Ping(ctx context.Context) error { return nil }
func (f *fakeQuerier) Close()                         {}
