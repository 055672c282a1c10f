package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyexplorer/internal/config"
	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/db/metadata"
	"github.com/rebeliceyang/lazyexplorer/internal/explorer"
	"github.com/rebeliceyang/lazyexplorer/internal/export"
	"github.com/rebeliceyang/lazyexplorer/internal/history"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/settings"
)

type stubQuerier struct {
	result *connection.QueryResult
	err    error
}

func (s *stubQuerier) Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error) {
	return nil, s.err
}

func (s *stubQuerier) QueryWithColumns(ctx context.Context, sql string, args ...interface{}) (*connection.QueryResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result == nil {
		return &connection.QueryResult{}, nil
	}
	return s.result, nil
}

func (s *stubQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) (map[string]interface{}, error) {
	return nil, connection.ErrNoRows
}

func (s *stubQuerier) Ping(ctx context.Context) error { return nil }
func (s *stubQuerier) Close()                         {}

// fakeExecutor serves one "public" schema with a users table
type fakeExecutor struct {
	mu        sync.Mutex
	calls     []string
	countsErr error
	tablesErr error
}

func (f *fakeExecutor) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeExecutor) Schemas(ctx context.Context) ([]models.Schema, error) {
	f.record("schemas")
	return []models.Schema{{Name: "public"}}, nil
}

func (f *fakeExecutor) Tables(ctx context.Context, schema string) ([]models.Table, error) {
	f.record("tables:" + schema)
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return []models.Table{{Schema: schema, Name: "users"}}, nil
}

func (f *fakeExecutor) Columns(ctx context.Context, schema, table string) ([]models.Column, error) {
	f.record("columns:" + schema + "." + table)
	return []models.Column{
		{Name: "id", DataType: "integer", PrimaryKey: true},
		{Name: "email", DataType: "text", Nullable: true},
	}, nil
}

func (f *fakeExecutor) Views(ctx context.Context, schema string) ([]models.View, error) {
	f.record("views:" + schema)
	return []models.View{{Schema: schema, Name: "active_users"}}, nil
}

func (f *fakeExecutor) Functions(ctx context.Context, schema string) ([]models.Function, error) {
	f.record("functions:" + schema)
	return []models.Function{}, nil
}

func (f *fakeExecutor) Triggers(ctx context.Context, schema string) ([]models.Trigger, error) {
	f.record("triggers:" + schema)
	return []models.Trigger{}, nil
}

func (f *fakeExecutor) Sequences(ctx context.Context, schema string) ([]models.Sequence, error) {
	f.record("sequences:" + schema)
	return []models.Sequence{}, nil
}

func (f *fakeExecutor) Indexes(ctx context.Context, schema string) ([]models.Index, error) {
	f.record("indexes:" + schema)
	return []models.Index{}, nil
}

func (f *fakeExecutor) ObjectCounts(ctx context.Context, schema string) (models.ObjectCounts, error) {
	f.record("counts:" + schema)
	if f.countsErr != nil {
		return models.ObjectCounts{}, f.countsErr
	}
	return models.ObjectCounts{Tables: 1, Views: 1}, nil
}

type harness struct {
	ctrl     *Controller
	store    *settings.Store
	exec     *fakeExecutor
	querier  *stubQuerier
	openErr  error
	copied   []string
	cfg      *config.Config
	saved    models.ConnectionConfig
	historyS *history.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		exec:    &fakeExecutor{},
		querier: &stubQuerier{},
		cfg:     config.GetDefaults(),
	}

	store, err := settings.NewStore(t.TempDir(), nil, nil)
	require.NoError(t, err)
	h.store = store

	h.saved = models.NewConnectionConfig("local", models.DriverSQLite)
	h.saved.Database = "/tmp/local.db"
	require.NoError(t, store.Add(h.saved))

	hist, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	h.historyS = hist

	manager := connection.NewManager(func(ctx context.Context, cfg models.ConnectionConfig) (connection.Querier, error) {
		if h.openErr != nil {
			return nil, h.openErr
		}
		return h.querier, nil
	})

	h.ctrl = New(Options{
		Config:  h.cfg,
		Store:   store,
		Manager: manager,
		Executors: func(driver models.Driver, q connection.Querier) (metadata.Executor, error) {
			return h.exec, nil
		},
		History: hist,
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) cycle() {
	h.ctrl.RunAndApply(context.Background())
}

func (h *harness) connect(t *testing.T) {
	t.Helper()
	h.ctrl.Tree().RequestAction(models.ActionConnect, h.saved.ID)
	h.cycle()
	require.NoError(t, h.ctrl.LastError())
}

func findRow(rows []explorer.Row, label string) (explorer.Row, bool) {
	for _, r := range rows {
		if r.Label == label {
			return r, true
		}
	}
	return explorer.Row{}, false
}

func TestNew_LoadsSavedConnections(t *testing.T) {
	h := newHarness(t)
	saved := h.ctrl.Tree().SavedConnections()
	require.Len(t, saved, 1)
	assert.Equal(t, h.saved.ID, saved[0].ID)
}

func TestConnect_SavedConnection(t *testing.T) {
	h := newHarness(t)
	tree := h.ctrl.Tree()

	tree.RequestAction(models.ActionConnect, h.saved.ID)
	jobs := h.ctrl.Step()
	require.Len(t, jobs, 1)
	assert.Equal(t, "connect", jobs[0].Name)
	assert.True(t, tree.IsLoading())

	h.ctrl.Apply(h.ctrl.Run(context.Background(), jobs))
	require.NoError(t, h.ctrl.LastError())

	node, ok := tree.Connection(h.saved.ID)
	require.True(t, ok)
	assert.True(t, node.Connected())
	assert.Equal(t, []models.Schema{{Name: "public"}}, node.Schemas())
	counts, ok := node.Counts("public")
	require.True(t, ok)
	assert.Equal(t, 1, counts.Tables)

	assert.False(t, tree.IsLoading())
	assert.True(t, tree.IsExpanded(models.SavedConnectionItem(h.saved.ID)))
	assert.Equal(t, h.saved.ID, h.store.LastUsed())
	assert.Equal(t, "Connected to local", h.ctrl.Status())
}

func TestEndToEnd_ExpandToColumns(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()
	id := h.saved.ID

	tree.Toggle(models.SchemaItem(id, "public"))
	jobs := h.ctrl.Step()
	require.Len(t, jobs, 1)
	assert.Equal(t, "tables", jobs[0].Name)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), jobs))

	tables, ok := tree.Connection(id)
	require.True(t, ok)
	loaded, ok := tables.Tables("public")
	require.True(t, ok)
	assert.Len(t, loaded, 1)

	// tables are cached, so opening the category asks for nothing
	tree.Toggle(models.CategoryItem(id, "public", models.CategoryTables))
	assert.Empty(t, h.ctrl.Step())

	row, ok := findRow(tree.Rows(), "Tables")
	require.True(t, ok)
	assert.Equal(t, 1, row.Count)

	tree.Toggle(models.TableItem(id, "public", "users"))
	h.cycle()

	rows := tree.Rows()
	col, ok := findRow(rows, "email")
	require.True(t, ok)
	assert.Equal(t, "text", col.Detail)
	assert.Equal(t, 4, col.Depth)

	assert.Contains(t, h.exec.Calls(), "columns:public.users")
}

func TestConnect_FailureClearsLoading(t *testing.T) {
	h := newHarness(t)
	h.openErr = errors.New("connection refused")

	h.ctrl.Tree().RequestAction(models.ActionConnect, h.saved.ID)
	h.cycle()

	assert.ErrorContains(t, h.ctrl.LastError(), "connection refused")
	assert.False(t, h.ctrl.Tree().IsLoading())
	_, ok := h.ctrl.Tree().Connection(h.saved.ID)
	assert.False(t, ok)

	h.ctrl.ClearError()
	assert.NoError(t, h.ctrl.LastError())
}

func TestConnect_CountFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.exec.countsErr = errors.New("permission denied")
	h.connect(t)

	node, ok := h.ctrl.Tree().Connection(h.saved.ID)
	require.True(t, ok)
	assert.True(t, node.Connected())
	_, ok = node.Counts("public")
	assert.False(t, ok)
}

func TestConnect_UnknownConnection(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Tree().RequestAction(models.ActionConnect, "missing")

	assert.Empty(t, h.ctrl.Step())
	assert.ErrorIs(t, h.ctrl.LastError(), ErrUnknownConnection)
}

func TestConnectConfig_SavesNewConnection(t *testing.T) {
	h := newHarness(t)
	cfg := models.NewConnectionConfig("scratch", models.DriverSQLite)
	cfg.Database = "/tmp/scratch.db"

	job := h.ctrl.ConnectConfig(cfg)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))
	require.NoError(t, h.ctrl.LastError())

	_, err := h.store.Get(cfg.ID)
	require.NoError(t, err)
	assert.Len(t, h.ctrl.Tree().SavedConnections(), 2)
	assert.True(t, h.ctrl.Tree().IsExpanded(models.SavedConnectionItem(cfg.ID)))
}

func TestConnectByName(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.ConnectByName("local"))
	h.cycle()

	_, ok := h.ctrl.Tree().Connection(h.saved.ID)
	assert.True(t, ok)
	assert.ErrorIs(t, h.ctrl.ConnectByName("nope"), settings.ErrNotFound)
}

func TestConnectLastUsed(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.ctrl.ConnectLastUsed())

	require.NoError(t, h.store.MarkUsed(h.saved.ID))
	assert.True(t, h.ctrl.ConnectLastUsed())
	pa, ok := h.ctrl.Tree().TakePendingAction()
	require.True(t, ok)
	assert.Equal(t, models.PendingAction{Action: models.ActionConnect, ConnectionID: h.saved.ID}, pa)
}

func TestFetchFailure_LeavesCacheAbsent(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.exec.tablesErr = errors.New("timeout")
	tree := h.ctrl.Tree()
	schema := models.SchemaItem(h.saved.ID, "public")

	tree.Toggle(schema)
	h.cycle()
	assert.Error(t, h.ctrl.LastError())

	node, _ := tree.Connection(h.saved.ID)
	_, ok := node.Tables("public")
	assert.False(t, ok)

	// re-opening the row asks again
	tree.Toggle(schema)
	tree.Toggle(schema)
	jobs := h.ctrl.Step()
	require.Len(t, jobs, 1)
	assert.Equal(t, "tables", jobs[0].Name)
}

func TestObjectFetch(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()
	id := h.saved.ID

	tree.Toggle(models.CategoryItem(id, "public", models.CategoryViews))
	tree.Toggle(models.CategoryItem(id, "public", models.CategorySystemCatalog))
	jobs := h.ctrl.Step()
	require.Len(t, jobs, 2)

	results := h.ctrl.Run(context.Background(), jobs)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	h.ctrl.Apply(results)

	node, _ := tree.Connection(id)
	views, ok := node.Views("public")
	require.True(t, ok)
	assert.Equal(t, "active_users", views[0].Name)
}

func TestResultForRemovedConnectionIsNoop(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()

	tree.Toggle(models.SchemaItem(h.saved.ID, "public"))
	results := h.ctrl.Run(context.Background(), h.ctrl.Step())
	tree.RemoveConnection(h.saved.ID)

	h.ctrl.Apply(results)
	_, ok := tree.Connection(h.saved.ID)
	assert.False(t, ok)
}

func TestRun_KeepsJobOrder(t *testing.T) {
	h := newHarness(t)
	h.cfg.Performance.MaxConcurrentFetches = 2
	h.connect(t)
	tree := h.ctrl.Tree()
	id := h.saved.ID

	tree.Toggle(models.CategoryItem(id, "public", models.CategoryViews))
	tree.Toggle(models.CategoryItem(id, "public", models.CategoryFunctions))
	tree.Toggle(models.CategoryItem(id, "public", models.CategoryIndexes))
	jobs := h.ctrl.Step()
	require.Len(t, jobs, 3)

	results := h.ctrl.Run(context.Background(), jobs)
	require.Len(t, results, 3)
	for i := range jobs {
		assert.Equal(t, jobs[i].Name, results[i].Job)
		assert.Equal(t, id, results[i].ConnectionID)
	}
}

func TestDisconnect(t *testing.T) {
	h := newHarness(t)
	h.connect(t)

	require.NoError(t, h.ctrl.Disconnect(h.saved.ID))
	_, ok := h.ctrl.Tree().Connection(h.saved.ID)
	assert.False(t, ok)
	assert.Len(t, h.ctrl.Tree().SavedConnections(), 1)

	assert.ErrorIs(t, h.ctrl.Disconnect(h.saved.ID), connection.ErrNotConnected)
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.ctrl.Refresh(h.saved.ID), connection.ErrNotConnected)

	h.connect(t)
	require.NoError(t, h.ctrl.Refresh(h.saved.ID))
	jobs := h.ctrl.Step()
	require.Len(t, jobs, 1)
	assert.Equal(t, "connect", jobs[0].Name)
}

func TestRefresh_ReloadsOpenRows(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()
	id := h.saved.ID

	tree.SetExpanded(models.SchemaItem(id, "public"), true)
	tree.SetExpanded(models.CategoryItem(id, "public", models.CategoryTables), true)
	tree.SetExpanded(models.TableItem(id, "public", "users"), true)
	h.cycle()
	_, ok := findRow(tree.Rows(), "email")
	require.True(t, ok)
	tablesBefore := countCalls(h.exec.Calls(), "tables:public")

	require.NoError(t, h.ctrl.Refresh(id))
	h.cycle()
	require.NoError(t, h.ctrl.LastError())

	rows := tree.Rows()
	for _, label := range []string{"users", "id", "email"} {
		_, ok := findRow(rows, label)
		assert.True(t, ok, label)
	}
	for _, r := range rows {
		assert.NotContains(t, r.Label, "Loading")
	}
	calls := h.exec.Calls()
	assert.Greater(t, countCalls(calls, "tables:public"), tablesBefore)
	assert.Equal(t, 2, countCalls(calls, "columns:public.users"))
}

func TestRefresh_FailedReconnectKeepsRows(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()
	id := h.saved.ID

	tree.SetExpanded(models.SchemaItem(id, "public"), true)
	tree.SetExpanded(models.CategoryItem(id, "public", models.CategoryTables), true)
	h.cycle()
	tablesBefore := countCalls(h.exec.Calls(), "tables:public")

	h.openErr = errors.New("connection refused")
	require.NoError(t, h.ctrl.Refresh(id))
	h.cycle()
	require.Error(t, h.ctrl.LastError())

	assert.True(t, tree.IsExpanded(models.CategoryItem(id, "public", models.CategoryTables)))
	_, ok := findRow(tree.Rows(), "users")
	assert.True(t, ok)
	assert.Equal(t, tablesBefore, countCalls(h.exec.Calls(), "tables:public"))
}

func TestStep_SkipsSystemCatalog(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()

	tree.SetExpanded(models.CategoryItem(h.saved.ID, "public", models.CategorySystemCatalog), true)

	assert.Empty(t, h.ctrl.Step())
	assert.True(t, tree.IsExpanded(models.CategoryItem(h.saved.ID, "public", models.CategorySystemCatalog)))
}

func countCalls(calls []string, call string) int {
	n := 0
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestDelete_WithConfirmation(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	tree := h.ctrl.Tree()

	tree.RequestAction(models.ActionDelete, h.saved.ID)
	assert.Empty(t, h.ctrl.Step())

	pending, ok := h.ctrl.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, "local", pending.Name)

	h.ctrl.CancelDelete()
	_, ok = h.ctrl.PendingDelete()
	assert.False(t, ok)
	assert.Len(t, h.store.All(), 1)

	tree.RequestAction(models.ActionDelete, h.saved.ID)
	h.ctrl.Step()
	require.NoError(t, h.ctrl.ConfirmDelete())

	assert.Empty(t, h.store.All())
	assert.Empty(t, tree.SavedConnections())
	_, ok = tree.Connection(h.saved.ID)
	assert.False(t, ok)
	assert.Equal(t, "Deleted local", h.ctrl.Status())
}

func TestDelete_WithoutConfirmation(t *testing.T) {
	h := newHarness(t)
	h.cfg.General.ConfirmDestructiveOps = false

	h.ctrl.Tree().RequestAction(models.ActionDelete, h.saved.ID)
	h.ctrl.Step()

	_, ok := h.ctrl.PendingDelete()
	assert.False(t, ok)
	assert.Empty(t, h.store.All())
}

func TestDuplicate(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Tree().RequestAction(models.ActionDuplicate, h.saved.ID)
	h.ctrl.Step()

	saved := h.ctrl.Tree().SavedConnections()
	require.Len(t, saved, 2)
	assert.Equal(t, "local (Copy)", saved[1].Name)

	h.ctrl.Tree().RequestAction(models.ActionDuplicate, "missing")
	h.ctrl.Step()
	assert.ErrorIs(t, h.ctrl.LastError(), ErrUnknownConnection)
}

func TestEditRequestAndSave(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Tree().RequestAction(models.ActionEdit, h.saved.ID)
	h.ctrl.Step()

	cfg, ok := h.ctrl.TakeEditRequest()
	require.True(t, ok)
	assert.Equal(t, h.saved.ID, cfg.ID)
	_, ok = h.ctrl.TakeEditRequest()
	assert.False(t, ok)

	cfg.Name = "renamed"
	require.NoError(t, h.ctrl.SaveConnection(cfg))
	assert.Equal(t, "renamed", h.ctrl.Tree().SavedConnections()[0].Name)

	fresh := models.NewConnectionConfig("renamed", models.DriverSQLite)
	fresh.Database = "/tmp/other.db"
	assert.ErrorIs(t, h.ctrl.SaveConnection(fresh), settings.ErrDuplicateName)
}

func TestCopyURL(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Tree().RequestAction(models.ActionCopyURL, h.saved.ID)
	h.ctrl.Step()

	require.Len(t, h.copied, 1)
	assert.Equal(t, "sqlite:///tmp/local.db", h.copied[0])
}

func TestActionsDrainInOrder(t *testing.T) {
	h := newHarness(t)
	tree := h.ctrl.Tree()
	tree.RequestAction(models.ActionCopyURL, h.saved.ID)
	tree.RequestAction(models.ActionDuplicate, h.saved.ID)
	tree.RequestAction(models.ActionConnect, h.saved.ID)

	jobs := h.ctrl.Step()
	require.Len(t, jobs, 1)
	assert.Len(t, h.copied, 1)
	assert.Len(t, tree.SavedConnections(), 2)
	_, ok := tree.TakePendingAction()
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	h := newHarness(t)
	h.querier.result = &connection.QueryResult{
		Columns: []string{"id", "email"},
		Rows: []map[string]interface{}{
			{"id": int64(1), "email": "a@example.com"},
			{"id": int64(2), "email": nil},
		},
	}
	h.connect(t)
	tree := h.ctrl.Tree()

	_, err := h.ctrl.Preview()
	assert.ErrorIs(t, err, ErrNothingToPreview)

	tree.Select(models.TableItem(h.saved.ID, "public", "users"))
	job, err := h.ctrl.Preview()
	require.NoError(t, err)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))
	require.NoError(t, h.ctrl.LastError())

	res, ok := h.ctrl.LastPreview()
	require.True(t, ok)
	assert.Equal(t, `SELECT * FROM "public"."users" LIMIT 100;`, res.SQL)
	assert.Equal(t, [][]string{{"1", "a@example.com"}, {"2", "NULL"}}, res.Rows)

	entries, err := h.ctrl.History(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "public.users", entries[0].Object)
	assert.Equal(t, 2, entries[0].RowCount)
	assert.True(t, entries[0].Success)
}

func TestPreview_FailureIsRecorded(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.querier.err = errors.New("relation does not exist")

	h.ctrl.Tree().Select(models.ColumnItem(h.saved.ID, "public", "users", "email"))
	job, err := h.ctrl.Preview()
	require.NoError(t, err)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))

	assert.ErrorContains(t, h.ctrl.LastError(), "relation does not exist")
	entries, err := h.ctrl.History(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "public.users.email", entries[0].Object)
}

func TestPreview_NotConnected(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Tree().Select(models.TableItem(h.saved.ID, "public", "users"))

	_, err := h.ctrl.Preview()
	assert.ErrorIs(t, err, connection.ErrNotConnected)
}

func TestExportPreview(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	_, err := h.ctrl.ExportPreview(dir, export.CSV)
	assert.ErrorIs(t, err, ErrNoPreview)

	h.querier.result = &connection.QueryResult{
		Columns: []string{"id"},
		Rows:    []map[string]interface{}{{"id": int64(1)}},
	}
	h.connect(t)
	h.ctrl.Tree().Select(models.TableItem(h.saved.ID, "public", "users"))
	job, err := h.ctrl.Preview()
	require.NoError(t, err)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))

	path, err := h.ctrl.ExportPreview(dir, export.JSON)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "public.users-")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(data))
	assert.Contains(t, h.ctrl.Status(), "Exported 1 rows")
}

func TestRunQuery(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.RunQuery(h.saved.ID, "SELECT 1")
	assert.ErrorIs(t, err, connection.ErrNotConnected)

	h.connect(t)
	_, err = h.ctrl.RunQuery(h.saved.ID, "  \n")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	h.querier.result = &connection.QueryResult{
		Columns: []string{"n"},
		Rows:    []map[string]interface{}{{"n": int64(42)}},
	}
	job, err := h.ctrl.RunQuery(h.saved.ID, " SELECT count(*) AS n FROM users ")
	require.NoError(t, err)
	assert.Equal(t, "query", job.Name)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))
	require.NoError(t, h.ctrl.LastError())

	res, ok := h.ctrl.LastPreview()
	require.True(t, ok)
	assert.Equal(t, "SELECT count(*) AS n FROM users", res.SQL)
	assert.Equal(t, [][]string{{"42"}}, res.Rows)
	assert.Equal(t, "1 rows from query", h.ctrl.Status())

	entries, err := h.ctrl.History(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "query", entries[0].Object)
	assert.Equal(t, "SELECT count(*) AS n FROM users", entries[0].Statement)

	dir := t.TempDir()
	path, err := h.ctrl.ExportPreview(dir, export.CSV)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "query-")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "n\n42\n", string(data))
}

func TestRunQuery_FailureKeepsStatement(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.querier.err = errors.New("syntax error at or near \"SELEC\"")

	job, err := h.ctrl.RunQuery(h.saved.ID, "SELEC 1")
	require.NoError(t, err)
	h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))

	assert.ErrorContains(t, h.ctrl.LastError(), "syntax error")
	res, ok := h.ctrl.LastPreview()
	require.True(t, ok)
	assert.Equal(t, "SELEC 1", res.SQL)
	assert.Error(t, res.Error)
}

func TestRecentStatements(t *testing.T) {
	h := newHarness(t)
	h.connect(t)

	for _, sql := range []string{"SELECT 1", "SELECT 2", "SELECT 1"} {
		job, err := h.ctrl.RunQuery(h.saved.ID, sql)
		require.NoError(t, err)
		h.ctrl.Apply(h.ctrl.Run(context.Background(), []Job{job}))
	}

	stmts, err := h.ctrl.RecentStatements(h.saved.ID, 10)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.ElementsMatch(t, []string{"SELECT 1", "SELECT 2"}, stmts)

	other, err := h.ctrl.RecentStatements("elsewhere", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
