package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

func newTestTree(t *testing.T) *MetadataTree {
	t.Helper()
	tree := New()
	tree.AddConnection("c1", "Local")
	tree.SetSchemas("c1", []models.Schema{{Name: "public", Owner: "pg"}})
	tree.SetExpanded(models.ConnectionItem("c1"), true)
	return tree
}

func findRow(rows []Row, item models.TreeItem) (Row, bool) {
	for _, r := range rows {
		if r.Item == item {
			return r, true
		}
	}
	return Row{}, false
}

func labels(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Label)
	}
	return out
}

func TestSchemaExpansionQueuesTableFetch(t *testing.T) {
	tree := newTestTree(t)
	schema := models.SchemaItem("c1", "public")

	assert.True(t, tree.Toggle(schema))
	assert.False(t, tree.Toggle(schema))
	assert.True(t, tree.Toggle(schema))

	got := tree.SchemasNeedingTables()
	assert.Equal(t, []TableFetch{
		{ConnectionID: "c1", Schema: "public"},
		{ConnectionID: "c1", Schema: "public"},
	}, got)
	assert.Empty(t, tree.SchemasNeedingTables())
}

func TestOnlyClosedToOpenEdgeQueues(t *testing.T) {
	tree := newTestTree(t)
	schema := models.SchemaItem("c1", "public")

	tree.SetExpanded(schema, true)
	tree.SetExpanded(schema, true)
	tree.SetExpanded(schema, false)

	assert.Len(t, tree.SchemasNeedingTables(), 1)
}

func TestReexpandAfterSetTablesDoesNotQueue(t *testing.T) {
	tree := newTestTree(t)
	schema := models.SchemaItem("c1", "public")

	tree.Toggle(schema)
	require.Len(t, tree.SchemasNeedingTables(), 1)

	tree.SetTables("c1", "public", []models.Table{{Schema: "public", Name: "users"}})
	tree.Toggle(schema)
	tree.Toggle(schema)
	assert.Empty(t, tree.SchemasNeedingTables())

	tree.Toggle(models.CategoryItem("c1", "public", models.CategoryTables))
	assert.Empty(t, tree.SchemasNeedingTables())
}

func TestEmptyResultCountsAsLoaded(t *testing.T) {
	tree := newTestTree(t)
	tree.SetTables("c1", "public", nil)
	tree.SetViews("c1", "public", nil)

	tree.Toggle(models.SchemaItem("c1", "public"))
	tree.Toggle(models.CategoryItem("c1", "public", models.CategoryViews))

	assert.Empty(t, tree.SchemasNeedingTables())
	assert.Empty(t, tree.SchemasNeedingObjects())

	node, ok := tree.Connection("c1")
	require.True(t, ok)
	views, loaded := node.Views("public")
	assert.True(t, loaded)
	assert.Empty(t, views)
}

func TestCategoryExpansionQueuesObjects(t *testing.T) {
	tree := newTestTree(t)
	tree.SetFunctions("c1", "public", []models.Function{{Name: "f"}})

	for _, c := range []models.ObjectCategory{
		models.CategoryViews,
		models.CategoryFunctions,
		models.CategorySequences,
		models.CategorySystemCatalog,
	} {
		tree.Toggle(models.CategoryItem("c1", "public", c))
	}

	assert.Equal(t, []ObjectFetch{
		{ConnectionID: "c1", Schema: "public", Category: models.CategoryViews},
		{ConnectionID: "c1", Schema: "public", Category: models.CategorySequences},
		{ConnectionID: "c1", Schema: "public", Category: models.CategorySystemCatalog},
	}, tree.SchemasNeedingObjects())
}

func TestTablesCategoryReusesTableQueue(t *testing.T) {
	tree := newTestTree(t)
	tree.Toggle(models.CategoryItem("c1", "public", models.CategoryTables))

	assert.Equal(t, []TableFetch{{ConnectionID: "c1", Schema: "public"}}, tree.SchemasNeedingTables())
	assert.Empty(t, tree.SchemasNeedingObjects())
}

func TestTableExpansionQueuesColumns(t *testing.T) {
	tree := newTestTree(t)
	tree.SetTables("c1", "public", []models.Table{{Name: "users"}, {Name: "orders"}})

	tree.Toggle(models.TableItem("c1", "public", "users"))
	tree.Toggle(models.TableItem("c1", "public", "orders"))

	first := tree.TablesNeedingColumns()
	assert.Equal(t, []ColumnFetch{
		{ConnectionID: "c1", Schema: "public", Table: "users"},
		{ConnectionID: "c1", Schema: "public", Table: "orders"},
	}, first)
	assert.Empty(t, tree.TablesNeedingColumns())
}

func TestExpansionOfUnknownConnectionIsIgnored(t *testing.T) {
	tree := New()
	tree.Toggle(models.SchemaItem("ghost", "public"))
	tree.Toggle(models.TableItem("ghost", "public", "users"))

	assert.False(t, tree.IsExpanded(models.SchemaItem("ghost", "public")))
	assert.Empty(t, tree.SchemasNeedingTables())
	assert.Empty(t, tree.TablesNeedingColumns())
}

func TestLeafToggleIsNoop(t *testing.T) {
	tree := newTestTree(t)
	col := models.ColumnItem("c1", "public", "users", "id")

	assert.False(t, tree.Toggle(col))
	assert.False(t, tree.IsExpanded(col))
}

func TestSettersIgnoreUnknownConnection(t *testing.T) {
	tree := New()
	tree.SetSchemas("nope", []models.Schema{{Name: "public"}})
	tree.SetTables("nope", "public", []models.Table{{Name: "users"}})
	tree.SetColumns("nope", "public", "users", []models.Column{{Name: "id"}})
	tree.SetObjectCounts("nope", "public", models.ObjectCounts{Tables: 1})
	tree.SetConnectionStatus("nope", true)

	_, ok := tree.Connection("nope")
	assert.False(t, ok)
	assert.Empty(t, tree.Rows())
}

func TestAddConnectionReplacesCache(t *testing.T) {
	tree := newTestTree(t)
	tree.SetTables("c1", "public", []models.Table{{Name: "users"}})

	tree.AddConnection("c1", "Renamed")

	node, ok := tree.Connection("c1")
	require.True(t, ok)
	assert.Equal(t, "Renamed", node.Name())
	assert.Empty(t, node.Schemas())
	_, loaded := node.Tables("public")
	assert.False(t, loaded)
	assert.Equal(t, []string{"c1"}, tree.ConnectionIDs())
}

func TestRemoveConnectionPrunesExpansion(t *testing.T) {
	tree := newTestTree(t)
	tree.AddConnection("c10", "Other")
	tree.SetSchemas("c10", []models.Schema{{Name: "public"}})
	tree.SetExpanded(models.SchemaItem("c10", "public"), true)

	tree.SetTables("c1", "public", []models.Table{{Name: "users"}})
	tree.SetObjectCounts("c1", "public", models.ObjectCounts{Tables: 1, Views: 1})
	tree.SetExpanded(models.SchemaItem("c1", "public"), true)
	tree.SetExpanded(models.CategoryItem("c1", "public", models.CategoryTables), true)
	tree.SetExpanded(models.CategoryItem("c1", "public", models.CategoryViews), true)
	tree.SetExpanded(models.TableItem("c1", "public", "users"), true)
	tree.SchemasNeedingTables()
	tree.SchemasNeedingObjects()
	tree.TablesNeedingColumns()

	tree.RemoveConnection("c1")

	assert.Empty(t, tree.OpenItems("c1"))
	assert.False(t, tree.IsExpanded(models.ConnectionItem("c1")))
	assert.Equal(t, 1, tree.expanded.size())
	// a sibling sharing the id prefix keeps its state
	assert.True(t, tree.IsExpanded(models.SchemaItem("c10", "public")))
	assert.Empty(t, tree.SchemasNeedingTables())

	tree.AddConnection("c2", "Fresh")
	tree.SetSchemas("c2", []models.Schema{{Name: "public"}})
	tree.SetObjectCounts("c2", "public", models.ObjectCounts{Tables: 3})
	tree.SetExpanded(models.ConnectionItem("c2"), true)

	rows := tree.Rows()
	schemaRow, ok := findRow(rows, models.SchemaItem("c2", "public"))
	require.True(t, ok)
	assert.False(t, schemaRow.Expanded)
	_, ok = findRow(rows, models.CategoryItem("c2", "public", models.CategoryTables))
	assert.False(t, ok)

	// reusing the removed id starts collapsed too
	tree.AddConnection("c1", "Again")
	tree.SetSchemas("c1", []models.Schema{{Name: "public"}})
	assert.False(t, tree.IsExpanded(models.ConnectionItem("c1")))
	assert.False(t, tree.IsExpanded(models.SchemaItem("c1", "public")))
	assert.False(t, tree.IsExpanded(models.TableItem("c1", "public", "users")))
}

func TestDottedNamesDoNotShareFlags(t *testing.T) {
	tree := New()
	tree.AddConnection("c1", "Local")
	tree.SetSchemas("c1", []models.Schema{{Name: "a"}, {Name: "a.b"}})
	tree.SetTables("c1", "a", []models.Table{{Name: "b.c"}})
	tree.SetTables("c1", "a.b", []models.Table{{Name: "c"}})

	tree.SetExpanded(models.TableItem("c1", "a", "b.c"), true)

	assert.True(t, tree.IsExpanded(models.TableItem("c1", "a", "b.c")))
	assert.False(t, tree.IsExpanded(models.TableItem("c1", "a.b", "c")))
	assert.Equal(t, []ColumnFetch{{ConnectionID: "c1", Schema: "a", Table: "b.c"}}, tree.TablesNeedingColumns())

	tree.SetExpanded(models.TableItem("c1", "a.b", "c"), true)
	assert.Equal(t, []ColumnFetch{{ConnectionID: "c1", Schema: "a.b", Table: "c"}}, tree.TablesNeedingColumns())
}

func TestRemoveConnectionKeepsDottedSibling(t *testing.T) {
	tree := New()
	tree.AddConnection("c1", "Local")
	tree.AddConnection("c1.x", "Sibling")
	for _, id := range []string{"c1", "c1.x"} {
		tree.SetSchemas(id, []models.Schema{{Name: "public"}})
		tree.SetExpanded(models.ConnectionItem(id), true)
		tree.SetExpanded(models.SchemaItem(id, "public"), true)
	}

	tree.RemoveConnection("c1")

	assert.True(t, tree.IsExpanded(models.ConnectionItem("c1.x")))
	assert.True(t, tree.IsExpanded(models.SchemaItem("c1.x", "public")))
	assert.Empty(t, tree.OpenItems("c1"))
}

func TestOpenItemsParentsFirst(t *testing.T) {
	tree := newTestTree(t)
	tree.SetTables("c1", "public", []models.Table{{Name: "users"}, {Name: "orders"}})
	tree.SetExpanded(models.TableItem("c1", "public", "users"), true)
	tree.SetExpanded(models.CategoryItem("c1", "public", models.CategoryTables), true)
	tree.SetExpanded(models.TableItem("c1", "public", "orders"), true)
	tree.SetExpanded(models.SchemaItem("c1", "public"), true)

	assert.Equal(t, []models.TreeItem{
		models.SchemaItem("c1", "public"),
		models.CategoryItem("c1", "public", models.CategoryTables),
		models.TableItem("c1", "public", "orders"),
		models.TableItem("c1", "public", "users"),
	}, tree.OpenItems("c1"))
}

func TestRemoveConnectionClearsSelection(t *testing.T) {
	tree := newTestTree(t)
	tree.Select(models.SchemaItem("c1", "public"))
	tree.RemoveConnection("c1")

	_, ok := tree.SelectedItem()
	assert.False(t, ok)
}

func TestSetSchemasClearsLoading(t *testing.T) {
	tree := New()
	tree.AddConnection("c1", "Local")
	tree.SetLoading(true)
	require.True(t, tree.IsLoading())

	tree.SetSchemas("c1", nil)
	assert.False(t, tree.IsLoading())
}

func TestClear(t *testing.T) {
	tree := newTestTree(t)
	tree.Select(models.ConnectionItem("c1"))
	tree.Clear()

	assert.Empty(t, tree.ConnectionIDs())
	assert.False(t, tree.IsExpanded(models.ConnectionItem("c1")))
	_, ok := tree.SelectedItem()
	assert.False(t, ok)
}

func TestExpandAllAndCollapseAll(t *testing.T) {
	tree := New()
	tree.AddConnection("c1", "Local")
	tree.SetSchemas("c1", []models.Schema{{Name: "public"}, {Name: "audit"}})
	tree.SetTables("c1", "public", []models.Table{{Name: "users"}})

	tree.ExpandAll()

	assert.True(t, tree.IsExpanded(models.ConnectionItem("c1")))
	assert.True(t, tree.IsExpanded(models.SchemaItem("c1", "public")))
	assert.True(t, tree.IsExpanded(models.SchemaItem("c1", "audit")))
	assert.True(t, tree.IsExpanded(models.TableItem("c1", "public", "users")))
	assert.Equal(t, []TableFetch{{ConnectionID: "c1", Schema: "audit"}}, tree.SchemasNeedingTables())
	assert.Equal(t, []ColumnFetch{{ConnectionID: "c1", Schema: "public", Table: "users"}}, tree.TablesNeedingColumns())

	// already open rows do not queue again
	tree.ExpandAll()
	assert.Empty(t, tree.SchemasNeedingTables())

	tree.CollapseAll()
	assert.False(t, tree.IsExpanded(models.ConnectionItem("c1")))
	assert.False(t, tree.IsExpanded(models.SchemaItem("c1", "public")))
	assert.False(t, tree.IsExpanded(models.TableItem("c1", "public", "users")))
}

func TestRefreshSavedConnectionsPrunesSavedExpansion(t *testing.T) {
	tree := New()
	a := models.ConnectionConfig{ID: "a", Name: "A", Driver: models.DriverSQLite, Database: "a.db"}
	b := models.ConnectionConfig{ID: "b", Name: "B", Driver: models.DriverSQLite, Database: "b.db"}
	tree.SetSavedConnections([]models.ConnectionConfig{a, b})
	tree.Toggle(models.SavedConnectionItem("a"))
	tree.Toggle(models.SavedConnectionItem("b"))

	tree.RefreshSavedConnections([]models.ConnectionConfig{b})

	assert.False(t, tree.IsExpanded(models.SavedConnectionItem("a")))
	assert.True(t, tree.IsExpanded(models.SavedConnectionItem("b")))
	assert.Equal(t, []models.ConnectionConfig{b}, tree.SavedConnections())
}

func TestPendingActionsAreFIFO(t *testing.T) {
	tree := New()
	tree.RequestAction(models.ActionConnect, "a")
	tree.RequestAction(models.ActionDelete, "b")

	first, ok := tree.TakePendingAction()
	require.True(t, ok)
	assert.Equal(t, models.PendingAction{Action: models.ActionConnect, ConnectionID: "a"}, first)

	second, ok := tree.TakePendingAction()
	require.True(t, ok)
	assert.Equal(t, models.PendingAction{Action: models.ActionDelete, ConnectionID: "b"}, second)

	_, ok = tree.TakePendingAction()
	assert.False(t, ok)
}

func TestSelectionIsPeek(t *testing.T) {
	tree := New()
	item := models.TableItem("c1", "public", "users")
	tree.Select(item)

	for i := 0; i < 2; i++ {
		got, ok := tree.SelectedItem()
		require.True(t, ok)
		assert.Equal(t, item, got)
	}

	tree.Select(models.ColumnItem("c1", "public", "users", "id"))
	got, _ := tree.SelectedItem()
	assert.Equal(t, models.ItemColumn, got.Kind)
}
