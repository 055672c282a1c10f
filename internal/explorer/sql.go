package explorer

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// DefaultPreviewLimit caps preview queries when no limit is configured
const DefaultPreviewLimit = 100

// SQLForSelected builds a preview query for the selected table, view or
// column. It returns false for any other selection.
func (t *MetadataTree) SQLForSelected(limit int) (string, bool) {
	return PreviewSQL(t.selected, limit)
}

// PreviewSQL builds the preview query for item
func PreviewSQL(item models.TreeItem, limit int) (string, bool) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	switch item.Kind {
	case models.ItemTable, models.ItemView:
		rel := pgx.Identifier{item.Schema, item.Name}.Sanitize()
		return fmt.Sprintf("SELECT * FROM %s LIMIT %d;", rel, limit), true
	case models.ItemColumn:
		rel := pgx.Identifier{item.Schema, item.Table}.Sanitize()
		col := pgx.Identifier{item.Name}.Sanitize()
		return fmt.Sprintf("SELECT %s FROM %s LIMIT %d;", col, rel, limit), true
	default:
		return "", false
	}
}
