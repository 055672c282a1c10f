package explorer

import "github.com/rebeliceyang/lazyexplorer/internal/models"

// Select makes item the single selection. The zero item clears it.
func (t *MetadataTree) Select(item models.TreeItem) {
	t.selected = item
}

// SelectedItem returns the current selection without clearing it
func (t *MetadataTree) SelectedItem() (models.TreeItem, bool) {
	return t.selected, !t.selected.IsZero()
}

// RequestAction queues an action for the controller.
// Requests are delivered in order; none is overwritten.
func (t *MetadataTree) RequestAction(action models.ConnectionAction, connectionID string) {
	t.actions = append(t.actions, models.PendingAction{Action: action, ConnectionID: connectionID})
}

// TakePendingAction pops the oldest queued action
func (t *MetadataTree) TakePendingAction() (models.PendingAction, bool) {
	if len(t.actions) == 0 {
		return models.PendingAction{}, false
	}
	a := t.actions[0]
	t.actions = t.actions[1:]
	if len(t.actions) == 0 {
		t.actions = nil
	}
	return a, true
}
