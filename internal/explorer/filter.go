package explorer

import "strings"

// searchFilter is the free-text filter applied to object names
type searchFilter struct {
	visible bool
	text    string
}

// Matches reports whether name contains pattern, ignoring case.
// An empty pattern matches everything.
func Matches(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

func (f searchFilter) active() bool {
	return f.text != ""
}

func (f searchFilter) matches(name string) bool {
	return Matches(f.text, name)
}

// anyMatch reports whether at least one of names passes the filter
func (f searchFilter) anyMatch(names []string) bool {
	for _, name := range names {
		if f.matches(name) {
			return true
		}
	}
	return false
}

// SetSearch replaces the filter text
func (t *MetadataTree) SetSearch(text string) {
	t.filter.text = text
}

// SearchText returns the current filter text
func (t *MetadataTree) SearchText() string {
	return t.filter.text
}

// SearchVisible reports whether the search bar is shown
func (t *MetadataTree) SearchVisible() bool {
	return t.filter.visible
}

// ToggleSearch shows or hides the search bar. Hiding it clears the filter.
func (t *MetadataTree) ToggleSearch() bool {
	t.filter.visible = !t.filter.visible
	if !t.filter.visible {
		t.filter.text = ""
	}
	return t.filter.visible
}
