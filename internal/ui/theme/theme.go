package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableRowEven     lipgloss.Color
	TableRowOdd      lipgloss.Color
	TableRowSelected lipgloss.Color

	// Tree colors
	DatabaseActive   lipgloss.Color
	DatabaseInactive lipgloss.Color
	SchemaExpanded   lipgloss.Color
	SchemaCollapsed  lipgloss.Color
	TableIcon        lipgloss.Color
	ViewIcon         lipgloss.Color
	FunctionIcon     lipgloss.Color
	ColumnIcon       lipgloss.Color
	Metadata         lipgloss.Color
	PrimaryKey       lipgloss.Color
	ForeignKey       lipgloss.Color
}

// Names lists the built-in themes
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name, falling back to the default
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha", "catppuccin":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}
