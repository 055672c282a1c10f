package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		// Background colors
		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text

		// UI elements
		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater

		// Status colors
		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		// Table colors
		TableHeader:      lipgloss.Color("#89b4fa"), // Blue
		TableRowEven:     lipgloss.Color("#1e1e2e"), // Base
		TableRowOdd:      lipgloss.Color("#181825"), // Mantle
		TableRowSelected: lipgloss.Color("#313244"), // Surface0

		// Tree colors
		DatabaseActive:   lipgloss.Color("#a6e3a1"), // Green
		DatabaseInactive: lipgloss.Color("#6c7086"), // Overlay0
		SchemaExpanded:   lipgloss.Color("#89b4fa"), // Blue
		SchemaCollapsed:  lipgloss.Color("#6c7086"), // Overlay0
		TableIcon:        lipgloss.Color("#cba6f7"), // Mauve
		ViewIcon:         lipgloss.Color("#94e2d5"), // Teal
		FunctionIcon:     lipgloss.Color("#f9e2af"), // Yellow
		ColumnIcon:       lipgloss.Color("#a6adc8"), // Subtext0
		Metadata:         lipgloss.Color("#6c7086"), // Overlay0
		PrimaryKey:       lipgloss.Color("#f9e2af"), // Yellow
		ForeignKey:       lipgloss.Color("#89dceb"), // Sky
	}
}
