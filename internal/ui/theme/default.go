package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		// Background colors
		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),

		// UI elements
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),

		// Status colors
		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		// Table colors
		TableHeader:      lipgloss.Color("62"),
		TableRowEven:     lipgloss.Color("235"),
		TableRowOdd:      lipgloss.Color("236"),
		TableRowSelected: lipgloss.Color("237"),

		// Tree colors
		DatabaseActive:   lipgloss.Color("42"),
		DatabaseInactive: lipgloss.Color("244"),
		SchemaExpanded:   lipgloss.Color("75"),
		SchemaCollapsed:  lipgloss.Color("244"),
		TableIcon:        lipgloss.Color("141"),
		ViewIcon:         lipgloss.Color("80"),
		FunctionIcon:     lipgloss.Color("220"),
		ColumnIcon:       lipgloss.Color("250"),
		Metadata:         lipgloss.Color("244"),
		PrimaryKey:       lipgloss.Color("220"),
		ForeignKey:       lipgloss.Color("117"),
	}
}
