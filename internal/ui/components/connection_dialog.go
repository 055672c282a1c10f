package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyexplorer/internal/db/discovery"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

// ConnectionSubmitMsg carries a validated config out of the dialog
type ConnectionSubmitMsg struct {
	Config models.ConnectionConfig
	IsNew  bool
}

// CloseDialogMsg is sent when a dialog is cancelled
type CloseDialogMsg struct{}

type field int

const (
	fieldName field = iota
	fieldHost
	fieldPort
	fieldDatabase
	fieldUser
	fieldPassword
	fieldSSLMode
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Host", "Port", "Database", "User", "Password", "SSL mode"}

// ConnectionDialog adds or edits a saved connection. New connections
// start from a list of discovered servers; picking one prefills the form.
type ConnectionDialog struct {
	Width int
	Theme theme.Theme

	Instances     []discovery.Instance
	Discovering   bool
	ManualMode    bool
	SelectedIndex int

	inputs      [fieldCount]textinput.Model
	activeField field
	base        models.ConnectionConfig
	isNew       bool
	err         error

	suggest func(discovery.Instance) models.ConnectionConfig
}

// NewConnectionDialog creates a dialog for a new connection. suggest
// turns a discovered instance into a prefilled config.
func NewConnectionDialog(th theme.Theme, suggest func(discovery.Instance) models.ConnectionConfig) *ConnectionDialog {
	d := &ConnectionDialog{
		Width:       60,
		Theme:       th,
		Discovering: true,
		isNew:       true,
		suggest:     suggest,
	}
	for i := range d.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Prompt = ""
		d.inputs[i] = ti
	}
	d.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	d.inputs[fieldPassword].EchoCharacter = '*'
	d.inputs[fieldPort].CharLimit = 5
	d.load(models.NewConnectionConfig("", models.DriverPostgres))
	return d
}

// NewEditDialog opens the form on an existing config
func NewEditDialog(th theme.Theme, cfg models.ConnectionConfig) *ConnectionDialog {
	d := NewConnectionDialog(th, nil)
	d.isNew = false
	d.Discovering = false
	d.ManualMode = true
	d.load(cfg)
	return d
}

// load fills the inputs from cfg, which also becomes the base of the
// submitted config so that its ID and extra settings survive
func (d *ConnectionDialog) load(cfg models.ConnectionConfig) {
	d.base = cfg
	d.inputs[fieldName].SetValue(cfg.Name)
	d.inputs[fieldHost].SetValue(cfg.Host)
	port := ""
	if cfg.Port > 0 {
		port = strconv.Itoa(cfg.Port)
	}
	d.inputs[fieldPort].SetValue(port)
	d.inputs[fieldDatabase].SetValue(cfg.Database)
	d.inputs[fieldUser].SetValue(cfg.User)
	d.inputs[fieldPassword].SetValue(cfg.Password)
	d.inputs[fieldSSLMode].SetValue(cfg.SSLMode)
	d.focus(fieldName)
}

// SetInstances shows the discovery results
func (d *ConnectionDialog) SetInstances(instances []discovery.Instance) {
	d.Instances = instances
	d.Discovering = false
	d.SelectedIndex = 0
}

// Title names the dialog
func (d *ConnectionDialog) Title() string {
	if d.isNew {
		return "New Connection"
	}
	return "Edit Connection"
}

// visibleFields lists the form fields of the current driver
func (d *ConnectionDialog) visibleFields() []field {
	if d.base.Driver == models.DriverSQLite {
		return []field{fieldName, fieldDatabase}
	}
	return []field{fieldName, fieldHost, fieldPort, fieldDatabase, fieldUser, fieldPassword, fieldSSLMode}
}

func (d *ConnectionDialog) focus(f field) {
	for i := range d.inputs {
		d.inputs[i].Blur()
	}
	d.activeField = f
	d.inputs[f].Focus()
}

func (d *ConnectionDialog) moveField(delta int) {
	fields := d.visibleFields()
	idx := 0
	for i, f := range fields {
		if f == d.activeField {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	d.focus(fields[idx])
}

// toggleDriver switches between PostgreSQL and SQLite, keeping the name
func (d *ConnectionDialog) toggleDriver() {
	cfg := d.Config()
	if cfg.Driver == models.DriverPostgres {
		cfg.Driver = models.DriverSQLite
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.SSLMode = "", 0, "", "", ""
		cfg.Database = ""
	} else {
		fresh := models.NewConnectionConfig(cfg.Name, models.DriverPostgres)
		fresh.ID = cfg.ID
		cfg = fresh
	}
	d.load(cfg)
}

// Config builds the config currently described by the form
func (d *ConnectionDialog) Config() models.ConnectionConfig {
	cfg := d.base
	cfg.Name = strings.TrimSpace(d.inputs[fieldName].Value())
	cfg.Database = strings.TrimSpace(d.inputs[fieldDatabase].Value())
	if cfg.Driver == models.DriverSQLite {
		return cfg
	}
	cfg.Host = strings.TrimSpace(d.inputs[fieldHost].Value())
	cfg.Port = 0
	if p, err := strconv.Atoi(strings.TrimSpace(d.inputs[fieldPort].Value())); err == nil {
		cfg.Port = p
	}
	cfg.User = strings.TrimSpace(d.inputs[fieldUser].Value())
	cfg.Password = d.inputs[fieldPassword].Value()
	cfg.SSLMode = strings.TrimSpace(d.inputs[fieldSSLMode].Value())
	return cfg
}

// Err returns the last validation error
func (d *ConnectionDialog) Err() error {
	return d.err
}

func (d *ConnectionDialog) submit() tea.Cmd {
	cfg := d.Config()
	if cfg.Name == "" && cfg.Driver == models.DriverPostgres {
		cfg.Name = fmt.Sprintf("%s@%s", cfg.Database, cfg.Host)
	}
	if err := cfg.Validate(); err != nil {
		d.err = err
		return nil
	}
	d.err = nil
	isNew := d.isNew
	return func() tea.Msg { return ConnectionSubmitMsg{Config: cfg, IsNew: isNew} }
}

// Update handles keys while the dialog is open
func (d *ConnectionDialog) Update(msg tea.Msg) (*ConnectionDialog, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if d.ManualMode {
			var cmd tea.Cmd
			d.inputs[d.activeField], cmd = d.inputs[d.activeField].Update(msg)
			return d, cmd
		}
		return d, nil
	}

	if key.String() == "esc" {
		return d, func() tea.Msg { return CloseDialogMsg{} }
	}

	if !d.ManualMode {
		switch key.String() {
		case "up", "k":
			d.SelectedIndex = max(d.SelectedIndex-1, 0)
		case "down", "j":
			d.SelectedIndex = min(d.SelectedIndex+1, max(len(d.Instances)-1, 0))
		case "enter":
			if d.SelectedIndex < len(d.Instances) && d.suggest != nil {
				d.load(d.suggest(d.Instances[d.SelectedIndex]))
			}
			d.ManualMode = true
		case "m":
			d.ManualMode = true
		}
		return d, nil
	}

	switch key.String() {
	case "tab", "down":
		d.moveField(1)
		return d, nil
	case "shift+tab", "up":
		d.moveField(-1)
		return d, nil
	case "ctrl+t":
		d.toggleDriver()
		return d, nil
	case "enter", "ctrl+s":
		return d, d.submit()
	}

	var cmd tea.Cmd
	d.inputs[d.activeField], cmd = d.inputs[d.activeField].Update(msg)
	return d, cmd
}

// View renders the dialog box
func (d *ConnectionDialog) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(d.Theme.BorderFocused)
	b.WriteString(titleStyle.Render(d.Title()))
	b.WriteString("\n\n")

	if d.ManualMode {
		b.WriteString(d.renderForm())
	} else {
		b.WriteString(d.renderDiscovery())
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Padding(1, 2).
		Width(d.Width).
		Render(b.String())
}

func (d *ConnectionDialog) renderDiscovery() string {
	var b strings.Builder
	hint := lipgloss.NewStyle().Foreground(d.Theme.Metadata).Italic(true)

	switch {
	case d.Discovering:
		b.WriteString("Looking for PostgreSQL servers...\n")
	case len(d.Instances) == 0:
		b.WriteString("No servers found.\n")
	default:
		b.WriteString("Discovered servers:\n\n")
		for i, inst := range d.Instances {
			prefix := "  "
			if i == d.SelectedIndex {
				prefix = "> "
			}
			b.WriteString(fmt.Sprintf("%s%s (%s)\n", prefix, inst.Address(), inst.Source))
		}
	}

	b.WriteString("\n")
	b.WriteString(hint.Render("↑/↓: Select │ Enter: Use │ m: Manual │ Esc: Cancel"))
	return b.String()
}

func (d *ConnectionDialog) renderForm() string {
	var b strings.Builder
	labelStyle := lipgloss.NewStyle().Width(10)
	activeStyle := labelStyle.Foreground(d.Theme.BorderFocused).Bold(true)
	hint := lipgloss.NewStyle().Foreground(d.Theme.Metadata).Italic(true)

	b.WriteString(fmt.Sprintf("  %-10s %s\n\n", "Driver", d.base.Driver))
	for _, f := range d.visibleFields() {
		label := fieldLabels[f]
		if f == fieldDatabase && d.base.Driver == models.DriverSQLite {
			label = "File"
		}
		style, prefix := labelStyle, "  "
		if f == d.activeField {
			style, prefix = activeStyle, "> "
		}
		b.WriteString(prefix + style.Render(label) + " " + d.inputs[f].View() + "\n")
	}

	if d.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(d.Theme.Error).Render(d.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hint.Render("Tab: Next │ Ctrl+T: Driver │ Enter: Save │ Esc: Cancel"))
	return b.String()
}
