// Package app is the bubbletea model of the explorer. It owns the UI
// components and feeds their requests to the controller.
//
// Every message that may have changed the tree ends with drive, which
// takes the controller's jobs and runs them as a tea.Cmd. Their results
// come back as a jobsDoneMsg and are applied on the update goroutine, so
// the tree is never touched concurrently.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyexplorer/internal/config"
	"github.com/rebeliceyang/lazyexplorer/internal/controller"
	"github.com/rebeliceyang/lazyexplorer/internal/db/discovery"
	"github.com/rebeliceyang/lazyexplorer/internal/export"
	"github.com/rebeliceyang/lazyexplorer/internal/logging"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/components"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/help"
	"github.com/rebeliceyang/lazyexplorer/internal/ui/theme"
)

const (
	discoveryTimeout = 5 * time.Second
	historyLimit     = 50
)

var errNoConnection = errors.New("select a connected connection to run queries")

type focus int

const (
	focusTree focus = iota
	focusPreview
)

// Options configures an App. Controller is required.
type Options struct {
	Controller *controller.Controller
	Config     *config.Config
	Discoverer *discovery.Discoverer
	// ConnectName is a saved connection to open on start
	ConnectName string
	// ExportDir receives preview exports
	ExportDir string
	Logger    *slog.Logger
}

// App is the main application model
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	ctrl   *controller.Controller
	cfg    *config.Config
	theme  theme.Theme
	logger *slog.Logger

	discoverer  *discovery.Discoverer
	connectName string
	exportDir   string

	width, height int
	focus         focus
	showHelp      bool
	running       int

	treePanel    components.Panel
	detailsPanel components.Panel
	previewPanel components.Panel

	treeView    *components.TreeView
	search      *components.SearchInput
	details     *components.DetailsPane
	table       *components.TableView
	previewName string

	editor       *components.SQLEditor
	dialog       *components.ConnectionDialog
	confirm      *components.ConfirmDialog
	errorOverlay *components.ErrorOverlay
}

// SavedConnectionsChangedMsg is sent when the settings file changes on disk
type SavedConnectionsChangedMsg struct {
	Connections []models.ConnectionConfig
}

type jobsDoneMsg struct {
	results []controller.Result
	preview bool
}

type discoveryDoneMsg struct {
	instances []discovery.Instance
}

// New creates the application model
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	th := theme.GetTheme(cfg.UI.Theme)
	tree := opts.Controller.Tree()
	ctx, cancel := context.WithCancel(context.Background())

	discoverer := opts.Discoverer
	if discoverer == nil {
		discoverer = discovery.NewDiscoverer()
	}

	return &App{
		ctx:          ctx,
		cancel:       cancel,
		ctrl:         opts.Controller,
		cfg:          cfg,
		theme:        th,
		logger:       logging.OrDiscard(opts.Logger),
		discoverer:   discoverer,
		connectName:  opts.ConnectName,
		exportDir:    opts.ExportDir,
		treeView:     components.NewTreeView(tree, th),
		search:       components.NewSearchInput(tree, th),
		details:      components.NewDetailsPane(th),
		table:        components.NewTableView(th),
		editor:       components.NewSQLEditor(th),
		treePanel:    components.Panel{Title: "Explorer", Theme: th, Focused: true},
		detailsPanel: components.Panel{Title: "Details", Theme: th},
		previewPanel: components.Panel{Title: "Preview", Theme: th},
	}
}

// Init queues the startup connection
func (a *App) Init() tea.Cmd {
	switch {
	case a.connectName != "":
		if err := a.ctrl.ConnectByName(a.connectName); err != nil {
			a.showError("Connection Error", fmt.Errorf("connection %q: %w", a.connectName, err))
		}
	case a.cfg.General.AutoConnectLast:
		a.ctrl.ConnectLastUsed()
	}
	return a.drive()
}

// Close cancels running jobs
func (a *App) Close() {
	a.cancel()
}

// drive runs the controller's pending work and surfaces what it asked
// the UI to show
func (a *App) drive() tea.Cmd {
	jobs := a.ctrl.Step()
	a.syncPrompts()
	return a.runJobs(jobs, false)
}

func (a *App) runJobs(jobs []controller.Job, preview bool) tea.Cmd {
	if len(jobs) == 0 {
		return nil
	}
	a.running++
	ctx, ctrl := a.ctx, a.ctrl
	return func() tea.Msg {
		return jobsDoneMsg{results: ctrl.Run(ctx, jobs), preview: preview}
	}
}

// syncPrompts opens the dialogs the controller is waiting on
func (a *App) syncPrompts() {
	if err := a.ctrl.LastError(); err != nil {
		a.ctrl.ClearError()
		a.showError("Error", err)
	}
	if cfg, ok := a.ctrl.TakeEditRequest(); ok {
		a.dialog = components.NewEditDialog(a.theme, cfg)
	}
	if cfg, ok := a.ctrl.PendingDelete(); ok && a.confirm == nil {
		a.confirm = components.NewConfirmDialog(a.theme,
			fmt.Sprintf("Delete connection %q? Its password and preview history are removed too.", cfg.Name))
	}
}

func (a *App) showError(title string, err error) {
	a.logger.Debug("showing error", "title", title, "error", err)
	if a.errorOverlay != nil {
		// keep the first error; later ones are in the log
		return
	}
	a.errorOverlay = components.NewErrorOverlay(a.theme, title, err)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.updatePanelDimensions()
		return a, nil

	case jobsDoneMsg:
		a.running--
		a.ctrl.Apply(msg.results)
		if msg.preview {
			a.showPreview()
		}
		return a, a.drive()

	case SavedConnectionsChangedMsg:
		a.ctrl.Sync(msg.Connections)
		return a, nil

	case discoveryDoneMsg:
		if a.dialog != nil {
			a.dialog.SetInstances(msg.instances)
		}
		return a, nil

	case components.TreeItemSelectedMsg:
		job, err := a.ctrl.Preview()
		if err != nil {
			a.showError("Preview", err)
			return a, nil
		}
		return a, a.runJobs([]controller.Job{job}, true)

	case components.ConnectionSubmitMsg:
		a.dialog = nil
		if err := a.ctrl.SaveConnection(msg.Config); err != nil {
			a.showError("Save Connection", err)
			return a, nil
		}
		if msg.IsNew {
			a.ctrl.Tree().RequestAction(models.ActionConnect, msg.Config.ID)
		}
		return a, a.drive()

	case components.CloseDialogMsg:
		a.dialog = nil
		return a, nil

	case components.ConfirmResultMsg:
		a.confirm = nil
		if msg.Confirmed {
			_ = a.ctrl.ConfirmDelete()
		} else {
			a.ctrl.CancelDelete()
		}
		return a, a.drive()

	case components.CloseSearchMsg:
		return a, nil

	case components.ExecuteQueryMsg:
		job, err := a.ctrl.RunQuery(msg.ConnectionID, msg.SQL)
		if err != nil {
			a.showError("Query", err)
			return a, nil
		}
		a.editor.Close()
		return a, a.runJobs([]controller.Job{job}, true)

	case components.CloseEditorMsg:
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// cursor blinks and other component messages
	if a.dialog != nil {
		var cmd tea.Cmd
		a.dialog, cmd = a.dialog.Update(msg)
		return a, cmd
	}
	if a.search.Focused() {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	if a.editor.Visible() {
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.errorOverlay != nil {
		switch key {
		case "esc", "enter":
			a.errorOverlay = nil
			return a, nil
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.confirm != nil {
		return a, a.confirm.Update(msg)
	}

	if a.dialog != nil {
		var cmd tea.Cmd
		a.dialog, cmd = a.dialog.Update(msg)
		return a, cmd
	}

	if a.showHelp {
		switch key {
		case "?", "esc", "q":
			a.showHelp = false
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.search.Focused() {
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	if a.editor.Visible() {
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "tab":
		a.setFocus(1 - a.focus)
		return a, nil
	case "/":
		a.setFocus(focusTree)
		return a, a.search.Open()
	case "n":
		a.dialog = components.NewConnectionDialog(a.theme, a.discoverer.Suggest)
		return a, a.discover()
	case "H":
		a.showHistory()
		return a, nil
	case "E":
		a.exportPreview()
		return a, nil
	case "s":
		return a, a.openEditor()
	}

	if a.focus == focusPreview {
		switch key {
		case "up", "k":
			a.table.MoveSelection(-1)
		case "down", "j":
			a.table.MoveSelection(1)
		case "left", "h":
			a.table.ScrollColumns(-1)
		case "right", "l":
			a.table.ScrollColumns(1)
		case "pgup", "ctrl+u":
			a.table.PageUp()
		case "pgdown", "ctrl+d":
			a.table.PageDown()
		case "esc":
			a.setFocus(focusTree)
		}
		return a, nil
	}

	switch key {
	case "x":
		if id, ok := a.selectedConnection(); ok {
			if err := a.ctrl.Disconnect(id); err != nil {
				a.showError("Disconnect", err)
			}
		}
		return a, nil
	case "r", "f5":
		if id, ok := a.selectedConnection(); ok {
			if err := a.ctrl.Refresh(id); err != nil {
				a.showError("Refresh", err)
			}
		}
		return a, a.drive()
	case "esc":
		if a.ctrl.Tree().SearchVisible() {
			a.search.Close()
		}
		return a, nil
	case "J":
		a.details.ScrollDown()
		return a, nil
	case "K":
		a.details.ScrollUp()
		return a, nil
	}

	var cmd tea.Cmd
	a.treeView, cmd = a.treeView.Update(msg)
	return a, tea.Batch(cmd, a.drive())
}

func (a *App) setFocus(f focus) {
	a.focus = f
	a.treePanel.Focused = f == focusTree
	a.previewPanel.Focused = f == focusPreview
}

// selectedConnection returns the connection owning the selected row
func (a *App) selectedConnection() (string, bool) {
	item, ok := a.ctrl.Tree().SelectedItem()
	if !ok || item.ConnectionID == "" {
		return "", false
	}
	return item.ConnectionID, true
}

// openEditor shows the query editor for the selected connection
func (a *App) openEditor() tea.Cmd {
	id, ok := a.selectedConnection()
	if !ok {
		a.showError("Query", errNoConnection)
		return nil
	}
	node, ok := a.ctrl.Tree().Connection(id)
	if !ok || !node.Connected() {
		a.showError("Query", errNoConnection)
		return nil
	}
	recent, err := a.ctrl.RecentStatements(id, historyLimit)
	if err != nil {
		a.logger.Warn("failed to load recent statements", "connection", id, "error", err)
	}
	return a.editor.Open(id, node.Name(), recent)
}

func (a *App) discover() tea.Cmd {
	ctx, d := a.ctx, a.discoverer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
		defer cancel()
		return discoveryDoneMsg{instances: d.DiscoverAll(ctx)}
	}
}

func (a *App) showPreview() {
	res, ok := a.ctrl.LastPreview()
	if !ok {
		return
	}
	a.table.SetResult(res)
	a.previewName = res.SQL
	a.setFocus(focusPreview)
}

func (a *App) exportPreview() {
	dir := a.exportDir
	if dir == "" {
		dir = "."
	}
	if _, err := a.ctrl.ExportPreview(dir, export.Format(a.cfg.Export.Format)); err != nil {
		a.showError("Export", err)
	}
}

// showHistory lists recent previews in the preview panel
func (a *App) showHistory() {
	entries, err := a.ctrl.History(historyLimit)
	if err != nil {
		a.showError("History", err)
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = e.ErrorMessage
		}
		rows = append(rows, []string{
			e.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
			e.ConnectionName,
			e.Object,
			strconv.Itoa(e.RowCount),
			e.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	a.table.SetData([]string{"Executed", "Connection", "Object", "Rows", "Duration", "Status"}, rows)
	a.previewName = "History"
	a.setFocus(focusPreview)
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	switch {
	case a.errorOverlay != nil:
		return a.place(a.errorOverlay.View())
	case a.confirm != nil:
		return a.place(a.confirm.View())
	case a.dialog != nil:
		return a.place(a.dialog.View())
	case a.editor.Visible():
		return a.place(a.editor.View())
	case a.showHelp:
		return help.Render(a.width, a.height, a.theme)
	}
	return a.renderNormalView()
}

func (a *App) place(box string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

// renderNormalView renders the panels between the top and bottom bars
func (a *App) renderNormalView() string {
	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyexplorer", a.connectionSummary()))

	bottomBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(a.statusText(), "[n] New  [s] Query  [/] Filter  [?] Help  [q] Quit"))

	// tree, with the search bar above it when shown
	innerW, innerH := a.treePanel.InnerSize()
	a.treeView.Width = innerW
	treeContent := ""
	if a.ctrl.Tree().SearchVisible() {
		a.search.Width = innerW
		treeContent = a.search.View() + "\n"
		innerH -= lipgloss.Height(treeContent) - 1
	}
	a.treeView.Height = max(innerH, 1)
	a.treePanel.Content = treeContent + a.treeView.View()

	// details of the selected item
	a.details.Width, a.details.Height = a.detailsPanel.InnerSize()
	if item, ok := a.ctrl.Tree().SelectedItem(); ok {
		a.details.SetDetails(itemTitle(item), a.ctrl.Tree().Details(item))
	} else {
		a.details.SetDetails("", nil)
	}
	a.detailsPanel.Content = a.details.View()

	a.table.Width, a.table.Height = a.previewPanel.InnerSize()
	a.previewPanel.Title = "Preview"
	if a.previewName != "" {
		a.previewPanel.Title = runewidth.Truncate("Preview: "+a.previewName, max(a.table.Width, 10), "…")
	}
	a.previewPanel.Content = a.table.View()

	right := lipgloss.JoinVertical(lipgloss.Left, a.detailsPanel.View(), a.previewPanel.View())
	panels := lipgloss.JoinHorizontal(lipgloss.Top, a.treePanel.View(), right)
	return lipgloss.JoinVertical(lipgloss.Left, topBar, panels, bottomBar)
}

func itemTitle(item models.TreeItem) string {
	switch item.Kind {
	case models.ItemSavedConnection, models.ItemConnection:
		return "connection"
	case models.ItemSchema:
		return item.Schema
	case models.ItemCategory:
		return item.Schema + " " + item.Category.String()
	default:
		return item.Kind.String() + " " + item.Schema + "." + item.Name
	}
}

func (a *App) connectionSummary() string {
	n := len(a.ctrl.Tree().ConnectionIDs())
	if n == 1 {
		return "1 connection"
	}
	return fmt.Sprintf("%d connections", n)
}

func (a *App) statusText() string {
	if a.ctrl.Tree().IsLoading() || a.running > 0 {
		if s := a.ctrl.Status(); s != "" && a.ctrl.Tree().IsLoading() {
			return s
		}
		return "Loading..."
	}
	return a.ctrl.Status()
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.width <= 0 || a.height <= 0 {
		return
	}

	// top and bottom bar
	contentHeight := max(a.height-2, 6)

	ratio := a.cfg.UI.PanelWidthRatio
	if ratio <= 0 || ratio >= 100 {
		ratio = 30
	}
	leftWidth := max(a.width*ratio/100, 20)
	rightWidth := a.width - leftWidth
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = max(a.width-rightWidth, 10)
	}

	detailsHeight := max(contentHeight*2/5, 3)

	a.treePanel.Width, a.treePanel.Height = leftWidth, contentHeight
	a.detailsPanel.Width, a.detailsPanel.Height = rightWidth, detailsHeight
	a.previewPanel.Width, a.previewPanel.Height = rightWidth, contentHeight-detailsHeight

	a.editor.Width = min(max(a.width-4, 20), 100)
	a.editor.Height = min(max(a.height-4, 12), 24)
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// padding on each side
	available := max(a.width-4, 0)

	leftLen := runewidth.StringWidth(left)
	rightLen := runewidth.StringWidth(right)
	if leftLen+rightLen+1 > available {
		if available > rightLen+1 {
			return runewidth.Truncate(left, available-rightLen-1, "…") + " " + right
		}
		return runewidth.Truncate(left, available, "…")
	}
	return left + runewidth.FillRight("", available-leftLen-rightLen) + right
}
