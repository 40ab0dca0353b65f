package ui

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/kevinbotlib/dashboard/internal/engine"
	"github.com/kevinbotlib/dashboard/internal/model"
	"github.com/kevinbotlib/dashboard/internal/project"
	"github.com/kevinbotlib/dashboard/internal/telemetry"
	"github.com/kevinbotlib/dashboard/internal/ui/widgets"
)

// maxRecentLayouts bounds Settings.RecentLayouts.
const maxRecentLayouts = 10

// Options configures NewApp.
type Options struct {
	Logger     *log.Logger
	ConfigPath string // settings file; empty disables saving and watching
	Settings   model.Settings
	Client     telemetry.Client
	Library    *project.Library // optional named-layout store
}

// App holds all application state and UI references.
type App struct {
	app        fyne.App
	window     fyne.Window
	logger     *log.Logger
	configPath string
	settings   model.Settings
	theme      *DashboardTheme

	engine    *engine.Engine
	registry  *engine.Registry
	board     *widgets.GridCanvas
	history   *History
	last      Snapshot // layout as of the last recorded change
	restoring bool     // set while a snapshot is being rebuilt

	client   telemetry.Client
	poller   *telemetry.Poller
	values   telemetry.Snapshot
	data     *telemetry.Tree
	library  *project.Library
	autosave *AutoSaver
	cancel   context.CancelFunc

	layoutName  string
	selectedKey string

	// UI references for dynamic updates
	tree         *widget.Tree
	addButton    *ttwidget.Button
	undoButton   *ttwidget.Button
	redoButton   *ttwidget.Button
	connLabel    *widget.Label
	ipLabel      *widget.Label
	latencyLabel *widget.Label
}

// NewApp builds the dashboard state from opts and restores the saved layout.
func NewApp(application fyne.App, window fyne.Window, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := opts.Settings
	s.Normalize()

	a := &App{
		app:        application,
		window:     window,
		logger:     logger,
		configPath: opts.ConfigPath,
		settings:   s,
		theme:      NewDashboardTheme(s.Theme),
		client:     opts.Client,
		library:    opts.Library,
		history:    NewHistory(),
		data:       telemetry.BuildTree(nil),
	}

	a.engine = engine.New(engine.NewGrid(s.Rows, s.Cols, s.CellSize), logger)
	a.registry = newRegistry(s.CellSize)
	a.engine.FromRecords(s.Layout, a.registry.Factory())
	a.engine.OnRemoved(a.onRemoved)
	a.board = widgets.NewGridCanvas(a.engine)
	a.board.OnGestureEnd = a.onGestureEnd
	a.last = a.current("")

	a.poller = telemetry.NewPoller(a.client, logger,
		time.Duration(s.PollIntervalMS)*time.Millisecond,
		time.Duration(s.LatencyIntervalMS)*time.Millisecond)
	a.poller.OnSnapshot(func(snap telemetry.Snapshot) {
		fyne.Do(func() { a.onSnapshot(snap) })
	})
	a.poller.OnLatency(func(d time.Duration) {
		fyne.Do(func() { a.setLatency(d) })
	})
	a.poller.OnConnection(func(connected bool) {
		fyne.Do(func() { a.setConnected(connected) })
	})

	a.autosave = NewAutoSaver(logger, func() error {
		var err error
		fyne.DoAndWait(func() { err = a.SaveLayout() })
		return err
	})

	application.Settings().SetTheme(a.theme)
	return a
}

// Engine exposes the placement engine.
func (a *App) Engine() *engine.Engine { return a.engine }

// Settings returns the current settings with the live layout.
func (a *App) Settings() model.Settings {
	s := a.settings
	g := a.engine.Grid()
	s.CellSize, s.Rows, s.Cols = g.CellSize(), g.Rows(), g.Cols()
	s.Layout = a.engine.Records()
	return s
}

// Start begins polling telemetry, autosaving and watching the settings file.
// Everything stops when ctx is cancelled or Shutdown is called.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	go a.poller.Run(ctx)

	if err := a.autosave.Schedule(a.settings.AutoSaveInterval); err != nil {
		a.logger.Error("autosave disabled", "err", err)
	}
	if a.configPath != "" {
		if err := project.Watch(ctx, a.configPath, a.logger, func() {
			fyne.Do(a.reloadNetworkSettings)
		}); err != nil {
			a.logger.Warn("not watching settings file", "path", a.configPath, "err", err)
		}
	}
}

// Shutdown stops background work.
func (a *App) Shutdown() {
	a.autosave.Stop()
	if a.cancel != nil {
		a.cancel()
	}
}

// SetupMenus creates the native menu bar and the matching window shortcuts.
func (a *App) SetupMenus() {
	saveItem := fyne.NewMenuItem("Save Layout", func() { a.saveLayoutInteractive() })
	saveItem.Shortcut = a.shortcut(fyne.KeyS, 0, func() { a.saveLayoutInteractive() })

	undoItem := fyne.NewMenuItem("Undo", a.Undo)
	undoItem.Shortcut = a.shortcut(fyne.KeyZ, 0, a.Undo)
	redoItem := fyne.NewMenuItem("Redo", a.Redo)
	redoItem.Shortcut = a.shortcut(fyne.KeyZ, fyne.KeyModifierShift, a.Redo)
	settingsItem := fyne.NewMenuItem("Settings...", a.showSettingsDialog)
	settingsItem.Shortcut = a.shortcut(fyne.KeyComma, 0, a.showSettingsDialog)

	// File Menu
	fileMenu := fyne.NewMenu("File",
		saveItem,
		fyne.NewMenuItem("Save Layout As...", a.showSaveAsDialog),
		fyne.NewMenuItem("Open Layout...", a.showOpenLayoutDialog),
		fyne.NewMenuItem("Delete Layout...", a.showDeleteLayoutDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Layout...", a.importLayout),
		fyne.NewMenuItem("Export PDF...", a.exportPDF),
		fyne.NewMenuItem("Export XLSX...", a.exportXLSX),
		fyne.NewMenuItem("Export CSV...", a.exportCSV),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Backup All Data...", a.backupAllData),
		fyne.NewMenuItem("Restore Backup...", a.restoreBackup),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", a.confirmClose),
	)

	// Edit Menu
	editMenu := fyne.NewMenu("Edit",
		undoItem,
		redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Widget", a.addSelectedWidget),
		fyne.NewMenuItem("Clear Layout", a.ClearLayout),
		fyne.NewMenuItemSeparator(),
		settingsItem,
	)

	// Help Menu
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, helpMenu))
	a.window.SetCloseIntercept(a.confirmClose)
}

// shortcut builds a Ctrl/Cmd shortcut and registers it on the window canvas.
func (a *App) shortcut(key fyne.KeyName, extra fyne.KeyModifier, fn func()) fyne.Shortcut {
	sc := &desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault | extra}
	a.window.Canvas().AddShortcut(sc, func(fyne.Shortcut) { fn() })
	return sc
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About KevinbotLib Dashboard",
		"KevinbotLib Dashboard\n\n"+
			"Arrange live robot telemetry widgets on a snapping grid.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	split := container.NewHSplit(a.buildDataPanel(), container.NewScroll(a.board))
	split.Offset = 0.25

	content := container.NewBorder(a.buildToolbar(), a.buildStatusBar(), nil, nil, split)
	return fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas())
}

// ─── Toolbar & Status Bar ──────────────────────────────────

func (a *App) buildToolbar() fyne.CanvasObject {
	a.addButton = newIconButtonWithTooltip(theme.ContentAddIcon(), "Add a widget for the selected key", a.addSelectedWidget)
	a.addButton.Disable()
	a.undoButton = newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", a.Undo)
	a.redoButton = newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", a.Redo)
	a.updateHistoryControls()

	return container.NewHBox(
		newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Save layout", func() { a.saveLayoutInteractive() }),
		newIconButtonWithTooltip(theme.FolderOpenIcon(), "Open a saved layout", a.showOpenLayoutDialog),
		widget.NewSeparator(),
		a.undoButton,
		a.redoButton,
		widget.NewSeparator(),
		a.addButton,
		layout.NewSpacer(),
		newIconButtonWithTooltip(theme.SettingsIcon(), "Settings", a.showSettingsDialog),
	)
}

// updateHistoryControls names the pending undo and redo steps on the
// toolbar and disables the buttons when a stack is empty.
func (a *App) updateHistoryControls() {
	if a.undoButton == nil {
		return
	}
	update := func(b *ttwidget.Button, verb, label string) {
		if label == "" {
			b.SetToolTip(verb)
			b.Disable()
			return
		}
		b.SetToolTip(verb + " " + label)
		b.Enable()
	}
	update(a.undoButton, "Undo", a.history.UndoLabel())
	update(a.redoButton, "Redo", a.history.RedoLabel())
}

// newIconButtonWithTooltip creates an icon-only button with a hover tooltip.
func newIconButtonWithTooltip(icon fyne.Resource, tooltip string, tapped func()) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon("", icon, tapped)
	btn.SetToolTip(tooltip)
	return btn
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	a.connLabel = widget.NewLabel("")
	a.ipLabel = widget.NewLabel("")
	a.latencyLabel = widget.NewLabel("")
	a.setConnected(a.client != nil && a.client.Connected())
	a.setIP(a.settings.IP)
	a.setLatency(0)

	return container.NewHBox(a.connLabel, widget.NewSeparator(), a.ipLabel, layout.NewSpacer(), a.latencyLabel)
}

func (a *App) setConnected(connected bool) {
	if a.connLabel == nil {
		return
	}
	if connected {
		a.connLabel.SetText("Robot Connected")
		a.connLabel.Importance = widget.SuccessImportance
	} else {
		a.connLabel.SetText("Robot Disconnected")
		a.connLabel.Importance = widget.DangerImportance
	}
	a.connLabel.Refresh()
}

func (a *App) setIP(ip string) {
	if a.ipLabel != nil {
		a.ipLabel.SetText("IP: " + ip)
	}
}

func (a *App) setLatency(d time.Duration) {
	if a.latencyLabel != nil {
		a.latencyLabel.SetText(latencyText(d))
	}
}

func latencyText(d time.Duration) string {
	return fmt.Sprintf("Latency: %.2fms", float64(d.Microseconds())/1000)
}

// ─── Data Tree ─────────────────────────────────────────────

func (a *App) buildDataPanel() fyne.CanvasObject {
	a.tree = widget.NewTree(
		func(uid widget.TreeNodeID) []widget.TreeNodeID {
			return a.data.ChildUIDs(uid)
		},
		func(uid widget.TreeNodeID) bool {
			return a.data.IsBranch(uid)
		},
		func(bool) fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(uid widget.TreeNodeID, _ bool, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if n, ok := a.data.Node(uid); ok {
				label.SetText(n.Label())
			}
		},
	)
	a.tree.OnSelected = a.selectNode
	a.tree.OnUnselected = func(widget.TreeNodeID) { a.selectNode("") }

	return container.NewBorder(
		widget.NewLabelWithStyle("Data", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		a.tree,
	)
}

func (a *App) selectNode(uid string) {
	a.selectedKey = ""
	if n, ok := a.data.Node(uid); ok && n.Leaf() {
		a.selectedKey = n.Key
	}
	if a.addButton != nil {
		if a.selectedKey != "" {
			a.addButton.Enable()
		} else {
			a.addButton.Disable()
		}
	}
}

// onSnapshot publishes fresh telemetry to the data tree and the text tiles.
// The tree keeps its open branches and selection because node UIDs are key
// paths that survive the rebuild.
func (a *App) onSnapshot(s telemetry.Snapshot) {
	a.values = s
	if s.Tree != nil {
		a.data = s.Tree
	} else {
		a.data = telemetry.BuildTree(s.Values)
	}
	if a.tree != nil {
		a.tree.Refresh()
	}
	if a.selectedKey != "" {
		if n, ok := a.data.Node(a.selectedKey); !ok || !n.Leaf() {
			a.selectNode("")
		}
	}
	a.refreshValues()
}

// refreshValues writes the latest value of each bound key into its tile.
func (a *App) refreshValues() {
	for _, it := range a.engine.Items() {
		if it.Kind != model.KindText || it.Placeholder {
			continue
		}
		key, _ := it.Payload[model.InfoKey].(string)
		a.board.SetValue(it, a.valueOf(key))
	}
}

// ─── Close Prompt ──────────────────────────────────────────

func (a *App) confirmClose() {
	var d dialog.Dialog
	yes := widget.NewButton("Yes", func() {
		d.Hide()
		if err := a.SaveLayout(); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.quit()
	})
	yes.Importance = widget.HighImportance
	no := widget.NewButton("No", func() {
		d.Hide()
		a.quit()
	})
	cancel := widget.NewButton("Cancel", func() { d.Hide() })

	d = dialog.NewCustomWithoutButtons("Save Layout",
		container.NewVBox(
			widget.NewLabel("Do you want to save the current layout before exiting?"),
			container.NewHBox(layout.NewSpacer(), yes, no, cancel),
		),
		a.window,
	)
	d.Show()
}

func (a *App) quit() {
	a.Shutdown()
	a.window.Close()
}

func (a *App) reloadNetworkSettings() {
	s, err := project.LoadSettings(a.configPath, a.logger)
	if err != nil {
		a.logger.Warn("settings file changed but could not be read", "err", err)
		return
	}
	if s.IP == a.settings.IP && s.Port == a.settings.Port && s.RedisDB == a.settings.RedisDB {
		return
	}
	a.settings.IP, a.settings.Port, a.settings.RedisDB = s.IP, s.Port, s.RedisDB
	if a.client != nil {
		a.client.Reconfigure(s.IP, s.Port)
	}
	a.setIP(s.IP)
	a.logger.Info("network settings reloaded", "addr", s.Address())
}

// errorList formats import problems for a dialog.
func errorList(title string, lines []string) error {
	return fmt.Errorf("%s\n\n%s", title, strings.Join(lines, "\n"))
}

// equalSnapshots reports whether two snapshots describe the same board.
func equalSnapshots(x, y Snapshot) bool {
	return x.Rows == y.Rows && x.Cols == y.Cols && reflect.DeepEqual(x.Records, y.Records)
}
