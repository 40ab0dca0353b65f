package ui

import (
	"errors"
	"fmt"
	"path"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/kevinbotlib/dashboard/internal/engine"
	"github.com/kevinbotlib/dashboard/internal/model"
	"github.com/kevinbotlib/dashboard/internal/project"
	"github.com/kevinbotlib/dashboard/internal/telemetry"
)

// ─── History ───────────────────────────────────────────────

func (a *App) current(label string) Snapshot {
	g := a.engine.Grid()
	return MakeSnapshot(a.engine.Records(), g.Rows(), g.Cols(), label)
}

// recordChange pushes the state from before the latest change onto the undo
// stack. Changes that leave the board as it was are not recorded.
func (a *App) recordChange(label string) {
	if a.restoring {
		return
	}
	next := a.current(label)
	if equalSnapshots(a.last, next) {
		return
	}
	prev := a.last
	prev.Label = label
	a.history.Push(prev)
	a.last = next
	a.updateHistoryControls()
}

// restoreSnapshot rebuilds the board from s without recording history.
func (a *App) restoreSnapshot(s Snapshot) {
	a.restoring = true
	a.engine.Clear()
	a.engine.ResizeGrid(s.Rows, s.Cols)
	a.engine.FromRecords(s.Records, a.registry.Factory())
	a.restoring = false

	a.last = MakeSnapshot(s.Records, s.Rows, s.Cols, s.Label)
	a.settings.Rows, a.settings.Cols = s.Rows, s.Cols
	a.board.Sync()
	a.refreshValues()
}

// Undo reverts the most recent layout change.
func (a *App) Undo() {
	s, ok := a.history.Undo(a.current(""))
	if !ok {
		return
	}
	a.restoreSnapshot(s)
	a.updateHistoryControls()
	a.logger.Debug("undo", "change", s.Label)
}

// Redo reapplies the most recently undone change.
func (a *App) Redo() {
	s, ok := a.history.Redo(a.current(""))
	if !ok {
		return
	}
	a.restoreSnapshot(s)
	a.updateHistoryControls()
	a.logger.Debug("redo", "change", s.Label)
}

// ─── Layout Editing ────────────────────────────────────────

func (a *App) onGestureEnd(item *engine.Item, committed bool) {
	if committed {
		a.recordChange("Arrange Widget")
	}
}

func (a *App) onRemoved(item *engine.Item) {
	a.board.RemoveTile(item)
	a.recordChange("Delete Widget")
}

// AddWidget creates a text widget bound to key and auto-places it.
func (a *App) AddWidget(key string) error {
	item := a.registry.Build(widgetRecord(path.Base(key), key))
	if err := a.engine.Add(item); err != nil {
		return err
	}
	a.board.AddTile(item)
	a.recordChange("Add Widget")
	a.refreshValues()
	return nil
}

func (a *App) addSelectedWidget() {
	if a.selectedKey == "" {
		dialog.ShowInformation("No key selected", "Select a telemetry key in the data tree first.", a.window)
		return
	}
	if err := a.AddWidget(a.selectedKey); err != nil {
		if errors.Is(err, engine.ErrNoSpace) {
			dialog.ShowInformation("Grid full", "There is no free space on the grid for this widget.", a.window)
			return
		}
		dialog.ShowError(err, a.window)
	}
}

// ClearLayout removes every widget as one undoable change.
func (a *App) ClearLayout() {
	a.restoring = true
	a.engine.Clear()
	a.restoring = false
	a.board.Sync()
	a.recordChange("Clear Layout")
}

// ReplaceLayout swaps the board for an untrusted layout. Each record keeps
// its stored cell when it fits there and is auto-placed otherwise; records
// that fit nowhere are skipped. It returns how many widgets were placed and
// skipped.
func (a *App) ReplaceLayout(records []model.LayoutRecord, label string) (placed, skipped int) {
	a.restoring = true
	a.engine.Clear()
	items, rest := a.engine.Arrange(records, a.registry.Factory())
	for _, rec := range rest {
		a.logger.Warn("widget does not fit the grid", "title", rec.Title, "span_x", rec.SpanX, "span_y", rec.SpanY)
	}
	placed, skipped = len(items), len(rest)
	a.restoring = false

	a.board.Sync()
	a.recordChange(label)
	a.refreshValues()
	return placed, skipped
}

// ─── Settings ──────────────────────────────────────────────

// ApplySettings applies edited settings in order: network settings are
// persisted and the client reconfigured, then the cell size changes, then
// the grid is resized. When the resize is rejected the current rows and
// columns are kept and written back, and the resize error is returned.
func (a *App) ApplySettings(next model.Settings) error {
	next.Normalize()

	a.settings.IP, a.settings.Port, a.settings.RedisDB = next.IP, next.Port, next.RedisDB
	if a.client != nil {
		a.client.Reconfigure(next.IP, next.Port)
	}
	a.setIP(next.IP)

	if next.CellSize != a.engine.Grid().CellSize() {
		a.engine.SetCellSize(next.CellSize)
		a.registry = newRegistry(next.CellSize)
		a.settings.CellSize = next.CellSize
	}

	var resizeErr error
	if a.engine.ResizeGrid(next.Rows, next.Cols) {
		a.recordChange("Resize Grid")
	} else {
		resizeErr = errResizeGrid
	}
	g := a.engine.Grid()
	a.settings.Rows, a.settings.Cols = g.Rows(), g.Cols()
	a.board.Refresh()

	a.settings.AutoSaveInterval = next.AutoSaveInterval
	if err := a.autosave.Schedule(next.AutoSaveInterval); err != nil {
		a.logger.Error("autosave disabled", "err", err)
	}
	if next.Theme != a.settings.Theme {
		a.settings.Theme = next.Theme
		a.theme.SetName(next.Theme)
		a.app.Settings().SetTheme(a.theme)
	}

	if err := a.saveSettings(a.persistedSettings()); err != nil {
		return err
	}
	return resizeErr
}

// persistedSettings is what is on disk: the edited preferences with the
// layout as it was last saved.
func (a *App) persistedSettings() model.Settings {
	s := a.settings
	if s.Layout == nil {
		s.Layout = []model.LayoutRecord{}
	}
	return s
}

func (a *App) saveSettings(s model.Settings) error {
	if a.configPath == "" {
		return nil
	}
	if err := project.SaveSettings(a.configPath, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ─── Saving ────────────────────────────────────────────────

// SaveLayout writes the settings file with the current layout and, when a
// named layout is open, stores it in the library as well.
func (a *App) SaveLayout() error {
	a.settings = a.Settings()
	if err := a.saveSettings(a.settings); err != nil {
		return err
	}
	if a.library != nil && a.layoutName != "" {
		if err := a.library.Save(a.layoutName, a.settings.Rows, a.settings.Cols, a.settings.Layout); err != nil {
			return err
		}
	}
	a.logger.Info("layout saved", "widgets", len(a.settings.Layout), "path", a.configPath)
	a.app.SendNotification(fyne.NewNotification("Layout Saved", fmt.Sprintf("Saved %d widgets.", len(a.settings.Layout))))
	return nil
}

func (a *App) saveLayoutInteractive() {
	if err := a.SaveLayout(); err != nil {
		dialog.ShowError(err, a.window)
	}
}

// valueOf returns the display text of key from the latest telemetry.
func (a *App) valueOf(key string) string {
	fields, ok := a.values.Value(key)
	if !ok {
		return ""
	}
	return telemetry.JoinFields(fields)
}
