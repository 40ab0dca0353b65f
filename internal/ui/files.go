package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/kevinbotlib/dashboard/internal/export"
	layoutimporter "github.com/kevinbotlib/dashboard/internal/importer"
	"github.com/kevinbotlib/dashboard/internal/model"
	"github.com/kevinbotlib/dashboard/internal/project"
)

// ─── Export Functions ──────────────────────────────────────

// saveFile asks for a destination and runs write with its path.
func (a *App) saveFile(defaultName, ext string, write func(path string) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(defaultName)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}

func (a *App) exportPDF() {
	s := a.Settings()
	a.saveFile(a.exportName()+".pdf", ".pdf", func(path string) error {
		return export.ExportPDF(path, s, s.Layout)
	})
}

func (a *App) exportXLSX() {
	s := a.Settings()
	a.saveFile(a.exportName()+".xlsx", ".xlsx", func(path string) error {
		return export.ExportXLSX(path, s, s.Layout)
	})
}

func (a *App) exportCSV() {
	s := a.Settings()
	a.saveFile(a.exportName()+".csv", ".csv", func(path string) error {
		return export.ExportCSV(path, s.Layout)
	})
}

func (a *App) exportName() string {
	if a.layoutName != "" {
		return a.layoutName
	}
	return "layout"
}

// ─── Import Functions ──────────────────────────────────────

func (a *App) importLayout() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.handleImportResult(layoutimporter.ImportFile(path))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".xlsx", ".json"}))
	d.Show()
}

func (a *App) handleImportResult(result layoutimporter.ImportResult) {
	for _, w := range result.Warnings {
		a.logger.Warn("import", "warning", w)
	}

	if err := result.Err(); err != nil {
		dialog.ShowError(errorList("Nothing was imported:", result.Errors), a.window)
		return
	}
	if len(result.Errors) > 0 {
		dialog.ShowError(errorList("Errors encountered during import:", result.Errors), a.window)
	}

	placed, skipped := a.ReplaceLayout(result.Records, "Import Layout")
	msg := fmt.Sprintf("Successfully imported %d widgets.", placed)
	if skipped > 0 {
		msg += fmt.Sprintf("\n\n%d widgets did not fit the grid and were skipped.", skipped)
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

// ─── Layout Library ────────────────────────────────────────

func (a *App) requireLibrary() bool {
	if a.library == nil {
		dialog.ShowError(fmt.Errorf("the layout library is not available"), a.window)
		return false
	}
	return true
}

// SaveLayoutAs stores the current layout in the library under name and makes
// it the open layout.
func (a *App) SaveLayoutAs(name string) error {
	name = strings.TrimSpace(name)
	s := a.Settings()
	if err := a.library.Save(name, s.Rows, s.Cols, s.Layout); err != nil {
		return err
	}
	a.layoutName = name
	a.settings.AddRecentLayout(name, maxRecentLayouts)
	a.updateTitle()
	return a.saveSettings(a.persistedSettings())
}

// OpenLayout replaces the board with a layout from the library.
func (a *App) OpenLayout(name string) error {
	stored, err := a.library.Load(name)
	if err != nil {
		return err
	}
	a.restoring = true
	a.engine.Clear()
	a.restoring = false
	if !a.engine.ResizeGrid(stored.Rows, stored.Cols) {
		return errResizeGrid
	}
	a.settings.Rows, a.settings.Cols = stored.Rows, stored.Cols
	a.ReplaceLayout(stored.Records, "Open Layout")
	a.layoutName = name
	a.settings.AddRecentLayout(name, maxRecentLayouts)
	a.updateTitle()
	return a.saveSettings(a.persistedSettings())
}

func (a *App) updateTitle() {
	title := "KevinbotLib Dashboard"
	if a.layoutName != "" {
		title += " - " + a.layoutName
	}
	a.window.SetTitle(title)
}

func (a *App) showSaveAsDialog() {
	if !a.requireLibrary() {
		return
	}
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Layout name")
	nameEntry.SetText(a.layoutName)

	form := dialog.NewForm("Save Layout As", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", nameEntry)},
		func(ok bool) {
			if !ok {
				return
			}
			if err := a.SaveLayoutAs(nameEntry.Text); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.app.SendNotification(fyne.NewNotification("Layout Saved", fmt.Sprintf("Saved as %q.", a.layoutName)))
		},
		a.window,
	)
	form.Resize(fyne.NewSize(360, 160))
	form.Show()
}

// pickLayout shows the library entries, most recent first, and calls fn
// with the chosen name.
func (a *App) pickLayout(title, confirm string, fn func(name string) error) {
	if !a.requireLibrary() {
		return
	}
	entries, err := a.library.List()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if len(entries) == 0 {
		dialog.ShowInformation(title, "No saved layouts yet. Use 'Save Layout As...' first.", a.window)
		return
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	selector := widget.NewSelect(names, nil)
	selector.SetSelected(names[0])
	details := widget.NewLabel("")
	describe := func(name string) {
		for _, e := range entries {
			if e.Name == name {
				details.SetText(fmt.Sprintf("%d x %d grid, %d widgets, saved %s",
					e.Rows, e.Cols, e.Widgets, e.UpdatedAt.Format("2006-01-02 15:04")))
			}
		}
	}
	selector.OnChanged = describe
	describe(names[0])

	form := dialog.NewForm(title, confirm, "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Layout", selector),
			widget.NewFormItem("", details),
		},
		func(ok bool) {
			if !ok || selector.Selected == "" {
				return
			}
			if err := fn(selector.Selected); err != nil {
				dialog.ShowError(err, a.window)
			}
		},
		a.window,
	)
	form.Resize(fyne.NewSize(420, 200))
	form.Show()
}

func (a *App) showOpenLayoutDialog() {
	a.pickLayout("Open Layout", "Open", a.OpenLayout)
}

func (a *App) showDeleteLayoutDialog() {
	a.pickLayout("Delete Layout", "Delete", func(name string) error {
		if err := a.library.Delete(name); err != nil {
			return err
		}
		if a.layoutName == name {
			a.layoutName = ""
			a.updateTitle()
		}
		return nil
	})
}

// ─── Backup & Restore ──────────────────────────────────────

func (a *App) backupAllData() {
	layouts := map[string][]model.LayoutRecord{}
	if a.library != nil {
		all, err := a.library.All()
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		layouts = all
	}
	s := a.Settings()
	a.saveFile("dashboard-backup.json", ".json", func(path string) error {
		return project.ExportAllData(path, s, layouts)
	})
}

// RestoreBackup applies a backup: library layouts are written back, the
// settings are applied and the backed-up layout replaces the board.
func (a *App) RestoreBackup(data project.BackupData) error {
	if a.library != nil {
		for name, records := range data.Layouts {
			if err := a.library.Save(name, data.Settings.Rows, data.Settings.Cols, records); err != nil {
				return err
			}
		}
	}
	a.restoring = true
	a.engine.Clear()
	a.restoring = false
	if err := a.ApplySettings(data.Settings); err != nil {
		return err
	}
	a.settings.RecentLayouts = data.Settings.RecentLayouts
	a.ReplaceLayout(data.Settings.Layout, "Restore Backup")
	return nil
}

func (a *App) restoreBackup() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		data, err := project.ImportAllData(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowConfirm("Restore Backup",
			fmt.Sprintf("Replace the current layout and settings with the backup from %s?", data.CreatedAt),
			func(ok bool) {
				if !ok {
					return
				}
				if err := a.RestoreBackup(data); err != nil {
					dialog.ShowError(err, a.window)
				}
			}, a.window)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}
