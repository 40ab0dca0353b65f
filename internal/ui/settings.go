package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// errResizeGrid is shown when the board cannot shrink around its widgets.
var errResizeGrid = errors.New("Cannot resize grid to the specified dimensions.")

// settingsForm holds the raw text of the settings dialog.
type settingsForm struct {
	CellSize string
	Rows     string
	Cols     string
	IP       string
	Port     string
	AutoSave string
	Theme    string
}

func formFromSettings(s model.Settings) settingsForm {
	return settingsForm{
		CellSize: strconv.Itoa(s.CellSize),
		Rows:     strconv.Itoa(s.Rows),
		Cols:     strconv.Itoa(s.Cols),
		IP:       s.IP,
		Port:     strconv.Itoa(s.Port),
		AutoSave: strconv.Itoa(s.AutoSaveInterval),
		Theme:    s.Theme,
	}
}

func parseRange(name, text string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be a whole number between %d and %d", name, lo, hi)
	}
	return v, nil
}

// parse validates the form and returns base with the edited fields applied.
func (f settingsForm) parse(base model.Settings) (model.Settings, error) {
	out := base
	var err error
	if out.CellSize, err = parseRange("Grid size", f.CellSize, model.MinCellSize, model.MaxCellSize); err != nil {
		return base, err
	}
	if out.Rows, err = parseRange("Rows", f.Rows, model.MinGridDim, model.MaxGridDim); err != nil {
		return base, err
	}
	if out.Cols, err = parseRange("Columns", f.Cols, model.MinGridDim, model.MaxGridDim); err != nil {
		return base, err
	}
	ip := strings.TrimSpace(f.IP)
	if !model.ValidIPv4(ip) {
		return base, fmt.Errorf("%q is not a valid IPv4 address", ip)
	}
	out.IP = ip
	if out.Port, err = parseRange("Port", f.Port, model.MinPort, model.MaxPort); err != nil {
		return base, err
	}
	if out.AutoSaveInterval, err = parseRange("Autosave interval", f.AutoSave, 0, 24*60); err != nil {
		return base, err
	}
	switch f.Theme {
	case ThemeDark, ThemeLight, ThemeSystem:
		out.Theme = f.Theme
	default:
		return base, fmt.Errorf("unknown theme %q", f.Theme)
	}
	return out, nil
}

// showSettingsDialog opens the settings form and applies it on confirm.
func (a *App) showSettingsDialog() {
	f := formFromSettings(a.settings)

	entry := func(text string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(text)
		return e
	}
	cellEntry := entry(f.CellSize)
	rowsEntry := entry(f.Rows)
	colsEntry := entry(f.Cols)
	ipEntry := entry(f.IP)
	portEntry := entry(f.Port)
	autoSaveEntry := entry(f.AutoSave)
	themeSelect := widget.NewSelect([]string{ThemeDark, ThemeLight, ThemeSystem}, nil)
	themeSelect.SetSelected(f.Theme)

	ipEntry.Validator = func(s string) error {
		if !model.ValidIPv4(strings.TrimSpace(s)) {
			return errors.New("invalid IPv4 address")
		}
		return nil
	}

	form := dialog.NewForm("Settings", "Apply", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Grid Size (px)", cellEntry),
			widget.NewFormItem("Rows", rowsEntry),
			widget.NewFormItem("Columns", colsEntry),
			widget.NewFormItem("Robot IP", ipEntry),
			widget.NewFormItem("Port", portEntry),
			widget.NewFormItem("Autosave (min, 0 = off)", autoSaveEntry),
			widget.NewFormItem("Theme", themeSelect),
		},
		func(ok bool) {
			if !ok {
				return
			}
			next, err := settingsForm{
				CellSize: cellEntry.Text,
				Rows:     rowsEntry.Text,
				Cols:     colsEntry.Text,
				IP:       ipEntry.Text,
				Port:     portEntry.Text,
				AutoSave: autoSaveEntry.Text,
				Theme:    themeSelect.Selected,
			}.parse(a.settings)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			if err := a.ApplySettings(next); err != nil {
				dialog.ShowError(err, a.window)
			}
		},
		a.window,
	)
	form.Resize(fyne.NewSize(420, 420))
	form.Show()
}
