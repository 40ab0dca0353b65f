// Package ui provides the dashboard's main window and its components.
//
// This file defines the dashboard's compact dark Fyne theme.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Theme names accepted in Settings.Theme.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeSystem = "system"
)

var darkPalette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:        color.NRGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 0xFF},
	theme.ColorNameInputBackground:   color.NRGBA{R: 0x29, G: 0x29, B: 0x29, A: 0xFF},
	theme.ColorNameButton:            color.NRGBA{R: 0x2E, G: 0x2E, B: 0x2E, A: 0xFF},
	theme.ColorNameHeaderBackground:  color.NRGBA{R: 0x2E, G: 0x2E, B: 0x2E, A: 0xFF},
	theme.ColorNameMenuBackground:    color.NRGBA{R: 0x2E, G: 0x2E, B: 0x2E, A: 0xFF},
	theme.ColorNameOverlayBackground: color.NRGBA{R: 0x29, G: 0x29, B: 0x29, A: 0xFF},
	theme.ColorNameForeground:        color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF},
	theme.ColorNamePrimary:           color.NRGBA{R: 0x00, G: 0x5C, B: 0x9F, A: 0xFF},
	theme.ColorNameFocus:             color.NRGBA{R: 0x00, G: 0x5C, B: 0x9F, A: 0x80},
	theme.ColorNameSelection:         color.NRGBA{R: 0x00, G: 0x5C, B: 0x9F, A: 0x60},
}

// DashboardTheme wraps the default Fyne theme with the dashboard's dark
// palette and compact sizing.
type DashboardTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	name    string
}

// NewDashboardTheme creates the theme named by Settings.Theme. Unknown names
// fall back to dark.
func NewDashboardTheme(name string) *DashboardTheme {
	t := &DashboardTheme{base: theme.DefaultTheme()}
	t.SetName(name)
	return t
}

// SetName switches between the dark, light and system variants.
func (t *DashboardTheme) SetName(name string) {
	switch name {
	case ThemeLight:
		t.name, t.variant = ThemeLight, theme.VariantLight
	case ThemeSystem:
		t.name, t.variant = ThemeSystem, 0
	default:
		t.name, t.variant = ThemeDark, theme.VariantDark
	}
}

// Name returns the normalized theme name.
func (t *DashboardTheme) Name() string { return t.name }

// Color uses the dark palette in dark mode and delegates everything else.
func (t *DashboardTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.name == ThemeSystem {
		return t.base.Color(name, variant)
	}
	if t.name == ThemeDark {
		if c, ok := darkPalette[name]; ok {
			return c
		}
	}
	return t.base.Color(name, t.variant)
}

// Font delegates to the base theme.
func (t *DashboardTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *DashboardTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *DashboardTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
