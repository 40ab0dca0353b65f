package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// DefaultConfigDir returns the default directory for dashboard configuration.
// On all platforms this is ~/.kevinbotlib-dashboard/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".kevinbotlib-dashboard")
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// DefaultLibraryPath returns the default path for the named layout database.
func DefaultLibraryPath() string {
	return filepath.Join(DefaultConfigDir(), "layouts.db")
}

// SaveSettings persists settings to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveSettings(path string, s model.Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if s.Layout == nil {
		s.Layout = []model.LayoutRecord{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// settingsFile mirrors model.Settings but defers decoding of the layout so a
// damaged layout does not cost the rest of the preferences.
type settingsFile struct {
	model.Settings
	Layout json.RawMessage `json:"layout"`
}

// LoadSettings reads settings from the given path.
// If the file does not exist, it returns DefaultSettings with no error.
// A layout member that cannot be decoded is replaced by an empty layout.
// Numeric fields are clamped into their supported ranges.
func LoadSettings(path string, logger *log.Logger) (model.Settings, error) {
	if logger == nil {
		logger = log.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, err
	}

	var file settingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return model.Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	s := file.Settings
	s.Layout, err = model.DecodeLayout(file.Layout)
	if err != nil {
		logger.Warn("discarding unreadable layout", "path", path, "err", err)
		s.Layout = []model.LayoutRecord{}
	}
	s.Normalize()
	return s, nil
}
