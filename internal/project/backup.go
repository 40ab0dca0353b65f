package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all dashboard data.
type BackupData struct {
	Version   string                          `json:"version"`
	CreatedAt string                          `json:"created_at"`
	Settings  model.Settings                  `json:"settings"`
	Layouts   map[string][]model.LayoutRecord `json:"layouts,omitempty"` // Named layouts from the library
}

// ExportAllData exports the settings (including the current layout) and any
// named layouts to a single JSON file at the specified path.
func ExportAllData(exportPath string, settings model.Settings, layouts map[string][]model.LayoutRecord) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Layouts:   layouts,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported settings.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	backup.Settings.Normalize()
	if backup.Layouts == nil {
		backup.Layouts = map[string][]model.LayoutRecord{}
	}
	return backup, nil
}
