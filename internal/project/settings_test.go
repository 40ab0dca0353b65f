package project

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kevinbotlib/dashboard/internal/model"
)

func TestSaveAndLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	s := model.DefaultSettings()
	s.CellSize = 32
	s.Rows = 12
	s.Cols = 20
	s.IP = "10.0.0.5"
	s.Port = 9000
	s.Theme = "light"
	s.AutoSaveInterval = 5
	s.RecentLayouts = []string{"match", "pit"}
	s.Layout = []model.LayoutRecord{
		{Pos: [2]int{1, 2}, SpanX: 3, SpanY: 2, Kind: "text", Title: "Battery", Info: map[string]any{"key": "robot/battery"}},
	}

	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded, err := LoadSettings(path, nil)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if loaded.CellSize != 32 || loaded.Rows != 12 || loaded.Cols != 20 {
		t.Errorf("expected grid 32/12/20, got %d/%d/%d", loaded.CellSize, loaded.Rows, loaded.Cols)
	}
	if loaded.Address() != "10.0.0.5:9000" {
		t.Errorf("expected address 10.0.0.5:9000, got %s", loaded.Address())
	}
	if loaded.Theme != "light" {
		t.Errorf("expected theme=light, got %s", loaded.Theme)
	}
	if len(loaded.RecentLayouts) != 2 {
		t.Errorf("expected 2 recent layouts, got %d", len(loaded.RecentLayouts))
	}
	if len(loaded.Layout) != 1 {
		t.Fatalf("expected 1 layout record, got %d", len(loaded.Layout))
	}
	rec := loaded.Layout[0]
	if rec.Col() != 1 || rec.Row() != 2 || rec.SpanX != 3 || rec.SpanY != 2 {
		t.Errorf("unexpected record geometry %+v", rec)
	}
	if rec.BoundKey() != "robot/battery" {
		t.Errorf("expected bound key robot/battery, got %q", rec.BoundKey())
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	s, err := LoadSettings(path, nil)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if s.CellSize != 48 || s.Rows != 10 || s.Cols != 10 {
		t.Errorf("expected default grid, got %d/%d/%d", s.CellSize, s.Rows, s.Cols)
	}
	if s.IP != "10.0.0.2" || s.Port != 8765 {
		t.Errorf("expected default address, got %s", s.Address())
	}
	if s.Layout == nil || len(s.Layout) != 0 {
		t.Errorf("expected empty non-nil layout, got %v", s.Layout)
	}
}

func TestLoadSettingsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path, nil); err == nil {
		t.Fatal("expected error for corrupt settings file")
	}
}

func TestLoadSettingsBadLayoutKeepsPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"grid": 64, "rows": 4, "cols": 6, "layout": {"not": "a list"}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := log.New(&buf)
	s, err := LoadSettings(path, logger)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.CellSize != 64 || s.Rows != 4 || s.Cols != 6 {
		t.Errorf("expected grid 64/4/6, got %d/%d/%d", s.CellSize, s.Rows, s.Cols)
	}
	if len(s.Layout) != 0 {
		t.Errorf("expected empty layout, got %d records", len(s.Layout))
	}
	if !strings.Contains(buf.String(), "discarding unreadable layout") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestLoadSettingsClampsRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"grid": 4, "rows": 900, "cols": 3, "port": 80, "layout": null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path, nil)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.CellSize != model.MinCellSize {
		t.Errorf("expected cell size %d, got %d", model.MinCellSize, s.CellSize)
	}
	if s.Rows != model.MaxGridDim {
		t.Errorf("expected rows %d, got %d", model.MaxGridDim, s.Rows)
	}
	if s.Port != model.MinPort {
		t.Errorf("expected port %d, got %d", model.MinPort, s.Port)
	}
	if s.Layout == nil {
		t.Error("layout should not be nil")
	}
}

func TestSaveSettingsCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "config.json")
	if err := SaveSettings(path, model.DefaultSettings()); err != nil {
		t.Fatalf("SaveSettings should create parent dirs: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"layout": []`) {
		t.Errorf("expected an empty layout list in %s", data)
	}
}
