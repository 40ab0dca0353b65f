package project

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// ErrLayoutNotFound is returned when a named layout does not exist.
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutEntry describes one stored layout without its records.
type LayoutEntry struct {
	Name      string
	Rows      int
	Cols      int
	Widgets   int
	UpdatedAt time.Time
}

// StoredLayout is a named layout together with the grid it was built on.
type StoredLayout struct {
	LayoutEntry
	Records []model.LayoutRecord
}

// Library stores named layouts in a SQLite database.
type Library struct {
	conn *sql.DB
}

// OpenLibrary opens (or creates) the layout database at dbPath.
func OpenLibrary(dbPath string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer only.
	conn.SetMaxOpenConns(1)

	lib := &Library{conn: conn}
	if err := lib.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return lib, nil
}

// Close closes the database connection.
func (l *Library) Close() error {
	return l.conn.Close()
}

func (l *Library) migrate() error {
	_, err := l.conn.Exec(`CREATE TABLE IF NOT EXISTS layouts (
		name TEXT PRIMARY KEY,
		rows INTEGER NOT NULL,
		cols INTEGER NOT NULL,
		widgets INTEGER NOT NULL DEFAULT 0,
		layout_json TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Save stores records under name, replacing any layout already saved there.
func (l *Library) Save(name string, rows, cols int, records []model.LayoutRecord) error {
	if name == "" {
		return errors.New("layout name is empty")
	}
	if records == nil {
		records = []model.LayoutRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode layout %q: %w", name, err)
	}
	now := time.Now().UTC()
	_, err = l.conn.Exec(
		`INSERT INTO layouts (name, rows, cols, widgets, layout_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			rows = excluded.rows,
			cols = excluded.cols,
			widgets = excluded.widgets,
			layout_json = excluded.layout_json,
			updated_at = excluded.updated_at`,
		name, rows, cols, len(records), string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("save layout %q: %w", name, err)
	}
	return nil
}

// Load returns the layout stored under name.
func (l *Library) Load(name string) (StoredLayout, error) {
	var (
		out  StoredLayout
		data string
	)
	err := l.conn.QueryRow(
		`SELECT name, rows, cols, widgets, layout_json, updated_at FROM layouts WHERE name = ?`, name,
	).Scan(&out.Name, &out.Rows, &out.Cols, &out.Widgets, &data, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredLayout{}, fmt.Errorf("%q: %w", name, ErrLayoutNotFound)
	}
	if err != nil {
		return StoredLayout{}, fmt.Errorf("load layout %q: %w", name, err)
	}
	out.Records, err = model.DecodeLayout([]byte(data))
	if err != nil {
		return StoredLayout{}, fmt.Errorf("decode layout %q: %w", name, err)
	}
	return out, nil
}

// List returns every stored layout, most recently updated first.
func (l *Library) List() ([]LayoutEntry, error) {
	rows, err := l.conn.Query(`SELECT name, rows, cols, widgets, updated_at FROM layouts ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LayoutEntry
	for rows.Next() {
		var e LayoutEntry
		if err := rows.Scan(&e.Name, &e.Rows, &e.Cols, &e.Widgets, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// All returns the records of every stored layout keyed by name.
func (l *Library) All() (map[string][]model.LayoutRecord, error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]model.LayoutRecord, len(entries))
	for _, e := range entries {
		stored, err := l.Load(e.Name)
		if err != nil {
			return nil, err
		}
		out[e.Name] = stored.Records
	}
	return out, nil
}

// Delete removes the layout stored under name.
func (l *Library) Delete(name string) error {
	res, err := l.conn.Exec(`DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete layout %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%q: %w", name, ErrLayoutNotFound)
	}
	return nil
}
