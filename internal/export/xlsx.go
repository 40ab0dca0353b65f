package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// Columns is the header written by the spreadsheet exports.
var Columns = []string{"col", "row", "span_x", "span_y", "kind", "title", "info"}

const (
	layoutSheet = "Layout"
	gridSheet   = "Grid"
)

// RecordRow renders a record as one spreadsheet row in Columns order. The
// payload is written as compact JSON.
func RecordRow(r model.LayoutRecord) ([]string, error) {
	info := "{}"
	if len(r.Info) > 0 {
		data, err := json.Marshal(r.Info)
		if err != nil {
			return nil, fmt.Errorf("encode info of %q: %w", r.Title, err)
		}
		info = string(data)
	}
	return []string{
		strconv.Itoa(r.Col()),
		strconv.Itoa(r.Row()),
		strconv.Itoa(r.SpanX),
		strconv.Itoa(r.SpanY),
		r.Kind,
		r.Title,
		info,
	}, nil
}

// ExportXLSX writes the records to the first sheet of a workbook and the grid
// dimensions to a second sheet.
func ExportXLSX(path string, s model.Settings, records []model.LayoutRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", layoutSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(layoutSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(layoutSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range records {
		row, err := RecordRow(r)
		if err != nil {
			return err
		}
		cells := []any{r.Col(), r.Row(), r.SpanX, r.SpanY, row[4], row[5], row[6]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(layoutSheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(layoutSheet, "E", "F", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(layoutSheet, "G", "G", 40); err != nil {
		return err
	}

	if _, err := f.NewSheet(gridSheet); err != nil {
		return fmt.Errorf("failed to add grid sheet: %w", err)
	}
	grid := [][]any{
		{"grid", s.CellSize},
		{"rows", s.Rows},
		{"cols", s.Cols},
	}
	for i, row := range grid {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(gridSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write grid sheet: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	return f.SaveAs(path)
}

// ExportCSV writes the records with a Columns header.
func ExportCSV(path string, records []model.LayoutRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		row, err := RecordRow(r)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
