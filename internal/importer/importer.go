// Package importer provides CSV, Excel and JSON import of dashboard layouts.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// ErrNoRecords is returned by ImportResult.Err when nothing could be imported.
var ErrNoRecords = errors.New("no layout records imported")

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Records  []model.LayoutRecord
	Errors   []string
	Warnings []string
}

// Err summarizes a result that produced no records.
func (r ImportResult) Err() error {
	if len(r.Records) > 0 {
		return nil
	}
	if len(r.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrNoRecords, r.Errors[0])
	}
	return ErrNoRecords
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Col   int
	Row   int
	SpanX int
	SpanY int
	Kind  int
	Title int
	Info  int
	Key   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"col":    {"col", "column", "x", "pos_x", "left"},
	"row":    {"row", "y", "pos_y", "top"},
	"span_x": {"span_x", "spanx", "span x", "colspan", "width", "w"},
	"span_y": {"span_y", "spany", "span y", "rowspan", "height", "h"},
	"kind":   {"kind", "type", "widget", "widget type"},
	"title":  {"title", "name", "label", "caption"},
	"info":   {"info", "payload", "data", "json"},
	"key":    {"key", "telemetry key", "bound key", "source"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// positionalMapping is the column order written by the exporters.
var positionalMapping = ColumnMapping{Col: 0, Row: 1, SpanX: 2, SpanY: 3, Kind: 4, Title: 5, Info: 6, Key: -1}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// export mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Col: -1, Row: -1, SpanX: -1, SpanY: -1, Kind: -1, Title: -1, Info: -1, Key: -1}
	slots := map[string]*int{
		"col":    &mapping.Col,
		"row":    &mapping.Row,
		"span_x": &mapping.SpanX,
		"span_y": &mapping.SpanY,
		"kind":   &mapping.Kind,
		"title":  &mapping.Title,
		"info":   &mapping.Info,
		"key":    &mapping.Key,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseInt reads a whole number, accepting spreadsheet renderings like "3.0".
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(f), nil
}

// parseRow extracts a LayoutRecord from a row using the given column mapping.
// Returns the record, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, recordCount int) (model.LayoutRecord, string, string) {
	var warning string

	colStr := getCell(row, mapping.Col)
	if colStr == "" {
		return model.LayoutRecord{}, fmt.Sprintf("%s: Missing column value", rowLabel), ""
	}
	col, err := parseInt(colStr)
	if err != nil {
		return model.LayoutRecord{}, fmt.Sprintf("%s: Invalid column '%s'", rowLabel, colStr), ""
	}

	rowStr := getCell(row, mapping.Row)
	if rowStr == "" {
		return model.LayoutRecord{}, fmt.Sprintf("%s: Missing row value", rowLabel), ""
	}
	r, err := parseInt(rowStr)
	if err != nil {
		return model.LayoutRecord{}, fmt.Sprintf("%s: Invalid row '%s'", rowLabel, rowStr), ""
	}

	if col < 0 || r < 0 {
		return model.LayoutRecord{}, fmt.Sprintf("%s: Column and row must not be negative", rowLabel), ""
	}

	spanX, spanY := 1, 1
	if s := getCell(row, mapping.SpanX); s != "" {
		if spanX, err = parseInt(s); err != nil {
			return model.LayoutRecord{}, fmt.Sprintf("%s: Invalid span_x '%s'", rowLabel, s), ""
		}
	}
	if s := getCell(row, mapping.SpanY); s != "" {
		if spanY, err = parseInt(s); err != nil {
			return model.LayoutRecord{}, fmt.Sprintf("%s: Invalid span_y '%s'", rowLabel, s), ""
		}
	}
	if spanX < 1 || spanY < 1 {
		return model.LayoutRecord{}, fmt.Sprintf("%s: Spans must be at least 1", rowLabel), ""
	}

	kind := getCell(row, mapping.Kind)
	if kind == "" {
		kind = model.KindBase
	}

	title := getCell(row, mapping.Title)
	if title == "" {
		title = fmt.Sprintf("Widget %d", recordCount+1)
	}

	info := map[string]any{}
	if s := getCell(row, mapping.Info); s != "" {
		if err := json.Unmarshal([]byte(s), &info); err != nil {
			return model.LayoutRecord{}, fmt.Sprintf("%s: Invalid info JSON '%s'", rowLabel, s), ""
		}
		if info == nil {
			info = map[string]any{}
		}
	}
	if key := getCell(row, mapping.Key); key != "" {
		if existing, ok := info[model.InfoKey].(string); ok && existing != key {
			warning = fmt.Sprintf("%s: Key column '%s' overrides info key '%s'", rowLabel, key, existing)
		}
		info[model.InfoKey] = key
	}

	return model.LayoutRecord{
		Pos:   [2]int{col, r},
		SpanX: spanX,
		SpanY: spanY,
		Kind:  kind,
		Title: title,
		Info:  info,
	}, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile imports a layout file, choosing the reader by extension.
// Anything that is not .xlsx or .json is read as CSV.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ImportExcel(path)
	case ".json":
		return ImportJSON(path)
	default:
		return ImportCSV(path)
	}
}

// readCSV reads every row, tolerating stray quotes and ragged rows.
func readCSV(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// failed is a result holding a single error.
func failed(format string, args ...any) ImportResult {
	return ImportResult{Errors: []string{fmt.Sprintf(format, args...)}}
}

// ImportCSV imports layout records from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed("Cannot open file: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return failed("File is empty")
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	rows, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		return failed("Cannot read CSV: %v", err)
	}
	if len(rows) == 0 {
		return failed("File is empty")
	}
	return importFromRows(rows, "Line", warnings)
}

// ImportCSVFromReader imports layout records from a CSV reader with a
// known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	rows, err := readCSV(reader, delimiter)
	if err != nil {
		return failed("Cannot read CSV: %v", err)
	}
	if len(rows) == 0 {
		return failed("File is empty")
	}
	return importFromRows(rows, "Line", nil)
}

// ImportExcel imports layout records from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return failed("Cannot open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return failed("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return failed("Cannot read Excel data: %v", err)
	}

	if len(rows) == 0 {
		return failed("Sheet is empty")
	}

	return importFromRows(rows, "Row", nil)
}

// ImportJSON imports a layout from a JSON file holding either a bare record
// list or an object with a "layout" member (a settings file, a backup's
// settings, or a scanned layout QR code).
func ImportJSON(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed("Cannot open file: %v", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return failed("File is empty")
	}

	if data[0] == '{' {
		var doc struct {
			Layout   json.RawMessage `json:"layout"`
			Settings *struct {
				Layout json.RawMessage `json:"layout"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return failed("Cannot read JSON: %v", err)
		}
		switch {
		case len(doc.Layout) > 0:
			data = doc.Layout
		case doc.Settings != nil && len(doc.Settings.Layout) > 0:
			data = doc.Settings.Layout
		default:
			return failed("JSON object has no layout member")
		}
	}

	records, err := model.DecodeLayout(data)
	if err != nil {
		return failed("Cannot read layout: %v", err)
	}
	var result ImportResult
	for i, r := range records {
		label := fmt.Sprintf("Record %d", i+1)
		if r.Col() < 0 || r.Row() < 0 || r.SpanX < 1 || r.SpanY < 1 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid position or span", label))
			continue
		}
		if r.Kind == "" {
			r.Kind = model.KindBase
		}
		if r.Info == nil {
			r.Info = map[string]any{}
		}
		result.Records = append(result.Records, r)
	}
	return result
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into records.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Col == -1 {
			missing = append(missing, "Col")
		}
		if mapping.Row == -1 {
			missing = append(missing, "Row")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := parseInt(getCell(rows[0], 0)); err != nil {
		// An unrecognized header: skip it but keep the positional mapping.
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		rec, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Records))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Records = append(result.Records, rec)
	}

	return result
}
