package model

import "encoding/json"

// Built-in widget kinds.
const (
	KindBase = "base" // Title bar only
	KindText = "text" // Title plus the formatted value of a bound telemetry key
)

// InfoKey is the payload member that binds a widget to a telemetry key.
const InfoKey = "key"

// LayoutRecord is the persisted form of one placed widget.
type LayoutRecord struct {
	Pos   [2]int         `json:"pos"` // [col, row] of the top-left cell
	SpanX int            `json:"span_x"`
	SpanY int            `json:"span_y"`
	Kind  string         `json:"kind"`
	Title string         `json:"title"`
	Info  map[string]any `json:"info"`
}

// Col returns the record's column.
func (r LayoutRecord) Col() int { return r.Pos[0] }

// Row returns the record's row.
func (r LayoutRecord) Row() int { return r.Pos[1] }

// BoundKey returns the telemetry key the widget is bound to, if any.
func (r LayoutRecord) BoundKey() string {
	if r.Info == nil {
		return ""
	}
	if k, ok := r.Info[InfoKey].(string); ok {
		return k
	}
	return ""
}

// CopyInfo returns a deep copy of an opaque payload mapping.
// Nested maps and slices are copied; scalar values are shared.
func CopyInfo(info map[string]any) map[string]any {
	if info == nil {
		return nil
	}
	cp := make(map[string]any, len(info))
	for k, v := range info {
		cp[k] = copyValue(v)
	}
	return cp
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyInfo(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

// CopyRecords returns a deep copy of a layout.
func CopyRecords(records []LayoutRecord) []LayoutRecord {
	if records == nil {
		return nil
	}
	cp := make([]LayoutRecord, len(records))
	for i, r := range records {
		cp[i] = r
		cp[i].Info = CopyInfo(r.Info)
	}
	return cp
}

// DecodeLayout parses a JSON layout list. A null or empty document yields
// an empty layout.
func DecodeLayout(data []byte) ([]LayoutRecord, error) {
	if len(data) == 0 || string(data) == "null" {
		return []LayoutRecord{}, nil
	}
	var records []LayoutRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []LayoutRecord{}
	}
	return records, nil
}
