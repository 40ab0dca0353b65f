package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field is one displayable element of a structured value.
type Field struct {
	Element string
	Display string
}

// Display turns a structured value into its display fields, in the order the
// value's dashboard structure lists them. It reports false when the value
// carries no struct.dashboard description.
func Display(value map[string]any) ([]Field, bool) {
	structure, ok := value["struct"].(map[string]any)
	if !ok {
		return nil, false
	}
	viewables, ok := structure["dashboard"].([]any)
	if !ok {
		return nil, false
	}

	fields := make([]Field, 0, len(viewables))
	for _, v := range viewables {
		viewable, ok := v.(map[string]any)
		if !ok {
			continue
		}
		element, ok := viewable["element"].(string)
		if !ok {
			continue
		}
		format, _ := viewable["format"].(string)
		display := ""
		if raw, ok := value[element]; ok {
			display = FormatValue(raw, format)
		}
		fields = append(fields, Field{Element: element, Display: display})
	}
	return fields, true
}

// FormatValue renders raw with one of the dashboard formats:
//
//	percent  x*100 with two decimals and a percent sign
//	degrees  x followed by a degree sign
//	radians  x followed by " rad"
//	limit:N  the first N characters
//
// Any other format renders the value unchanged.
func FormatValue(raw any, format string) string {
	switch {
	case format == "percent":
		if f, ok := number(raw); ok {
			return strconv.FormatFloat(f*100, 'f', 2, 64) + "%"
		}
	case format == "degrees":
		return plain(raw) + "°"
	case format == "radians":
		return plain(raw) + " rad"
	case strings.HasPrefix(format, "limit:"):
		n, err := strconv.Atoi(strings.TrimPrefix(format, "limit:"))
		if err != nil || n < 0 {
			break
		}
		s := []rune(plain(raw))
		if n < len(s) {
			s = s[:n]
		}
		return string(s)
	}
	return plain(raw)
}

// JoinFields renders fields for a single text label. A lone field shows only
// its value.
func JoinFields(fields []Field) string {
	if len(fields) == 1 {
		return fields[0].Display
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, f.Element+": "+f.Display)
	}
	return strings.Join(lines, "\n")
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func plain(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if f, ok := number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
