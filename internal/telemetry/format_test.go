package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		format string
		want   string
	}{
		{"percent", 0.1234, "percent", "12.34%"},
		{"percent rounds", 0.99999, "percent", "100.00%"},
		{"percent of int", 1, "percent", "100.00%"},
		{"percent of text", "n/a", "percent", "n/a"},
		{"degrees", 90.5, "degrees", "90.5°"},
		{"radians", 1.5708, "radians", "1.5708 rad"},
		{"limit", "hello world", "limit:5", "hello"},
		{"limit longer than value", "hi", "limit:10", "hi"},
		{"limit zero", "hi", "limit:0", ""},
		{"limit multibyte", "héllo", "limit:2", "hé"},
		{"bad limit", "hello", "limit:x", "hello"},
		{"raw string", "ready", "", "ready"},
		{"raw number", 3.0, "unknown", "3"},
		{"raw bool", true, "", "true"},
		{"raw list", []any{1.0, 2.0}, "", "[1,2]"},
		{"nil", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.raw, tt.format))
		})
	}
}

func TestDisplay(t *testing.T) {
	value := structured(
		map[string]any{"value": 0.5, "angle": 45.0, "name": "front-left"},
		map[string]any{"element": "value", "format": "percent"},
		map[string]any{"element": "angle", "format": "degrees"},
		map[string]any{"element": "name", "format": "limit:5"},
		map[string]any{"element": "missing"},
		map[string]any{"format": "percent"},
	)

	fields, ok := Display(value)
	assert.True(t, ok)
	assert.Equal(t, []Field{
		{Element: "value", Display: "50.00%"},
		{Element: "angle", Display: "45°"},
		{Element: "name", Display: "front"},
		{Element: "missing", Display: ""},
	}, fields)
}

func TestDisplayRequiresStructure(t *testing.T) {
	_, ok := Display(map[string]any{"value": 1.0})
	assert.False(t, ok)

	_, ok = Display(map[string]any{"struct": map[string]any{"other": []any{}}})
	assert.False(t, ok)

	fields, ok := Display(map[string]any{"struct": map[string]any{"dashboard": []any{}}})
	assert.True(t, ok)
	assert.Empty(t, fields)
}

func TestJoinFields(t *testing.T) {
	assert.Equal(t, "12.5", JoinFields([]Field{{Element: "value", Display: "12.5"}}))
	assert.Equal(t, "a: 1\nb: 2", JoinFields([]Field{{Element: "a", Display: "1"}, {Element: "b", Display: "2"}}))
	assert.Equal(t, "", JoinFields(nil))
}
