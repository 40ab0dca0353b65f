package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 48, s.CellSize)
	assert.Equal(t, 10, s.Rows)
	assert.Equal(t, 10, s.Cols)
	assert.Equal(t, "10.0.0.2", s.IP)
	assert.Equal(t, 8765, s.Port)
	assert.NotNil(t, s.Layout, "default layout should be empty, not nil")
	assert.NotNil(t, s.RecentLayouts)
}

func TestNormalizeClampsGrid(t *testing.T) {
	s := Settings{CellSize: 2, Rows: 900, Cols: -4, Port: 80}
	s.Normalize()

	assert.Equal(t, MinCellSize, s.CellSize)
	assert.Equal(t, MaxGridDim, s.Rows)
	assert.Equal(t, MinGridDim, s.Cols)
	assert.Equal(t, MinPort, s.Port)
	assert.Equal(t, "10.0.0.2", s.IP)
	assert.Equal(t, 100, s.PollIntervalMS)
	assert.NotNil(t, s.Layout)
}

func TestNormalizeZeroUsesDefaults(t *testing.T) {
	var s Settings
	s.Normalize()

	d := DefaultSettings()
	assert.Equal(t, d.CellSize, s.CellSize)
	assert.Equal(t, d.Rows, s.Rows)
	assert.Equal(t, d.Cols, s.Cols)
	assert.Equal(t, d.Port, s.Port)
}

func TestAddress(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "10.0.0.2:8765", s.Address())
}

func TestValidIPv4(t *testing.T) {
	assert.True(t, ValidIPv4("10.0.0.2"))
	assert.True(t, ValidIPv4("255.255.255.255"))
	assert.False(t, ValidIPv4("256.0.0.1"))
	assert.False(t, ValidIPv4("10.0.0"))
	assert.False(t, ValidIPv4("::1"))
	assert.False(t, ValidIPv4(""))
}

func TestAddRecentLayout(t *testing.T) {
	s := DefaultSettings()
	s.AddRecentLayout("a", 3)
	s.AddRecentLayout("b", 3)
	s.AddRecentLayout("c", 3)
	s.AddRecentLayout("a", 3)
	assert.Equal(t, []string{"a", "c", "b"}, s.RecentLayouts)

	s.AddRecentLayout("d", 3)
	assert.Equal(t, []string{"d", "a", "c"}, s.RecentLayouts)
}

func TestBoundKey(t *testing.T) {
	r := LayoutRecord{Info: map[string]any{"key": "drive/left"}}
	assert.Equal(t, "drive/left", r.BoundKey())

	assert.Empty(t, LayoutRecord{}.BoundKey())
	assert.Empty(t, LayoutRecord{Info: map[string]any{"key": 4}}.BoundKey())
}

func TestCopyRecordsIsDeep(t *testing.T) {
	orig := []LayoutRecord{{
		Pos:  [2]int{1, 2},
		Kind: KindBase,
		Info: map[string]any{"nested": map[string]any{"a": 1.0}, "list": []any{"x"}},
	}}
	cp := CopyRecords(orig)

	cp[0].Info["nested"].(map[string]any)["a"] = 2.0
	cp[0].Info["list"].([]any)[0] = "y"
	cp[0].Pos[0] = 9

	assert.Equal(t, 1.0, orig[0].Info["nested"].(map[string]any)["a"])
	assert.Equal(t, "x", orig[0].Info["list"].([]any)[0])
	assert.Equal(t, 1, orig[0].Col())
	assert.Nil(t, CopyRecords(nil))
}

func TestDecodeLayout(t *testing.T) {
	records, err := DecodeLayout([]byte(`[{"pos":[3,4],"span_x":2,"span_y":1,"kind":"base","title":"Speed","info":{"key":"drive/speed"}}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Col())
	assert.Equal(t, 4, records[0].Row())
	assert.Equal(t, 2, records[0].SpanX)
	assert.Equal(t, "drive/speed", records[0].BoundKey())

	empty, err := DecodeLayout([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = DecodeLayout([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}
