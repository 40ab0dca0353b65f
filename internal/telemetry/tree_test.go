package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTreeHierarchy(t *testing.T) {
	tree := BuildTree(map[string][]Field{
		"robot/drive/left":  {{Element: "value", Display: "1"}},
		"robot/drive/right": {{Element: "value", Display: "2"}},
		"robot/battery":     {{Element: "value", Display: "12.1"}},
		"match":             {{Element: "time", Display: "90"}},
	})

	assert.Equal(t, []string{"match", "robot"}, tree.ChildUIDs(""))
	assert.Equal(t, []string{"robot/battery", "robot/drive"}, tree.ChildUIDs("robot"))
	assert.Equal(t, []string{"robot/drive/left", "robot/drive/right"}, tree.ChildUIDs("robot/drive"))

	assert.True(t, tree.IsBranch("robot"))
	assert.False(t, tree.IsBranch("robot/battery"))

	n, ok := tree.Node("robot/drive/left")
	require.True(t, ok)
	assert.True(t, n.Leaf())
	assert.Equal(t, "left [robot/drive/left]", n.Label())
	assert.Equal(t, "1", n.Fields[0].Display)

	drive, _ := tree.Node("robot/drive")
	assert.Equal(t, "drive", drive.Label())

	assert.Equal(t, []string{"match", "robot/battery", "robot/drive/left", "robot/drive/right"}, tree.Keys())
	assert.Equal(t, 4, tree.Len())
}

func TestBuildTreeLeafHidesDescendants(t *testing.T) {
	tree := BuildTree(map[string][]Field{
		"arm":       {{Element: "value", Display: "up"}},
		"arm/angle": {{Element: "value", Display: "30°"}},
	})

	arm, ok := tree.Node("arm")
	require.True(t, ok)
	assert.Equal(t, "arm", arm.Key)
	assert.Empty(t, tree.ChildUIDs("arm"))
	assert.False(t, tree.IsBranch("arm"))
	assert.Equal(t, []string{"arm"}, tree.Keys())
}

func TestBuildTreeEmpty(t *testing.T) {
	tree := BuildTree(nil)
	assert.Empty(t, tree.ChildUIDs(""))
	assert.Equal(t, 0, tree.Len())
	_, ok := tree.Node("missing")
	assert.False(t, ok)
}

func TestTreeUIDsAreStableAcrossRebuilds(t *testing.T) {
	first := BuildTree(map[string][]Field{"a/b": nil, "a/c": nil})
	second := BuildTree(map[string][]Field{"a/c": nil, "a/b": nil, "z": nil})
	assert.Equal(t, first.ChildUIDs("a"), second.ChildUIDs("a"))
}
