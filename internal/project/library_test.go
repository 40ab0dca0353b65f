package project

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbotlib/dashboard/internal/model"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := OpenLibrary(filepath.Join(t.TempDir(), "db", "layouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestLibrarySaveAndLoad(t *testing.T) {
	lib := openTestLibrary(t)
	records := []model.LayoutRecord{
		{Pos: [2]int{0, 0}, SpanX: 3, SpanY: 2, Kind: "text", Title: "Battery", Info: map[string]any{"key": "robot/battery"}},
		{Pos: [2]int{4, 0}, SpanX: 2, SpanY: 2, Kind: "base", Title: "Blank", Info: map[string]any{}},
	}

	require.NoError(t, lib.Save("match", 10, 12, records))

	stored, err := lib.Load("match")
	require.NoError(t, err)
	assert.Equal(t, "match", stored.Name)
	assert.Equal(t, 10, stored.Rows)
	assert.Equal(t, 12, stored.Cols)
	assert.Equal(t, 2, stored.Widgets)
	assert.Equal(t, records, stored.Records)
	assert.False(t, stored.UpdatedAt.IsZero())
}

func TestLibrarySaveReplaces(t *testing.T) {
	lib := openTestLibrary(t)
	require.NoError(t, lib.Save("pit", 5, 5, []model.LayoutRecord{{SpanX: 1, SpanY: 1, Kind: "base"}}))
	require.NoError(t, lib.Save("pit", 8, 6, nil))

	stored, err := lib.Load("pit")
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Rows)
	assert.Equal(t, 0, stored.Widgets)
	assert.Empty(t, stored.Records)

	entries, err := lib.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLibraryListAndAll(t *testing.T) {
	lib := openTestLibrary(t)
	require.NoError(t, lib.Save("a", 10, 10, []model.LayoutRecord{{SpanX: 1, SpanY: 1, Kind: "base", Title: "one"}}))
	require.NoError(t, lib.Save("b", 10, 10, nil))

	entries, err := lib.List()
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, names)

	all, err := lib.All()
	require.NoError(t, err)
	require.Contains(t, all, "a")
	assert.Equal(t, "one", all["a"][0].Title)
	assert.Empty(t, all["b"])
}

func TestLibraryMissingLayout(t *testing.T) {
	lib := openTestLibrary(t)

	_, err := lib.Load("ghost")
	assert.True(t, errors.Is(err, ErrLayoutNotFound))

	err = lib.Delete("ghost")
	assert.True(t, errors.Is(err, ErrLayoutNotFound))
}

func TestLibraryDelete(t *testing.T) {
	lib := openTestLibrary(t)
	require.NoError(t, lib.Save("tmp", 10, 10, nil))
	require.NoError(t, lib.Delete("tmp"))

	_, err := lib.Load("tmp")
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestLibraryRejectsEmptyName(t *testing.T) {
	lib := openTestLibrary(t)
	assert.Error(t, lib.Save("", 10, 10, nil))
}
