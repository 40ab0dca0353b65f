package ui

import (
	"github.com/kevinbotlib/dashboard/internal/engine"
	"github.com/kevinbotlib/dashboard/internal/model"
)

// minCells is the default minimum tile extent, in cells, on each axis.
const minCells = 2

// newRegistry returns the widget kinds the dashboard can build. Every tile,
// unknown kinds included, gets a minimum size of two cells at the given cell
// size.
func newRegistry(cellSize int) *engine.Registry {
	min := engine.Size{Width: float64(minCells * cellSize), Height: float64(minCells * cellSize)}
	r := engine.NewRegistry()
	r.Register(model.KindText, engine.ItemFromRecord)
	r.OnBuild(func(item *engine.Item) { item.MinSize = min })
	return r
}

// widgetRecord describes a new text widget bound to key, ready to be built
// by the registry and auto-placed.
func widgetRecord(title, key string) model.LayoutRecord {
	return model.LayoutRecord{
		SpanX: 1,
		SpanY: 1,
		Kind:  model.KindText,
		Title: title,
		Info:  map[string]any{model.InfoKey: key},
	}
}
