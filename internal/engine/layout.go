package engine

import "github.com/kevinbotlib/dashboard/internal/model"

// Factory builds an item from a persisted record. It interprets the
// record's kind; a nil result is replaced by a placeholder.
type Factory func(rec model.LayoutRecord) *Item

// ItemFromRecord builds a plain item carrying the record's kind, title,
// span and a copy of its payload.
func ItemFromRecord(rec model.LayoutRecord) *Item {
	return NewItem(rec.Title, rec.Kind, Span{X: rec.SpanX, Y: rec.SpanY}, model.CopyInfo(rec.Info))
}

// ToRecords serializes items in their given order using committed state.
func ToRecords(items []*Item) []model.LayoutRecord {
	records := make([]model.LayoutRecord, 0, len(items))
	for _, it := range items {
		records = append(records, it.Record())
	}
	return records
}

// Records serializes every placed item.
func (e *Engine) Records() []model.LayoutRecord {
	return ToRecords(e.grid.Items())
}

// FromRecords rebuilds items with factory and places each one at its stored
// cell. Records are trusted: no collision check is made.
func (e *Engine) FromRecords(records []model.LayoutRecord, factory Factory) []*Item {
	items := make([]*Item, 0, len(records))
	for _, rec := range records {
		var item *Item
		if factory != nil {
			item = factory(rec)
		}
		if item == nil {
			item = placeholder(rec)
		}
		e.PlaceAt(item, Cell{Col: rec.Col(), Row: rec.Row()})
		items = append(items, item)
	}
	e.logger.Debug("layout loaded", "items", len(items))
	return items
}

// Arrange places records that may not agree with the grid, such as
// imported ones. A record keeps its stored cell when that region is free and
// in bounds, otherwise it is auto-placed. Records that fit nowhere are
// returned in skipped, in input order.
func (e *Engine) Arrange(records []model.LayoutRecord, factory Factory) (placed []*Item, skipped []model.LayoutRecord) {
	for _, rec := range records {
		var item *Item
		if factory != nil {
			item = factory(rec)
		}
		if item == nil {
			item = placeholder(rec)
		}
		cell := Cell{Col: rec.Col(), Row: rec.Row()}
		if e.grid.FitsAt(cell, item.Span()) {
			e.PlaceAt(item, cell)
		} else if !e.AutoPlace(item) {
			skipped = append(skipped, rec)
			continue
		}
		placed = append(placed, item)
	}
	return placed, skipped
}

func placeholder(rec model.LayoutRecord) *Item {
	item := ItemFromRecord(rec)
	item.Placeholder = true
	return item
}
