// Package engine implements the dashboard's grid layout and placement engine:
// the occupancy grid, widget items with their drag/resize gestures, first-fit
// placement, atomic grid resizing and layout (de)serialization.
//
// All operations are synchronous and meant to be driven from a single event
// thread; nothing here locks.
package engine

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

var (
	// ErrNoSpace is returned when first-fit placement finds no free region.
	ErrNoSpace = errors.New("no free space on the grid")
	// ErrGridTooSmall is returned when a resize would cut off placed items.
	ErrGridTooSmall = errors.New("cannot resize grid to the specified dimensions")
)

// Engine places, moves and removes items on a Grid.
type Engine struct {
	grid   *Grid
	logger *log.Logger
	active *Item // item with a gesture in progress

	onRemoved func(*Item)
}

// New creates an engine for grid. A nil logger falls back to log.Default().
func New(grid *Grid, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{grid: grid, logger: logger}
}

// Grid returns the grid the engine manages.
func (e *Engine) Grid() *Grid { return e.grid }

// Items returns the placed items in insertion order.
func (e *Engine) Items() []*Item { return e.grid.Items() }

// OnRemoved registers the callback run after an item leaves the grid.
func (e *Engine) OnRemoved(fn func(*Item)) { e.onRemoved = fn }

// Active returns the item whose gesture is in progress, or nil.
func (e *Engine) Active() *Item { return e.active }

// RequiredSpan returns the smallest span that is at least the item's current
// span and covers its minimum pixel size.
func (e *Engine) RequiredSpan(item *Item) Span {
	cs := e.grid.CellSize()
	return Span{
		X: max(item.span.X, cellsFor(item.MinSize.Width, cs)),
		Y: max(item.span.Y, cellsFor(item.MinSize.Height, cs)),
	}.normalized()
}

// AutoPlace grows the item to its required span and commits it to the first
// free region in row-major order. It reports false, leaving the item
// unplaced, when the grid has no room.
func (e *Engine) AutoPlace(item *Item) bool {
	span := e.RequiredSpan(item)
	item.SetSpan(span)

	for row := 0; row <= e.grid.Rows()-span.Y; row++ {
		for col := 0; col <= e.grid.Cols()-span.X; col++ {
			c := Cell{Col: col, Row: row}
			if e.grid.FitsAtExcluding(c, span, item) {
				e.commit(item, c)
				e.logger.Debug("placed widget", "id", item.ID, "title", item.Title, "col", col, "row", row, "span_x", span.X, "span_y", span.Y)
				return true
			}
		}
	}
	e.logger.Debug("no room for widget", "id", item.ID, "title", item.Title, "span_x", span.X, "span_y", span.Y)
	return false
}

// Add is AutoPlace returning ErrNoSpace on failure.
func (e *Engine) Add(item *Item) error {
	if !e.AutoPlace(item) {
		return fmt.Errorf("place %q: %w", item.Title, ErrNoSpace)
	}
	return nil
}

// PlaceAt commits the item at c without any collision check. It is meant for
// restoring a previously validated layout only.
func (e *Engine) PlaceAt(item *Item, c Cell) {
	e.commit(item, c)
}

// ValidateDrop reports whether span dropped at pixel position p, snapped to
// the nearest clamped cell, fits without colliding with anything but item.
func (e *Engine) ValidateDrop(item *Item, p Point, span Span) bool {
	c := e.grid.PixelToNearestCell(p, span)
	return e.grid.FitsAtExcluding(c, span, item)
}

// Highlight returns the snapped rectangle an in-progress gesture would land
// on and whether landing there is valid.
func (e *Engine) Highlight(item *Item) (Rect, bool) {
	pos, span := item.Target()
	c := e.grid.PixelToNearestCell(pos, span)
	r := Rect{Point: e.grid.CellToPixel(c), Size: e.grid.SpanToPixel(span)}
	return r, e.ValidateDrop(item, pos, span)
}

// Press starts a drag or resize gesture on a placed item. Only one gesture
// may run at a time; a press on another item while one is active is
// ignored and reported as GestureIdle.
func (e *Engine) Press(item *Item, local Point) Gesture {
	if !e.grid.Contains(item) {
		return GestureIdle
	}
	if e.active != nil && e.active != item {
		return GestureIdle
	}
	e.active = item
	return item.Begin(local)
}

// Release ends the active gesture on item, committing when the target is a
// valid drop and reverting otherwise. It reports whether the gesture was
// committed.
func (e *Engine) Release(item *Item) bool {
	if item == nil || item != e.active {
		return false
	}
	pos, span := item.Target()
	valid := e.ValidateDrop(item, pos, span)
	item.CommitOrRevert(valid)
	e.active = nil
	if !valid {
		e.logger.Debug("gesture reverted", "title", item.Title)
	}
	return valid
}

// ResizeGrid changes the board to rows x cols. It succeeds only when every
// placed item still fits; items keep their cells and spans. On failure
// nothing changes.
func (e *Engine) ResizeGrid(rows, cols int) bool {
	if !e.grid.CanAccommodate(rows, cols) {
		e.logger.Warn("grid resize rejected", "rows", rows, "cols", cols,
			"current_rows", e.grid.Rows(), "current_cols", e.grid.Cols())
		return false
	}
	e.grid.setDimensions(rows, cols)
	for _, it := range e.grid.items {
		it.changed()
	}
	e.logger.Debug("grid resized", "rows", rows, "cols", cols)
	return true
}

// TryResize is ResizeGrid returning ErrGridTooSmall on failure.
func (e *Engine) TryResize(rows, cols int) error {
	if !e.ResizeGrid(rows, cols) {
		return fmt.Errorf("resize to %dx%d: %w", rows, cols, ErrGridTooSmall)
	}
	return nil
}

// SetCellSize changes the cell edge in pixels.
func (e *Engine) SetCellSize(size int) {
	e.grid.SetCellSize(size)
}

// Remove detaches item from the grid. Removing an absent item is a no-op.
func (e *Engine) Remove(item *Item) {
	if item == nil {
		return
	}
	if e.active == item {
		item.cancelGesture()
		e.active = nil
	}
	if e.grid.detach(item) {
		item.onRemove = nil
		e.logger.Debug("removed widget", "title", item.Title)
		if e.onRemoved != nil {
			e.onRemoved(item)
		}
	}
}

// Clear removes every item.
func (e *Engine) Clear() {
	for _, it := range e.grid.Items() {
		e.Remove(it)
	}
}

func (e *Engine) commit(item *Item, c Cell) {
	e.grid.attach(item)
	item.onRemove = e.Remove
	item.setCell(c)
}
