package engine

// Grid is the discrete occupancy model: a rows x cols board of square cells
// and the collection of items currently committed to it.
//
// Item positions are stored in cell units, so changing the cell size never
// loses information. The item collection is only mutated through Engine.
type Grid struct {
	rows     int
	cols     int
	cellSize int
	items    []*Item
}

// NewGrid creates an empty grid. Non-positive dimensions are raised to 1.
func NewGrid(rows, cols, cellSize int) *Grid {
	return &Grid{
		rows:     max(rows, 1),
		cols:     max(cols, 1),
		cellSize: max(cellSize, 1),
	}
}

func (g *Grid) Rows() int     { return g.rows }
func (g *Grid) Cols() int     { return g.cols }
func (g *Grid) CellSize() int { return g.cellSize }
func (g *Grid) Len() int      { return len(g.items) }

// PixelSize returns the full canvas extent in pixels.
func (g *Grid) PixelSize() Size {
	return Size{
		Width:  float64(g.cols * g.cellSize),
		Height: float64(g.rows * g.cellSize),
	}
}

// Items returns the committed items in insertion order.
func (g *Grid) Items() []*Item {
	out := make([]*Item, len(g.items))
	copy(out, g.items)
	return out
}

// Contains reports whether item is owned by this grid.
func (g *Grid) Contains(item *Item) bool {
	return g.indexOf(item) >= 0
}

// CellToPixel returns the top-left pixel of a cell.
func (g *Grid) CellToPixel(c Cell) Point {
	return Point{
		X: float64(c.Col * g.cellSize),
		Y: float64(c.Row * g.cellSize),
	}
}

// SpanToPixel returns the pixel extent of a span.
func (g *Grid) SpanToPixel(s Span) Size {
	return Size{
		Width:  float64(s.X * g.cellSize),
		Height: float64(s.Y * g.cellSize),
	}
}

// PixelToNearestCell rounds a pixel position to the nearest cell, clamped so
// that span starting there stays on the board.
func (g *Grid) PixelToNearestCell(p Point, span Span) Cell {
	span = span.normalized()
	return Cell{
		Col: snapCells(p.X, g.cellSize, g.cols-span.X),
		Row: snapCells(p.Y, g.cellSize, g.rows-span.Y),
	}
}

// InBounds reports whether the cell rectangle lies fully on the board.
func (g *Grid) InBounds(c Cell, span Span) bool {
	return c.Col >= 0 && c.Row >= 0 &&
		span.X >= 1 && span.Y >= 1 &&
		c.Col+span.X <= g.cols && c.Row+span.Y <= g.rows
}

// FitsAt reports whether span placed at c stays on the board and overlaps
// no committed item.
func (g *Grid) FitsAt(c Cell, span Span) bool {
	return g.FitsAtExcluding(c, span, nil)
}

// FitsAtExcluding is FitsAt ignoring one item, normally the one being moved.
func (g *Grid) FitsAtExcluding(c Cell, span Span, exclude *Item) bool {
	if !g.InBounds(c, span) {
		return false
	}
	return len(g.ItemsOverlapping(c, span, exclude)) == 0
}

// ItemsOverlapping returns every committed item whose cell rectangle
// intersects the query rectangle, except exclude.
func (g *Grid) ItemsOverlapping(c Cell, span Span, exclude *Item) []*Item {
	var hits []*Item
	for _, it := range g.items {
		if it == exclude {
			continue
		}
		if cellsOverlap(c, span, it.cell, it.span) {
			hits = append(hits, it)
		}
	}
	return hits
}

// CanAccommodate reports whether every committed item would still fit on a
// rows x cols board.
func (g *Grid) CanAccommodate(rows, cols int) bool {
	if rows < 1 || cols < 1 {
		return false
	}
	for _, it := range g.items {
		if it.cell.Col+it.span.X > cols || it.cell.Row+it.span.Y > rows {
			return false
		}
	}
	return true
}

// SetCellSize changes the cell edge and recomputes every item's bounds.
func (g *Grid) SetCellSize(size int) {
	g.cellSize = max(size, 1)
	for _, it := range g.items {
		it.cellSize = g.cellSize
		it.changed()
	}
}

func (g *Grid) indexOf(item *Item) int {
	for i, it := range g.items {
		if it == item {
			return i
		}
	}
	return -1
}

// attach makes g the item's only owner, taking it from any other grid.
func (g *Grid) attach(item *Item) {
	if g.Contains(item) {
		return
	}
	if item.grid != nil && item.grid != g {
		item.grid.detach(item)
	}
	g.items = append(g.items, item)
	item.grid = g
	item.cellSize = g.cellSize
}

func (g *Grid) detach(item *Item) bool {
	i := g.indexOf(item)
	if i < 0 {
		return false
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	item.grid = nil
	return true
}

func (g *Grid) setDimensions(rows, cols int) {
	g.rows = rows
	g.cols = cols
}
