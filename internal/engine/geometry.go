package engine

import "math"

// Cell is an integer grid coordinate of a top-left cell.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Span is a footprint in whole cells.
type Span struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a pixel coordinate on the grid canvas.
type Point struct {
	X float64
	Y float64
}

// Size is a pixel extent.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a pixel rectangle.
type Rect struct {
	Point
	Size
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// normalized returns s with both axes at least one cell.
func (s Span) normalized() Span {
	if s.X < 1 {
		s.X = 1
	}
	if s.Y < 1 {
		s.Y = 1
	}
	return s
}

// cellsOverlap reports whether two cell rectangles share at least one cell.
func cellsOverlap(ac Cell, as Span, bc Cell, bs Span) bool {
	return ac.Col < bc.Col+bs.X && ac.Col+as.X > bc.Col &&
		ac.Row < bc.Row+bs.Y && ac.Row+as.Y > bc.Row
}

// cellsFor returns the fewest whole cells covering px pixels.
func cellsFor(px float64, cellSize int) int {
	if cellSize <= 0 || px <= 0 {
		return 0
	}
	return int(math.Ceil(px / float64(cellSize)))
}

// roundCells converts a pixel distance to the nearest whole number of cells.
// Ties round half-up. NaN and negative distances give 0 and huge ones
// saturate, so the float never reaches an out-of-range int conversion.
func roundCells(px float64, cellSize int) int {
	return snapCells(px, cellSize, math.MaxInt32/max(cellSize, 1))
}

// snapCells rounds px to the nearest cell after clamping it to
// [0, limit*cellSize]. A non-positive limit always gives 0.
func snapCells(px float64, cellSize, limit int) int {
	if cellSize <= 0 || limit <= 0 || math.IsNaN(px) {
		return 0
	}
	px = math.Min(math.Max(px, 0), float64(limit)*float64(cellSize))
	return int(math.Floor(px/float64(cellSize) + 0.5))
}

// spanForSize snaps a pixel size to the nearest cell multiple that is not
// smaller than min.
func spanForSize(size, min Size, cellSize int) Span {
	w := math.Max(size.Width, min.Width)
	h := math.Max(size.Height, min.Height)
	s := Span{X: roundCells(w, cellSize), Y: roundCells(h, cellSize)}
	if floor := cellsFor(min.Width, cellSize); s.X < floor {
		s.X = floor
	}
	if floor := cellsFor(min.Height, cellSize); s.Y < floor {
		s.Y = floor
	}
	return s.normalized()
}
