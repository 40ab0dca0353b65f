package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/kevinbotlib/dashboard/internal/engine"
)

var (
	boardColor     = color.NRGBA{R: 26, G: 26, B: 26, A: 255} // #1A1A1A
	gridLineColor  = color.NRGBA{R: 64, G: 64, B: 64, A: 255}
	validColor     = color.NRGBA{R: 0, G: 255, B: 0, A: 100}
	invalidColor   = color.NRGBA{R: 255, G: 0, B: 0, A: 100}
	highlightWidth = float32(2)
)

// HighlightColor is the fill of the drop highlight.
func HighlightColor(valid bool) color.NRGBA {
	if valid {
		return validColor
	}
	return invalidColor
}

// GridCanvas draws the board with its grid lines, one Tile per placed item
// and the drop highlight of the gesture in progress.
type GridCanvas struct {
	widget.BaseWidget
	engine *engine.Engine

	tiles []*Tile
	byID  map[string]*Tile

	highlight      engine.Rect
	showHighlight  bool
	highlightValid bool

	// OnGestureEnd runs after a drag or resize is released.
	OnGestureEnd func(item *engine.Item, committed bool)
}

// NewGridCanvas creates a canvas for e and adds a tile for every item
// already placed.
func NewGridCanvas(e *engine.Engine) *GridCanvas {
	g := &GridCanvas{engine: e, byID: map[string]*Tile{}}
	g.ExtendBaseWidget(g)
	g.Sync()
	return g
}

// Engine returns the engine the canvas renders.
func (g *GridCanvas) Engine() *engine.Engine { return g.engine }

// Sync makes the tiles match the engine's placed items, keeping the tiles of
// items that are still present.
func (g *GridCanvas) Sync() {
	placed := g.engine.Items()
	tiles := make([]*Tile, 0, len(placed))
	byID := make(map[string]*Tile, len(placed))
	for _, it := range placed {
		t := g.Tile(it)
		if t == nil {
			t = newTile(g, it)
		}
		tiles = append(tiles, t)
		byID[it.ID] = t
	}
	g.tiles, g.byID = tiles, byID
	for _, t := range g.tiles {
		t.place()
	}
	g.Refresh()
}

// AddTile creates the tile for a newly placed item.
func (g *GridCanvas) AddTile(item *engine.Item) *Tile {
	if t := g.Tile(item); t != nil {
		return t
	}
	t := newTile(g, item)
	g.tiles = append(g.tiles, t)
	g.byID[item.ID] = t
	t.place()
	g.Refresh()
	return t
}

// RemoveTile drops the tile of item.
func (g *GridCanvas) RemoveTile(item *engine.Item) {
	t := g.Tile(item)
	if t == nil {
		return
	}
	delete(g.byID, item.ID)
	for i := range g.tiles {
		if g.tiles[i] == t {
			g.tiles = append(g.tiles[:i], g.tiles[i+1:]...)
			break
		}
	}
	g.Refresh()
}

// Tile returns the tile of item, or nil.
func (g *GridCanvas) Tile(item *engine.Item) *Tile {
	if item == nil {
		return nil
	}
	if t := g.byID[item.ID]; t != nil && t.item == item {
		return t
	}
	return nil
}

// TileByID returns the tile of the item with the given ID, or nil.
func (g *GridCanvas) TileByID(id string) *Tile { return g.byID[id] }

// Tiles returns the tiles in placement order.
func (g *GridCanvas) Tiles() []*Tile { return g.tiles }

// SetValue updates the value line of item's tile.
func (g *GridCanvas) SetValue(item *engine.Item, value string) {
	if t := g.Tile(item); t != nil {
		t.SetValue(value)
	}
}

// Highlight returns the current drop highlight and whether it is shown.
func (g *GridCanvas) Highlight() (engine.Rect, bool, bool) {
	return g.highlight, g.highlightValid, g.showHighlight
}

func (g *GridCanvas) updateHighlight(item *engine.Item) {
	g.highlight, g.highlightValid = g.engine.Highlight(item)
	g.showHighlight = true
	g.Refresh()
}

func (g *GridCanvas) clearHighlight() {
	g.showHighlight = false
	g.Refresh()
}

func (g *GridCanvas) gestureEnded(item *engine.Item, committed bool) {
	g.clearHighlight()
	if g.OnGestureEnd != nil {
		g.OnGestureEnd(item, committed)
	}
}

func (g *GridCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &gridCanvasRenderer{g: g}
	r.rebuild()
	return r
}

type gridCanvasRenderer struct {
	g       *GridCanvas
	objects []fyne.CanvasObject
}

func (r *gridCanvasRenderer) rebuild() {
	r.objects = nil
	grid := r.g.engine.Grid()
	size := grid.PixelSize()
	w, h := float32(size.Width), float32(size.Height)
	cs := float32(grid.CellSize())

	bg := canvas.NewRectangle(boardColor)
	bg.Resize(fyne.NewSize(w, h))
	r.objects = append(r.objects, bg)

	for c := 0; c <= grid.Cols(); c++ {
		x := float32(c) * cs
		line := canvas.NewLine(gridLineColor)
		line.StrokeWidth = 1
		line.Position1 = fyne.NewPos(x, 0)
		line.Position2 = fyne.NewPos(x, h)
		r.objects = append(r.objects, line)
	}
	for row := 0; row <= grid.Rows(); row++ {
		y := float32(row) * cs
		line := canvas.NewLine(gridLineColor)
		line.StrokeWidth = 1
		line.Position1 = fyne.NewPos(0, y)
		line.Position2 = fyne.NewPos(w, y)
		r.objects = append(r.objects, line)
	}

	// The tile being dragged is drawn last so it stays on top.
	active := r.g.engine.Active()
	var top *Tile
	for _, t := range r.g.tiles {
		if t.item == active {
			top = t
			continue
		}
		r.objects = append(r.objects, t)
	}
	if top != nil {
		r.objects = append(r.objects, top)
	}

	if r.g.showHighlight {
		hl := r.g.highlight
		rect := canvas.NewRectangle(HighlightColor(r.g.highlightValid))
		rect.StrokeColor = color.NRGBA{R: 255, G: 255, B: 255, A: 120}
		rect.StrokeWidth = highlightWidth
		rect.Move(fyne.NewPos(float32(hl.X), float32(hl.Y)))
		rect.Resize(fyne.NewSize(float32(hl.Width), float32(hl.Height)))
		r.objects = append(r.objects, rect)
	}
}

func (r *gridCanvasRenderer) Layout(size fyne.Size) {}
func (r *gridCanvasRenderer) Refresh() {
	r.rebuild()
	for _, t := range r.g.tiles {
		t.Refresh()
	}
}
func (r *gridCanvasRenderer) Destroy()                     {}
func (r *gridCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *gridCanvasRenderer) MinSize() fyne.Size {
	s := r.g.engine.Grid().PixelSize()
	return fyne.NewSize(float32(s.Width), float32(s.Height))
}
