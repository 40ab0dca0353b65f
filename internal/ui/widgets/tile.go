package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/kevinbotlib/dashboard/internal/engine"
)

const (
	titleBarHeight = float32(20)
	tileInset      = float32(4)
)

var (
	tileColor        = color.NRGBA{R: 46, G: 46, B: 46, A: 255} // #2E2E2E
	titleBarColor    = color.NRGBA{R: 0, G: 92, B: 159, A: 255} // #005C9F
	placeholderColor = color.NRGBA{R: 96, G: 64, B: 32, A: 255}
	tileTextColor    = color.NRGBA{R: 224, G: 224, B: 224, A: 255} // #E0E0E0
	gripColor        = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// Tile renders one engine item: a title bar, an optional value line and the
// resize grip. Drags are forwarded to the engine as move or resize gestures.
type Tile struct {
	widget.BaseWidget
	board *GridCanvas
	item  *engine.Item
	value string

	pressed bool
	origin  engine.Point
	total   fyne.Delta
}

func newTile(board *GridCanvas, item *engine.Item) *Tile {
	t := &Tile{board: board, item: item}
	t.ExtendBaseWidget(t)
	item.OnChange(func(*engine.Item) {
		t.place()
		t.Refresh()
	})
	return t
}

// Item returns the item the tile renders.
func (t *Tile) Item() *engine.Item { return t.item }

// Value returns the text of the value line.
func (t *Tile) Value() string { return t.value }

// SetValue replaces the value line.
func (t *Tile) SetValue(v string) {
	if v == t.value {
		return
	}
	t.value = v
	t.Refresh()
}

// place moves and sizes the tile to the item's current pixel bounds.
func (t *Tile) place() {
	b := t.item.Bounds()
	t.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
	t.Resize(fyne.NewSize(float32(b.Width), float32(b.Height)))
}

// Dragged starts a gesture on the first event and then feeds the total
// pointer travel to it.
func (t *Tile) Dragged(ev *fyne.DragEvent) {
	if !t.pressed {
		press := ev.Position.Subtract(ev.Dragged)
		g := t.board.engine.Press(t.item, engine.Point{X: float64(press.X), Y: float64(press.Y)})
		if g == engine.GestureIdle {
			return
		}
		t.pressed = true
		t.origin = t.item.Position()
		t.total = fyne.Delta{}
	}

	t.total.DX += ev.Dragged.DX
	t.total.DY += ev.Dragged.DY
	dx, dy := float64(t.total.DX), float64(t.total.DY)

	switch t.item.Gesture() {
	case engine.GestureDragging:
		t.item.ProposeMove(engine.Point{X: t.origin.X + dx, Y: t.origin.Y + dy})
	case engine.GestureResizing:
		t.item.ProposeResizeBy(dx, dy)
	}
	t.board.updateHighlight(t.item)
}

// DragEnd releases the gesture.
func (t *Tile) DragEnd() {
	if !t.pressed {
		return
	}
	t.pressed = false
	committed := t.board.engine.Release(t.item)
	t.board.gestureEnded(t.item, committed)
}

// TappedSecondary opens the tile's context menu.
func (t *Tile) TappedSecondary(ev *fyne.PointEvent) {
	c := fyne.CurrentApp().Driver().CanvasForObject(t)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtPosition(t.Menu(), c, ev.AbsolutePosition)
}

// Menu is the tile's context menu.
func (t *Tile) Menu() *fyne.Menu {
	del := fyne.NewMenuItem("Delete", t.item.RequestRemove)
	del.Icon = theme.DeleteIcon()
	return fyne.NewMenu("", del)
}

func (t *Tile) CreateRenderer() fyne.WidgetRenderer {
	r := &tileRenderer{
		t:        t,
		bg:       canvas.NewRectangle(tileColor),
		titleBar: canvas.NewRectangle(titleBarColor),
		title:    canvas.NewText("", tileTextColor),
		value:    canvas.NewText("", tileTextColor),
		grip:     canvas.NewRectangle(gripColor),
	}
	r.bg.StrokeColor = titleBarColor
	r.bg.StrokeWidth = 1
	r.title.TextStyle = fyne.TextStyle{Bold: true}
	r.title.TextSize = 12
	r.value.TextSize = 12
	r.Refresh()
	return r
}

type tileRenderer struct {
	t        *Tile
	bg       *canvas.Rectangle
	titleBar *canvas.Rectangle
	title    *canvas.Text
	value    *canvas.Text
	grip     *canvas.Rectangle
}

func (r *tileRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.titleBar.Resize(fyne.NewSize(size.Width, titleBarHeight))
	r.title.Move(fyne.NewPos(tileInset, (titleBarHeight-r.title.MinSize().Height)/2))
	r.value.Move(fyne.NewPos(tileInset, titleBarHeight+tileInset))

	g := r.t.item.GripRect()
	r.grip.Move(fyne.NewPos(float32(g.X), float32(g.Y)))
	r.grip.Resize(fyne.NewSize(float32(g.Width), float32(g.Height)))
}

func (r *tileRenderer) MinSize() fyne.Size {
	return fyne.NewSize(float32(engine.GripSize), titleBarHeight)
}

func (r *tileRenderer) Refresh() {
	it := r.t.item
	r.title.Text = it.Title
	r.value.Text = r.t.value
	if it.Placeholder {
		r.titleBar.FillColor = placeholderColor
		r.value.Text = "Unknown widget kind: " + it.Kind
	} else {
		r.titleBar.FillColor = titleBarColor
	}
	r.Layout(r.t.Size())
	canvas.Refresh(r.t)
}

func (r *tileRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.titleBar, r.title, r.value, r.grip}
}

func (r *tileRenderer) Destroy() {}
