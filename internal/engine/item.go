package engine

import (
	"github.com/google/uuid"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// GripSize is the edge of the square resize grip in a tile's bottom-right
// corner, in pixels.
const GripSize = 15.0

// Gesture is the interactive state of an item.
type Gesture int

const (
	GestureIdle Gesture = iota
	GestureDragging
	GestureResizing
)

func (g Gesture) String() string {
	switch g {
	case GestureDragging:
		return "Dragging"
	case GestureResizing:
		return "Resizing"
	default:
		return "Idle"
	}
}

// Item is a movable, resizable widget tile.
//
// The committed cell and span change only through placement or a committed
// gesture. While a gesture is in progress the proposed position or size is
// kept separately and the committed state is snapshotted so it can be
// restored exactly.
type Item struct {
	ID          string
	Title       string
	Kind        string
	Payload     map[string]any
	MinSize     Size
	Placeholder bool // Built for a kind no constructor recognized

	cell     Cell
	span     Span
	cellSize int
	grid     *Grid

	gesture     Gesture
	startCell   Cell
	startSpan   Span
	startSize   Size
	pos         Point // proposed top-left while dragging
	pendingSpan Span  // proposed span while resizing

	onRemove func(*Item)
	onChange func(*Item)
}

// NewItem creates an unplaced item.
func NewItem(title, kind string, span Span, payload map[string]any) *Item {
	if kind == "" {
		kind = model.KindBase
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return &Item{
		ID:      uuid.New().String(),
		Title:   title,
		Kind:    kind,
		Payload: payload,
		span:    span.normalized(),
	}
}

func (it *Item) Cell() Cell       { return it.cell }
func (it *Item) Span() Span       { return it.span }
func (it *Item) Gesture() Gesture { return it.gesture }

// Placed reports whether the item is committed to a grid.
func (it *Item) Placed() bool { return it.grid != nil }

// Position returns the item's top-left pixel. During a drag this is the
// proposed position.
func (it *Item) Position() Point {
	if it.gesture == GestureDragging {
		return it.pos
	}
	return it.committedPosition()
}

// Size returns the item's pixel extent. During a resize this is the
// proposed, cell-snapped size.
func (it *Item) Size() Size {
	s := it.span
	if it.gesture == GestureResizing {
		s = it.pendingSpan
	}
	return Size{
		Width:  float64(s.X * it.cellSize),
		Height: float64(s.Y * it.cellSize),
	}
}

// Bounds returns the item's current pixel rectangle.
func (it *Item) Bounds() Rect {
	return Rect{Point: it.Position(), Size: it.Size()}
}

// GripRect returns the resize grip in item-local pixels.
func (it *Item) GripRect() Rect {
	s := it.Size()
	return Rect{
		Point: Point{X: s.Width - GripSize, Y: s.Height - GripSize},
		Size:  Size{Width: GripSize, Height: GripSize},
	}
}

// SetSpan replaces the span. It performs no collision check.
func (it *Item) SetSpan(s Span) {
	it.span = s.normalized()
	it.changed()
}

// OnChange registers the callback run whenever the item's geometry changes.
func (it *Item) OnChange(fn func(*Item)) {
	it.onChange = fn
}

// RequestRemove asks the owning controller to delete the item.
func (it *Item) RequestRemove() {
	if fn := it.onRemove; fn != nil {
		it.onRemove = nil
		fn(it)
	}
}

// Begin starts a gesture at the item-local press point: a press inside the
// grip resizes, anywhere else drags. Any running gesture is replaced.
func (it *Item) Begin(local Point) Gesture {
	it.startCell = it.cell
	it.startSpan = it.span
	it.startSize = it.Size()
	it.pos = it.committedPosition()
	it.pendingSpan = it.span

	if it.GripRect().Contains(local) {
		it.gesture = GestureResizing
	} else {
		it.gesture = GestureDragging
	}
	return it.gesture
}

// ProposeMove sets the transient top-left pixel during a drag.
func (it *Item) ProposeMove(p Point) {
	if it.gesture != GestureDragging {
		return
	}
	it.pos = p
	it.changed()
}

// ProposeResize sets the transient pixel size during a resize. The proposal
// is snapped to whole cells and never drops below MinSize.
func (it *Item) ProposeResize(size Size) {
	if it.gesture != GestureResizing {
		return
	}
	next := spanForSize(size, it.MinSize, it.cellSize)
	if next != it.pendingSpan {
		it.pendingSpan = next
		it.changed()
	}
}

// ProposeResizeBy resizes relative to the size at gesture start.
func (it *Item) ProposeResizeBy(dx, dy float64) {
	it.ProposeResize(Size{
		Width:  it.startSize.Width + dx,
		Height: it.startSize.Height + dy,
	})
}

// Target returns the position and span the current gesture would commit.
func (it *Item) Target() (Point, Span) {
	switch it.gesture {
	case GestureDragging:
		return it.pos, it.span
	case GestureResizing:
		return it.committedPosition(), it.pendingSpan
	default:
		return it.committedPosition(), it.span
	}
}

// CommitOrRevert ends the gesture. When valid, the target snaps to the
// nearest cell clamped to the board; otherwise the cell and span captured at
// gesture start are restored.
func (it *Item) CommitOrRevert(valid bool) {
	if it.gesture == GestureIdle {
		return
	}
	if valid {
		pos, span := it.Target()
		it.span = span
		if it.grid != nil {
			it.cell = it.grid.PixelToNearestCell(pos, span)
		} else {
			it.cell = Cell{Col: max(roundCells(pos.X, it.cellSize), 0), Row: max(roundCells(pos.Y, it.cellSize), 0)}
		}
	} else {
		it.cell = it.startCell
		it.span = it.startSpan
	}
	it.gesture = GestureIdle
	it.changed()
}

// Record returns the serialized form of the committed state.
func (it *Item) Record() model.LayoutRecord {
	return model.LayoutRecord{
		Pos:   [2]int{it.cell.Col, it.cell.Row},
		SpanX: it.span.X,
		SpanY: it.span.Y,
		Kind:  it.Kind,
		Title: it.Title,
		Info:  model.CopyInfo(it.Payload),
	}
}

func (it *Item) committedPosition() Point {
	return Point{
		X: float64(it.cell.Col * it.cellSize),
		Y: float64(it.cell.Row * it.cellSize),
	}
}

func (it *Item) setCell(c Cell) {
	it.cell = c
	it.changed()
}

func (it *Item) cancelGesture() {
	if it.gesture != GestureIdle {
		it.CommitOrRevert(false)
	}
}

func (it *Item) changed() {
	if it.onChange != nil {
		it.onChange(it)
	}
}
