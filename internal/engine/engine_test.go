package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(rows, cols int) *Engine {
	return New(NewGrid(rows, cols, 48), nil)
}

// assertNoOverlap checks that no two committed items share a cell.
func assertNoOverlap(t *testing.T, g *Grid) {
	t.Helper()
	items := g.Items()
	for i := range items {
		a := items[i]
		assert.True(t, g.InBounds(a.Cell(), a.Span()), "%s out of bounds", a.Title)
		for j := i + 1; j < len(items); j++ {
			b := items[j]
			assert.False(t, cellsOverlap(a.Cell(), a.Span(), b.Cell(), b.Span()),
				"%s at %v overlaps %s at %v", a.Title, a.Cell(), b.Title, b.Cell())
		}
	}
}

func TestAutoPlaceGrowsToMinimumSize(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("Speed", "base", Span{X: 1, Y: 1}, nil)
	item.MinSize = Size{Width: 100, Height: 60}

	require.True(t, e.AutoPlace(item))
	assert.Equal(t, Span{X: 3, Y: 2}, item.Span())
	assert.Equal(t, Cell{Col: 0, Row: 0}, item.Cell())
	assert.True(t, item.Placed())
}

func TestAutoPlaceKeepsLargerSpan(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("Wide", "base", Span{X: 5, Y: 1}, nil)
	item.MinSize = Size{Width: 96, Height: 96}

	require.True(t, e.AutoPlace(item))
	assert.Equal(t, Span{X: 5, Y: 2}, item.Span())
}

func TestAutoPlaceIsRowMajorFirstFit(t *testing.T) {
	e := newTestEngine(4, 4)
	blocker := NewItem("Blocker", "base", Span{X: 2, Y: 1}, nil)
	e.PlaceAt(blocker, Cell{Col: 0, Row: 0})

	a := NewItem("A", "base", Span{X: 2, Y: 1}, nil)
	require.True(t, e.AutoPlace(a))
	assert.Equal(t, Cell{Col: 2, Row: 0}, a.Cell())

	b := NewItem("B", "base", Span{X: 1, Y: 1}, nil)
	require.True(t, e.AutoPlace(b))
	assert.Equal(t, Cell{Col: 0, Row: 1}, b.Cell())

	tall := NewItem("Tall", "base", Span{X: 4, Y: 2}, nil)
	require.True(t, e.AutoPlace(tall))
	assert.Equal(t, Cell{Col: 0, Row: 2}, tall.Cell())

	assertNoOverlap(t, e.Grid())
}

func TestAutoPlaceFullGridLeavesItemUnplaced(t *testing.T) {
	e := newTestEngine(10, 10)
	full := NewItem("Full", "base", Span{X: 10, Y: 10}, nil)
	require.True(t, e.AutoPlace(full))

	second := NewItem("Second", "base", Span{X: 1, Y: 1}, nil)
	assert.False(t, e.AutoPlace(second))
	assert.False(t, second.Placed())
	assert.Equal(t, 1, e.Grid().Len())

	err := e.Add(NewItem("Third", "base", Span{X: 1, Y: 1}, nil))
	assert.True(t, errors.Is(err, ErrNoSpace))
}

func TestAutoPlaceSpanLargerThanGrid(t *testing.T) {
	e := newTestEngine(2, 2)
	item := NewItem("Huge", "base", Span{X: 3, Y: 1}, nil)
	assert.False(t, e.AutoPlace(item))
	assert.Equal(t, 0, e.Grid().Len())
}

func TestPlaceAtSkipsCollisionCheck(t *testing.T) {
	e := newTestEngine(10, 10)
	a := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	b := NewItem("B", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(a, Cell{Col: 1, Row: 1})
	e.PlaceAt(b, Cell{Col: 1, Row: 1})

	assert.Equal(t, 2, e.Grid().Len())
	assert.Equal(t, Cell{Col: 1, Row: 1}, b.Cell())
}

func TestRandomPlacementsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		e := New(NewGrid(1+rng.Intn(12), 1+rng.Intn(12), 16+rng.Intn(48)), nil)
		for i := 0; i < 30; i++ {
			item := NewItem("w", "base", Span{X: 1 + rng.Intn(4), Y: 1 + rng.Intn(4)}, nil)
			e.AutoPlace(item)
			assertNoOverlap(t, e.Grid())
		}
		// Random drags and resizes must keep the invariant too.
		for i := 0; i < 40 && e.Grid().Len() > 0; i++ {
			items := e.Items()
			item := items[rng.Intn(len(items))]
			size := item.Size()
			if rng.Intn(2) == 0 {
				e.Press(item, Point{X: 1, Y: 1})
				item.ProposeMove(Point{X: rng.Float64() * 800, Y: rng.Float64() * 800})
			} else {
				e.Press(item, Point{X: size.Width - 1, Y: size.Height - 1})
				item.ProposeResizeBy(rng.Float64()*200-100, rng.Float64()*200-100)
			}
			e.Release(item)
			assertNoOverlap(t, e.Grid())
		}
	}
}

func TestValidateDrop(t *testing.T) {
	e := newTestEngine(10, 10)
	a := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	b := NewItem("B", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(a, Cell{Col: 0, Row: 0})
	e.PlaceAt(b, Cell{Col: 4, Row: 4})

	assert.True(t, e.ValidateDrop(a, Point{X: 10, Y: 10}, a.Span()), "overlapping only itself")
	assert.False(t, e.ValidateDrop(a, Point{X: 4 * 48, Y: 3 * 48}, a.Span()), "onto B")
	assert.True(t, e.ValidateDrop(a, Point{X: 9000, Y: 0}, a.Span()), "clamped to the right edge")
	assert.False(t, e.ValidateDrop(a, Point{}, Span{X: 11, Y: 1}), "wider than the board")
}

func TestDragCommitSnapsToNearestCell(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(item, Cell{Col: 0, Row: 0})

	require.Equal(t, GestureDragging, e.Press(item, Point{X: 10, Y: 10}))
	item.ProposeMove(Point{X: 150, Y: 70})
	assert.Equal(t, Point{X: 150, Y: 70}, item.Position(), "transient position is visible")
	assert.Equal(t, Cell{Col: 0, Row: 0}, item.Cell(), "committed cell unchanged mid-drag")

	rect, valid := e.Highlight(item)
	assert.True(t, valid)
	assert.Equal(t, Rect{Point: Point{X: 144, Y: 48}, Size: Size{Width: 96, Height: 96}}, rect)

	assert.True(t, e.Release(item))
	assert.Equal(t, Cell{Col: 3, Row: 1}, item.Cell())
	assert.Equal(t, GestureIdle, item.Gesture())
	assert.Nil(t, e.Active())
}

func TestDragOffBoardClampsOnCommit(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 3, Y: 2}, nil)
	e.PlaceAt(item, Cell{Col: 0, Row: 0})

	e.Press(item, Point{X: 5, Y: 5})
	item.ProposeMove(Point{X: 2000, Y: -300})
	assert.True(t, e.Release(item))
	assert.Equal(t, Cell{Col: 7, Row: 0}, item.Cell())
}

func TestInvalidDragRevertsExactly(t *testing.T) {
	e := newTestEngine(10, 10)
	a := NewItem("A", "base", Span{X: 2, Y: 3}, nil)
	b := NewItem("B", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(a, Cell{Col: 1, Row: 2})
	e.PlaceAt(b, Cell{Col: 6, Row: 6})

	e.Press(a, Point{X: 5, Y: 5})
	a.ProposeMove(Point{X: 6 * 48, Y: 6 * 48})
	_, valid := e.Highlight(a)
	assert.False(t, valid)

	assert.False(t, e.Release(a))
	assert.Equal(t, Cell{Col: 1, Row: 2}, a.Cell())
	assert.Equal(t, Span{X: 2, Y: 3}, a.Span())
	assert.Equal(t, Point{X: 48, Y: 96}, a.Position())
}

func TestResizeGestureCommit(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	item.MinSize = Size{Width: 96, Height: 96}
	e.PlaceAt(item, Cell{Col: 1, Row: 1})

	require.Equal(t, GestureResizing, e.Press(item, Point{X: 90, Y: 90}))
	item.ProposeResizeBy(100, 30)
	assert.Equal(t, Span{X: 2, Y: 2}, item.Span(), "committed span unchanged mid-resize")
	assert.Equal(t, Size{Width: 192, Height: 144}, item.Size())

	assert.True(t, e.Release(item))
	assert.Equal(t, Span{X: 4, Y: 3}, item.Span())
	assert.Equal(t, Cell{Col: 1, Row: 1}, item.Cell())
}

func TestResizeGestureRespectsMinimum(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 3, Y: 3}, nil)
	item.MinSize = Size{Width: 96, Height: 96}
	e.PlaceAt(item, Cell{})

	e.Press(item, Point{X: 140, Y: 140})
	item.ProposeResizeBy(-500, -500)
	e.Release(item)
	assert.Equal(t, Span{X: 2, Y: 2}, item.Span())
}

func TestInvalidResizeRevertsExactly(t *testing.T) {
	e := newTestEngine(10, 10)
	a := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	b := NewItem("B", "base", Span{X: 1, Y: 1}, nil)
	e.PlaceAt(a, Cell{Col: 0, Row: 0})
	e.PlaceAt(b, Cell{Col: 3, Row: 0})

	e.Press(a, Point{X: 90, Y: 90})
	a.ProposeResizeBy(96, 0)
	assert.False(t, e.Release(a))
	assert.Equal(t, Span{X: 2, Y: 2}, a.Span())
	assert.Equal(t, Cell{Col: 0, Row: 0}, a.Cell())
}

func TestResizePastEdgeIsClamped(t *testing.T) {
	e := newTestEngine(4, 4)
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(item, Cell{Col: 2, Row: 2})

	// One column too wide for its cell: the target shifts left.
	e.Press(item, Point{X: 90, Y: 90})
	item.ProposeResizeBy(48, 0)
	rect, valid := e.Highlight(item)
	assert.True(t, valid)
	assert.Equal(t, Point{X: 48, Y: 96}, rect.Point)
	assert.True(t, e.Release(item))
	assert.Equal(t, Cell{Col: 1, Row: 2}, item.Cell())
	assert.Equal(t, Span{X: 3, Y: 2}, item.Span())
}

func TestResizeWiderThanBoardIsInvalid(t *testing.T) {
	e := newTestEngine(4, 4)
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(item, Cell{Col: 2, Row: 2})

	e.Press(item, Point{X: 90, Y: 90})
	item.ProposeResizeBy(3*48, 0)
	_, valid := e.Highlight(item)
	assert.False(t, valid)
	assert.False(t, e.Release(item))
	assert.Equal(t, Span{X: 2, Y: 2}, item.Span())
	assert.Equal(t, Cell{Col: 2, Row: 2}, item.Cell())
}

func TestOnlyOneGestureAtATime(t *testing.T) {
	e := newTestEngine(10, 10)
	a := NewItem("A", "base", Span{X: 1, Y: 1}, nil)
	b := NewItem("B", "base", Span{X: 1, Y: 1}, nil)
	e.PlaceAt(a, Cell{Col: 0, Row: 0})
	e.PlaceAt(b, Cell{Col: 5, Row: 5})

	require.Equal(t, GestureDragging, e.Press(a, Point{X: 1, Y: 1}))
	assert.Equal(t, GestureIdle, e.Press(b, Point{X: 1, Y: 1}))
	assert.Equal(t, GestureIdle, b.Gesture())
	assert.False(t, e.Release(b), "releasing an item without a gesture does nothing")

	assert.True(t, e.Release(a))
	assert.Equal(t, GestureDragging, e.Press(b, Point{X: 1, Y: 1}))
}

func TestPressOnUnplacedItemIsIgnored(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 1, Y: 1}, nil)
	assert.Equal(t, GestureIdle, e.Press(item, Point{}))
	assert.Nil(t, e.Active())
}

func TestResizeGridRejectsAndLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 1, Y: 1}, nil)
	e.PlaceAt(item, Cell{Col: 6, Row: 6})
	before := e.Records()

	assert.False(t, e.ResizeGrid(5, 5))
	assert.Equal(t, 10, e.Grid().Rows())
	assert.Equal(t, 10, e.Grid().Cols())
	assert.Equal(t, Cell{Col: 6, Row: 6}, item.Cell())
	assert.Equal(t, before, e.Records())

	err := e.TryResize(5, 5)
	assert.True(t, errors.Is(err, ErrGridTooSmall))
}

func TestResizeGridKeepsItems(t *testing.T) {
	e := newTestEngine(10, 10)
	a := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	b := NewItem("B", "base", Span{X: 1, Y: 3}, nil)
	e.PlaceAt(a, Cell{Col: 0, Row: 0})
	e.PlaceAt(b, Cell{Col: 4, Row: 2})

	var changes int
	a.OnChange(func(*Item) { changes++ })

	require.True(t, e.ResizeGrid(5, 6))
	assert.Equal(t, 5, e.Grid().Rows())
	assert.Equal(t, 6, e.Grid().Cols())
	assert.Equal(t, Cell{Col: 4, Row: 2}, b.Cell())
	assert.Equal(t, Span{X: 1, Y: 3}, b.Span())
	assert.Equal(t, 1, changes)

	require.True(t, e.ResizeGrid(20, 30))
	assert.Equal(t, 2, e.Grid().Len())
}

func TestRemoveIsIdempotentAndNotifiesOnce(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 1, Y: 1}, nil)
	require.True(t, e.AutoPlace(item))

	var removed []*Item
	e.OnRemoved(func(it *Item) { removed = append(removed, it) })

	item.RequestRemove()
	item.RequestRemove()
	e.Remove(item)

	assert.Len(t, removed, 1)
	assert.Same(t, item, removed[0])
	assert.False(t, item.Placed())
	assert.Equal(t, 0, e.Grid().Len())
}

func TestRemoveDuringGesture(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 1, Y: 1}, nil)
	e.PlaceAt(item, Cell{Col: 2, Row: 2})

	e.Press(item, Point{X: 1, Y: 1})
	item.ProposeMove(Point{X: 300, Y: 300})
	e.Remove(item)

	assert.Nil(t, e.Active())
	assert.Equal(t, GestureIdle, item.Gesture())
	assert.Equal(t, Cell{Col: 2, Row: 2}, item.Cell())
}

func TestClear(t *testing.T) {
	e := newTestEngine(10, 10)
	for i := 0; i < 4; i++ {
		require.True(t, e.AutoPlace(NewItem("w", "base", Span{X: 1, Y: 1}, nil)))
	}
	e.Clear()
	assert.Equal(t, 0, e.Grid().Len())
}

func TestSetCellSizeThroughEngine(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(item, Cell{Col: 1, Row: 1})

	e.SetCellSize(32)
	assert.Equal(t, 32, e.Grid().CellSize())
	assert.Equal(t, Rect{Point: Point{X: 32, Y: 32}, Size: Size{Width: 64, Height: 64}}, item.Bounds())
}

func TestGestureString(t *testing.T) {
	assert.Equal(t, "Idle", GestureIdle.String())
	assert.Equal(t, "Dragging", GestureDragging.String())
	assert.Equal(t, "Resizing", GestureResizing.String())
}
