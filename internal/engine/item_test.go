package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetSpanNormalizesAndNotifies(t *testing.T) {
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	var calls int
	item.OnChange(func(*Item) { calls++ })

	item.SetSpan(Span{X: 0, Y: -3})
	assert.Equal(t, Span{X: 1, Y: 1}, item.Span())
	assert.Equal(t, 1, calls)
}

func TestNewItemIDsAreFullUUIDs(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewItem("A", "base", Span{X: 1, Y: 1}, nil).ID
		assert.Len(t, id, 36)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCommitOrRevertDirectly(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 2, Y: 1}, nil)
	e.PlaceAt(item, Cell{Col: 1, Row: 1})

	// Idle items ignore the call.
	item.CommitOrRevert(true)
	assert.Equal(t, Cell{Col: 1, Row: 1}, item.Cell())

	assert.Equal(t, GestureDragging, item.Begin(Point{X: 5, Y: 5}))
	item.ProposeMove(Point{X: 170, Y: 100})
	item.CommitOrRevert(true)
	assert.Equal(t, Cell{Col: 4, Row: 2}, item.Cell(), "170/48 and 100/48 round to 4 and 2")
	assert.Equal(t, GestureIdle, item.Gesture())

	item.Begin(Point{X: 5, Y: 5})
	item.ProposeMove(Point{X: 0, Y: 0})
	item.CommitOrRevert(false)
	assert.Equal(t, Cell{Col: 4, Row: 2}, item.Cell())
	assert.Equal(t, Span{X: 2, Y: 1}, item.Span())
}

func TestBeginInsideGripResizes(t *testing.T) {
	e := newTestEngine(10, 10)
	item := NewItem("A", "base", Span{X: 2, Y: 2}, nil)
	e.PlaceAt(item, Cell{})

	assert.Equal(t, GestureResizing, item.Begin(Point{X: 90, Y: 90}))
	item.ProposeResizeBy(48, 0)
	_, span := item.Target()
	assert.Equal(t, Span{X: 3, Y: 2}, span)
	assert.Equal(t, Span{X: 2, Y: 2}, item.Span(), "committed span is untouched until release")

	item.CommitOrRevert(true)
	assert.Equal(t, Span{X: 3, Y: 2}, item.Span())
}
