package ui

import "github.com/kevinbotlib/dashboard/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the board dimensions and layout at a point in time.
// Label names the change that moved the board away from this state.
type Snapshot struct {
	Records []model.LayoutRecord
	Rows    int
	Cols    int
	Label   string
}

// MakeSnapshot creates a snapshot holding a deep copy of records.
func MakeSnapshot(records []model.LayoutRecord, rows, cols int, label string) Snapshot {
	return Snapshot{
		Records: model.CopyRecords(records),
		Rows:    rows,
		Cols:    cols,
		Label:   label,
	}
}

type snapshotStack []Snapshot

func (s *snapshotStack) push(snap Snapshot, limit int) {
	*s = append(*s, snap)
	if len(*s) > limit {
		*s = (*s)[len(*s)-limit:]
	}
}

func (s *snapshotStack) pop() (Snapshot, bool) {
	if len(*s) == 0 {
		return Snapshot{}, false
	}
	top := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return top, true
}

func (s snapshotStack) peekLabel() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1].Label
}

// History manages undo/redo stacks of layout snapshots.
type History struct {
	undo     snapshotStack
	redo     snapshotStack
	maxDepth int
}

// NewHistory creates a History keeping at most 50 undo steps.
func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Push records the board as it was before a change and clears the redo
// stack. The oldest entry is dropped past the maximum depth.
func (h *History) Push(before Snapshot) {
	h.undo.push(before, h.maxDepth)
	h.redo = nil
}

// Undo returns the snapshot to restore and files current under the same
// change label for Redo. It reports false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	prev, ok := h.undo.pop()
	if !ok {
		return Snapshot{}, false
	}
	current.Label = prev.Label
	h.redo.push(current, h.maxDepth)
	return prev, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	next, ok := h.redo.pop()
	if !ok {
		return Snapshot{}, false
	}
	current.Label = next.Label
	h.undo.push(current, h.maxDepth)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoLabel names the change Undo would revert, or "" when there is none.
func (h *History) UndoLabel() string { return h.undo.peekLabel() }

// RedoLabel names the change Redo would reapply, or "" when there is none.
func (h *History) RedoLabel() string { return h.redo.peekLabel() }

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
