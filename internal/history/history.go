// Package history keeps a linear undo/redo stack over whole document snapshots.
package history

import (
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
)

// History records committed document snapshots. The zero value is ready to use.
type History struct {
	past   []canvas.Document
	future []canvas.Document
	dirty  bool
}

// Commit records snapshot as the state to return to on the next Undo and clears
// the redo stack. Call it once per completed user action with the document as it
// was before the action.
func (h *History) Commit(snapshot canvas.Document) {
	h.past = append(h.past, snapshot.Clone())
	h.future = nil
	h.dirty = true
}

// Undo returns the most recent committed snapshot and parks current on the redo
// stack. It reports false and leaves everything untouched when there is nothing to undo.
func (h *History) Undo(current canvas.Document) (canvas.Document, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	last := len(h.past) - 1
	previous := h.past[last]
	h.past[last] = canvas.Document{}
	h.past = h.past[:last]

	future := make([]canvas.Document, 0, len(h.future)+1)
	future = append(future, current.Clone())
	h.future = append(future, h.future...)
	h.dirty = true
	return previous.Clone(), true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current canvas.Document) (canvas.Document, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, current.Clone())
	h.dirty = true
	return next.Clone(), true
}

// CanUndo reports whether Undo would change the document.
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether Redo would change the document.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (h *History) Depth() (past int, future int) {
	return len(h.past), len(h.future)
}

// Dirty reports whether anything was committed since the last MarkSaved.
func (h *History) Dirty() bool {
	return h.dirty
}

// MarkSaved clears the dirty flag.
func (h *History) MarkSaved() {
	h.dirty = false
}

// Reset drops both stacks, typically after loading a different document.
func (h *History) Reset() {
	h.past = nil
	h.future = nil
	h.dirty = false
}
