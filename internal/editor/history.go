package editor

import (
	"geoedit/internal/record"
	"geoedit/pkg/geo"
)

// Action is one committed geometry edit: the state immediately before
// a drag (deep copied at drag-start) and the state after it.
type Action struct {
	RecordID string
	Prev     geo.Geometry
	Next     geo.Geometry
}

// History is the undo/redo stack of committed geometry edits. It holds
// actions, not records: applying an action asks the store to restore
// the captured geometry on the record.
type History struct {
	store record.Store
	undo  []Action
	redo  []Action
}

// NewHistory creates an empty history over the given store.
func NewHistory(store record.Store) *History {
	return &History{store: store}
}

// Push records a committed edit. Standard linear-undo semantics: a new
// action always clears the redo stack.
func (h *History) Push(a Action) {
	h.undo = append(h.undo, a)
	h.redo = nil
}

// Undo restores the previous geometry of the most recent action and
// moves the action to the redo stack. Returns false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	if h.apply(a.RecordID, a.Prev) {
		h.redo = append(h.redo, a)
		return true
	}
	return false
}

// Redo is the mirror of Undo using the post-edit geometry.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	if h.apply(a.RecordID, a.Next) {
		h.undo = append(h.undo, a)
		return true
	}
	return false
}

// Checkpoint clears both stacks without touching the store. The store
// already reflects the latest geometry from the incremental commits
// made while dragging.
func (h *History) Checkpoint() {
	h.undo = nil
	h.redo = nil
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// apply writes a captured geometry back onto a record. A record
// deleted since the action was captured drops the action silently.
func (h *History) apply(recordID string, g geo.Geometry) bool {
	rec := h.store.Get(recordID)
	if rec == nil {
		return false
	}
	restored := g.Clone()
	rec.Geometry = &restored
	return h.store.Update(rec) == nil
}
