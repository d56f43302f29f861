package editor

import "image"

// Snapshot is one history entry: the working image and the baseline that
// were in effect before a change. Either may be nil when no crop existed.
//
// Images are never modified after creation, so a snapshot can hold the same
// values the session holds without copying pixels.
type Snapshot struct {
	Working  image.Image
	Baseline image.Image
}

// History is a linear undo/redo history built from two stacks of full
// snapshots. Storing snapshots rather than deltas means lossy edits such as
// grayscale need no inverse.
//
// History is not safe for concurrent use.
type History struct {
	undo  []Snapshot // most recent last
	redo  []Snapshot // most recent last
	limit int
}

// NewHistory creates an empty history. limit caps the undo stack; the oldest
// entries are dropped past it. A limit of 0 means unbounded.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// RecordBeforeEdit pushes the state that a fresh change is about to replace
// and discards the redo stack. Undo and Redo never call it.
func (h *History) RecordBeforeEdit(current Snapshot) {
	h.pushUndo(current)
	h.redo = nil
}

// Undo moves current onto the redo stack and returns the most recent undo
// entry. It fails with ErrNothingToUndo, leaving both stacks as they were,
// when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, error) {
	if len(h.undo) == 0 {
		return Snapshot{}, ErrNothingToUndo
	}
	prev := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = Snapshot{}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return prev, nil
}

// Redo moves current onto the undo stack and returns the most recent redo
// entry. It fails with ErrNothingToRedo when there is nothing to redo.
func (h *History) Redo(current Snapshot) (Snapshot, error) {
	if len(h.redo) == 0 {
		return Snapshot{}, ErrNothingToRedo
	}
	next := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = Snapshot{}
	h.redo = h.redo[:len(h.redo)-1]
	h.pushUndo(current)
	return next, nil
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth returns the number of entries on the undo stack.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the number of entries on the redo stack.
func (h *History) RedoDepth() int { return len(h.redo) }

func (h *History) pushUndo(s Snapshot) {
	h.undo = append(h.undo, s)
	if h.limit > 0 && len(h.undo) > h.limit {
		drop := len(h.undo) - h.limit
		clear(h.undo[:drop])
		h.undo = append(h.undo[:0], h.undo[drop:]...)
	}
}
