// ABOUTME: Reversible operation primitives used by every timeline mutation
// ABOUTME: Composes forward/reverse closures onto accumulated undo and redo chains

// Package undo provides the closure-based undo/redo primitives of the timeline model
// and the bounded history stack the editor pushes finished transactions onto.
package undo

// Fun is a niladic operation reporting success.
type Fun func() bool

// Noop is the identity operation every chain starts from.
func Noop() bool { return true }

// UpdateUndoRedo chains a new step onto existing undo/redo chains.
// The redo chain replays the previous steps first and op last, so a full redo
// re-applies steps in their original order. The undo chain runs rev first and
// then unwinds the previous steps. A failing link stops the chain.
func UpdateUndoRedo(op, rev Fun, undo, redo *Fun) {
	prevUndo := *undo
	prevRedo := *redo

	*undo = func() bool {
		if !rev() {
			return false
		}

		return prevUndo()
	}
	*redo = func() bool {
		if !prevRedo() {
			return false
		}

		return op()
	}
}

// PushFront chains a step that must run before everything already accumulated
// on redo, and after everything on undo.
func PushFront(op, rev Fun, undo, redo *Fun) {
	prevUndo := *undo
	prevRedo := *redo

	*undo = func() bool {
		if !prevUndo() {
			return false
		}

		return rev()
	}
	*redo = func() bool {
		if !op() {
			return false
		}

		return prevRedo()
	}
}

// Apply executes op and, if it succeeds, records op/rev onto the chains.
// It reports whether op succeeded; on failure the chains are left untouched.
func Apply(op, rev Fun, undo, redo *Fun) bool {
	if !op() {
		return false
	}

	UpdateUndoRedo(op, rev, undo, redo)

	return true
}

// Seq returns an operation running each fn in order, stopping at the first failure.
func Seq(fns ...Fun) Fun {
	return func() bool {
		for _, fn := range fns {
			if !fn() {
				return false
			}
		}

		return true
	}
}
