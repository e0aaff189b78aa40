// ABOUTME: Transaction accumulator pairing undo/redo chains with the updates they produce
// ABOUTME: Nested attempts roll back on failure and merge into the parent on success

package timeline

import (
	"cutline/undo"
	"cutline/update"
)

// txn collects the reversible steps of one user request.
type txn struct {
	undo    undo.Fun
	redo    undo.Fun
	updates []update.Update
}

func newTxn() *txn {
	return &txn{undo: undo.Noop, redo: undo.Noop}
}

// apply runs op and chains op/rev on success.
func (tx *txn) apply(op, rev undo.Fun) bool {
	return undo.Apply(op, rev, &tx.undo, &tx.redo)
}

// record appends view updates describing the applied steps.
func (tx *txn) record(updates ...update.Update) {
	tx.updates = append(tx.updates, updates...)
}

// merge appends a finished sub transaction.
func (tx *txn) merge(sub *txn) {
	undo.UpdateUndoRedo(sub.redo, sub.undo, &tx.undo, &tx.redo)
	tx.updates = append(tx.updates, sub.updates...)
}

// rollback reverts every step applied so far.
func (tx *txn) rollback() bool {
	ok := tx.undo()
	tx.undo, tx.redo = undo.Noop, undo.Noop
	tx.updates = nil

	return ok
}

// attempt runs fn in a sub transaction, merged on success and rolled back otherwise.
func (tx *txn) attempt(fn func(sub *txn) bool) bool {
	sub := newTxn()
	if !fn(sub) {
		sub.rollback()

		return false
	}

	tx.merge(sub)

	return true
}
