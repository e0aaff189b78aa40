// ABOUTME: Wraps a transaction's undo/redo chains with begin/end view notifications
// ABOUTME: Computes row indexes before the mutation and closes them after it

package update

import "cutline/undo"

// Apply registers an operation that has already been applied speculatively.
// It rolls the operation back with *undoFn, wraps *redoFn and *undoFn so each
// run is framed by the simplified notifications (the reversed ones for undo),
// then replays the wrapped redo once. It reports whether the replay succeeded.
func Apply(undoFn, redoFn *undo.Fun, list []Update) bool {
	updates := Simplify(list)
	revUpdates := Reverse(updates)

	if !(*undoFn)() {
		return false
	}

	origUndo, origRedo := *undoFn, *redoFn

	*redoFn = func() bool {
		preApply(updates)
		ok := origRedo()
		postApply(updates)

		return ok
	}
	*undoFn = func() bool {
		preApply(revUpdates)
		ok := origUndo()
		postApply(revUpdates)

		return ok
	}

	return (*redoFn)()
}

// preApply opens the structural notifications, rows are read from the state before the mutation.
func preApply(list []Update) {
	for _, u := range list {
		switch u.Kind {
		case KindDelete:
			tl := u.At.Timeline
			row := tl.ItemRow(u.At.Track, u.Item, u.IsClip)
			viewOf(tl).BeginRemoveRows(tl.TrackIndex(u.At.Track), row, row)
		case KindInsert:
			tl := u.At.Timeline
			row := tl.ItemRow(u.At.Track, u.Item, u.IsClip)
			viewOf(tl).BeginInsertRows(tl.TrackIndex(u.At.Track), row, row)
		case KindMove:
			src, dst := u.From.Timeline, u.To.Timeline
			srcRow := src.ItemRow(u.From.Track, u.Item, u.IsClip)
			dstRow := dst.ItemRow(u.To.Track, u.Item, u.IsClip)

			if src == dst {
				viewOf(src).BeginMoveRows(src.TrackIndex(u.From.Track), srcRow, srcRow, dst.TrackIndex(u.To.Track), dstRow)
			} else {
				viewOf(src).BeginRemoveRows(src.TrackIndex(u.From.Track), srcRow, srcRow)
				viewOf(dst).BeginInsertRows(dst.TrackIndex(u.To.Track), dstRow, dstRow)
			}
		case KindChange:
		}
	}
}

// postApply closes what preApply opened and refreshes changed attributes.
func postApply(list []Update) {
	for _, u := range list {
		switch u.Kind {
		case KindDelete:
			viewOf(u.At.Timeline).EndRemoveRows()
		case KindInsert:
			viewOf(u.At.Timeline).EndInsertRows()
		case KindMove:
			if u.From.Timeline == u.To.Timeline {
				viewOf(u.From.Timeline).EndMoveRows()
			} else {
				viewOf(u.From.Timeline).EndRemoveRows()
				viewOf(u.To.Timeline).EndInsertRows()
			}
		case KindChange:
			tl := u.At.Timeline
			if tl == nil {
				continue
			}

			viewOf(tl).NotifyChange(tl.ItemIndex(u.Item), u.Roles)
		}
	}
}
