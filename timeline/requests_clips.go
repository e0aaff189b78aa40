// ABOUTME: Clip requests: insertion, move, resize, deletion, cut, disable and rename
// ABOUTME: Moves and deletions of grouped clips widen to the whole group

package timeline

import (
	"cutline/update"
)

// RequestClipInsertion creates a clip from spec and places it at pos on trackID.
func (t *Timeline) RequestClipInsertion(spec ClipSpec, trackID, pos int, logUndo bool) (int, bool) {
	id := NoID

	ok := t.commit("Insert clip", logUndo, func(tx *txn) bool {
		tr, ok := t.tracks[trackID]
		if !ok {
			return false
		}

		var created bool
		if id, created = t.constructClip(spec, tx); !created {
			return false
		}

		return tr.requestItemInsertion(id, true, pos, tx)
	})

	if !ok {
		return NoID, false
	}

	return id, true
}

// RequestClipMove moves a clip to pos on trackID. A grouped clip drags its group along.
func (t *Timeline) RequestClipMove(clipID, trackID, pos int, logUndo bool) bool {
	return t.commit("Move clip", logUndo, func(tx *txn) bool {
		return t.moveOrGroupMove(clipID, true, trackID, pos, tx)
	})
}

// RequestClipResize changes a clip duration by dragging its right or left edge.
func (t *Timeline) RequestClipResize(clipID, size int, right, logUndo bool) bool {
	return t.commit("Resize clip", logUndo, func(tx *txn) bool {
		c, ok := t.clips[clipID]
		if !ok {
			return false
		}

		if c.trackID == NoID {
			return c.requestResize(size, right, tx)
		}

		tr, ok := t.tracks[c.trackID]

		return ok && tr.requestClipResize(clipID, size, right, tx)
	})
}

// RequestItemDeletion removes a clip or composition. A grouped item takes its group with it.
func (t *Timeline) RequestItemDeletion(id int, logUndo bool) bool {
	return t.commit("Delete item", logUndo, func(tx *txn) bool {
		if !t.isItem(id) {
			return false
		}

		if t.groups.isGroup(t.groups.root(id)) {
			return t.deleteGroup(id, tx)
		}

		return t.deleteItem(id, t.clips[id] != nil, tx)
	})
}

// RequestClipCut splits a clip at timeline frame pos and returns the id of the right part.
// The right part joins the group of the original clip.
func (t *Timeline) RequestClipCut(clipID, pos int, logUndo bool) (int, bool) {
	newID := NoID

	ok := t.commit("Cut clip", logUndo, func(tx *txn) bool {
		c, ok := t.clips[clipID]
		if !ok || c.trackID == NoID {
			return false
		}

		var split bool
		if newID, split = t.tracks[c.trackID].splitClip(clipID, pos, tx); !split {
			return false
		}

		parent, grouped := t.groups.parent(clipID)
		if !grouped {
			return true
		}

		return t.changeGroups(tx, func(f *groupForest) bool {
			f.attach(newID, parent)
			return true
		})
	})

	if !ok {
		return NoID, false
	}

	return newID, true
}

// RequestClipDisable mutes or unmutes a clip.
func (t *Timeline) RequestClipDisable(clipID int, disabled, logUndo bool) bool {
	return t.commit("Disable clip", logUndo, func(tx *txn) bool {
		c, ok := t.clips[clipID]
		if !ok || t.lockedItem(&c.span) {
			return false
		}

		if c.disabled == disabled {
			return true
		}

		if !tx.apply(t.setClipStateOp(clipID, c.name, disabled), t.setClipStateOp(clipID, c.name, c.disabled)) {
			return false
		}

		tx.record(update.NewChange(clipID, t, update.RoleDisabled))

		return true
	})
}

// RequestClipRename sets the clip display name.
func (t *Timeline) RequestClipRename(clipID int, name string, logUndo bool) bool {
	return t.commit("Rename clip", logUndo, func(tx *txn) bool {
		c, ok := t.clips[clipID]
		if !ok || t.lockedItem(&c.span) {
			return false
		}

		if c.name == name {
			return true
		}

		if !tx.apply(t.setClipStateOp(clipID, name, c.disabled), t.setClipStateOp(clipID, c.name, c.disabled)) {
			return false
		}

		tx.record(update.NewChange(clipID, t, update.RoleName))

		return true
	})
}

func (t *Timeline) lockedItem(s *span) bool {
	if s.trackID == NoID {
		return false
	}

	tr, ok := t.tracks[s.trackID]

	return ok && tr.locked
}

// moveOrGroupMove moves a single item, or its whole group by the same offsets.
func (t *Timeline) moveOrGroupMove(id int, isClip bool, trackID, pos int, tx *txn) bool {
	s := t.spanOf(id, isClip)
	if s == nil {
		return false
	}

	if !t.groups.isGroup(t.groups.root(id)) || s.trackID == NoID {
		return t.moveItem(id, isClip, trackID, pos, tx)
	}

	from, to := t.trackIndex(s.trackID), t.trackIndex(trackID)
	if to < 0 {
		return false
	}

	return t.groupMove(id, to-from, pos-s.position, tx)
}

// moveItem places an item at pos on trackID, wherever it was before.
func (t *Timeline) moveItem(id int, isClip bool, trackID, pos int, tx *txn) bool {
	s := t.spanOf(id, isClip)
	dst, ok := t.tracks[trackID]
	if s == nil || !ok {
		return false
	}

	if isClip && s.trackID == trackID {
		return dst.requestClipMove(id, pos, tx)
	}

	return tx.attempt(func(sub *txn) bool {
		var relink func(*txn)
		if !isClip {
			relink = t.watchRelink(t.compositions[id])
		}

		if s.trackID != NoID {
			src, ok := t.tracks[s.trackID]
			if !ok || !src.requestItemDeletion(id, isClip, sub) {
				return false
			}
		}

		if !dst.requestItemInsertion(id, isClip, pos, sub) {
			return false
		}

		if relink != nil {
			relink(sub)
		}

		return true
	})
}

// deleteItem unplaces and deregisters a single item.
func (t *Timeline) deleteItem(id int, isClip bool, tx *txn) bool {
	s := t.spanOf(id, isClip)
	if s == nil {
		return false
	}

	return tx.attempt(func(sub *txn) bool {
		if !t.detachItem(id, sub) {
			return false
		}

		if s.trackID != NoID {
			tr, ok := t.tracks[s.trackID]
			if !ok || !tr.requestItemDeletion(id, isClip, sub) {
				return false
			}
		}

		if isClip {
			return sub.apply(t.deregisterClipOp(id), t.registerClipOp(t.clips[id]))
		}

		return sub.apply(t.deregisterCompositionOp(id), t.registerCompositionOp(t.compositions[id]))
	})
}
