// ABOUTME: Composition requests: insertion, move, resize, parameters and A track choice
// ABOUTME: Any change of track stacking re-evaluates the A/B validity of the composition

package timeline

import (
	"cutline/update"
)

// RequestCompositionInsertion creates a composition of serviceID, length frames long,
// and places it at pos on trackID.
func (t *Timeline) RequestCompositionInsertion(serviceID string, trackID, pos, length int, params map[string]string, logUndo bool) (int, bool) {
	id := NoID

	ok := t.commit("Insert composition", logUndo, func(tx *txn) bool {
		tr, ok := t.tracks[trackID]
		if !ok {
			return false
		}

		var created bool
		if id, created = t.constructComposition(serviceID, length, params, tx); !created {
			return false
		}

		return tr.requestItemInsertion(id, false, pos, tx)
	})

	if !ok {
		return NoID, false
	}

	return id, true
}

// RequestCompositionMove moves a composition to pos on trackID, with its group if any.
func (t *Timeline) RequestCompositionMove(id, trackID, pos int, logUndo bool) bool {
	return t.commit("Move composition", logUndo, func(tx *txn) bool {
		return t.moveOrGroupMove(id, false, trackID, pos, tx)
	})
}

// RequestCompositionResize changes the composition length by one of its edges.
func (t *Timeline) RequestCompositionResize(id, size int, right, logUndo bool) bool {
	return t.commit("Resize composition", logUndo, func(tx *txn) bool {
		c, ok := t.compositions[id]
		if !ok {
			return false
		}

		return tx.attempt(func(sub *txn) bool {
			return c.requestResize(size, right, sub)
		})
	})
}

// RequestCompositionParam sets a service parameter; an empty value removes it.
func (t *Timeline) RequestCompositionParam(id int, key, value string, logUndo bool) bool {
	return t.commit("Edit composition", logUndo, func(tx *txn) bool {
		c, ok := t.compositions[id]
		if !ok || key == "" || t.lockedItem(&c.span) {
			return false
		}

		old, had := c.params[key]
		if had == (value != "") && old == value {
			return true
		}

		if !tx.apply(t.setParamOp(id, key, value, value != ""), t.setParamOp(id, key, old, had)) {
			return false
		}

		tx.record(update.NewChange(id, t, update.RoleParams))

		return true
	})
}

// RequestCompositionATrack forces the A track, NoID returns to the track right below.
func (t *Timeline) RequestCompositionATrack(id, aTrack int, logUndo bool) bool {
	return t.commit("Change composition track", logUndo, func(tx *txn) bool {
		c, ok := t.compositions[id]
		if !ok || t.lockedItem(&c.span) {
			return false
		}

		if aTrack != NoID {
			if _, exists := t.tracks[aTrack]; !exists || aTrack == c.trackID {
				return false
			}
		}

		return t.setATrack(c, aTrack, tx)
	})
}

func (t *Timeline) setATrack(c *Composition, aTrack int, tx *txn) bool {
	if c.aTrack == aTrack {
		return true
	}

	relink := t.watchRelink(c)

	if !tx.apply(t.setATrackOp(c.id, aTrack), t.setATrackOp(c.id, c.aTrack)) {
		return false
	}

	tx.record(update.NewChange(c.id, t, update.RoleATrack))
	relink(tx)

	return true
}

// watchRelink snapshots the resolved A track and validity of c. The returned
// function records a change for whatever differs once c was re-parented.
func (t *Timeline) watchRelink(c *Composition) func(*txn) {
	aTrack, valid := t.resolveATrack(c), t.compositionValid(c)

	return func(tx *txn) {
		var roles update.Roles
		if t.resolveATrack(c) != aTrack {
			roles |= update.RoleATrack
		}
		if t.compositionValid(c) != valid {
			roles |= update.RoleValidity
		}

		if roles != 0 {
			tx.record(update.NewChange(c.id, t, roles))
		}
	}
}
