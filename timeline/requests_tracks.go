// ABOUTME: Track-level requests: insertion, cascading deletion and property edits
// ABOUTME: Track rows are notified directly on the root, item rows go through the updater

package timeline

import (
	"maps"
	"slices"

	"cutline/undo"
	"cutline/update"
)

// TrackProps are the user-editable track properties.
type TrackProps struct {
	Name   string
	Locked bool
	Muted  bool
}

func (t *Timeline) insertTrackOp(tr *Track, row int) undo.Fun {
	return func() bool {
		t.mu.RLock()
		_, exists := t.tracks[tr.id]
		valid := !exists && row >= 0 && row <= len(t.trackOrder)
		t.mu.RUnlock()

		if !valid {
			return false
		}

		v := t.View()
		v.BeginInsertRows(update.Root, row, row)

		t.mu.Lock()
		t.trackOrder = slices.Insert(t.trackOrder, row, tr.id)
		t.tracks[tr.id] = tr
		t.mu.Unlock()

		v.EndInsertRows()

		return true
	}
}

func (t *Timeline) removeTrackOp(trackID int) undo.Fun {
	return func() bool {
		t.mu.RLock()
		tr, exists := t.tracks[trackID]
		row := t.trackIndex(trackID)
		valid := exists && row >= 0 && tr.isEmpty()
		t.mu.RUnlock()

		if !valid {
			return false
		}

		v := t.View()
		v.BeginRemoveRows(update.Root, row, row)

		t.mu.Lock()
		t.trackOrder = slices.Delete(t.trackOrder, row, row+1)
		delete(t.tracks, trackID)
		t.mu.Unlock()

		v.EndRemoveRows()

		return true
	}
}

// RequestTrackInsertion inserts a new track at row (0 is the bottom, -1 appends on top)
// and returns its id.
func (t *Timeline) RequestTrackInsertion(row int, audio bool, name string, logUndo bool) (int, bool) {
	id := NoID

	ok := t.commit("Insert track", logUndo, func(tx *txn) bool {
		var created bool
		id, created = t.insertTrack(row, audio, name, tx)
		return created
	})

	return id, ok
}

func (t *Timeline) insertTrack(row int, audio bool, name string, tx *txn) (int, bool) {
	if row < 0 || row > len(t.trackOrder) {
		row = len(t.trackOrder)
	}

	relink := t.watchStacking(row)

	tr := newTrack(t, t.ids.Next(), name, audio)
	if !tx.apply(t.insertTrackOp(tr, row), t.removeTrackOp(tr.id)) {
		return NoID, false
	}

	relink(tx)

	return tr.id, true
}

// RequestTrackDeletion removes a track with every item on it.
func (t *Timeline) RequestTrackDeletion(trackID int, logUndo bool) bool {
	return t.commit("Delete track", logUndo, func(tx *txn) bool {
		tr, ok := t.tracks[trackID]
		if !ok || tr.locked {
			return false
		}

		row := t.trackIndex(trackID)

		for _, id := range slices.Sorted(maps.Keys(t.compositions)) {
			c := t.compositions[id]
			if c.aTrack != trackID {
				continue
			}

			if !t.setATrack(c, NoID, tx) {
				return false
			}
		}

		for _, id := range tr.compositions.ordered() {
			if !t.deleteItem(id, false, tx) {
				return false
			}
		}

		for _, id := range tr.clips.ordered() {
			if !t.deleteItem(id, true, tx) {
				return false
			}
		}

		if !tx.flush() {
			return false
		}

		relink := t.watchStacking(row + 1)

		if !tx.apply(t.removeTrackOp(trackID), t.insertTrackOp(tr, row)) {
			return false
		}

		relink(tx)

		return true
	})
}

// RequestTrackProperty sets the track name, lock and mute state.
func (t *Timeline) RequestTrackProperty(trackID int, props TrackProps, logUndo bool) bool {
	return t.commit("Edit track", logUndo, func(tx *txn) bool {
		tr, ok := t.tracks[trackID]
		if !ok {
			return false
		}

		old := TrackProps{Name: tr.name, Locked: tr.locked, Muted: tr.muted}
		if old == props {
			return true
		}

		return tx.apply(
			t.notifyTrack(trackID, tr.setPropertiesOp(props.Name, props.Locked, props.Muted)),
			t.notifyTrack(trackID, tr.setPropertiesOp(old.Name, old.Locked, old.Muted)),
		)
	})
}

// watchStacking watches every composition on the tracks from row upwards, whose
// track below may change when a track is inserted or removed under them.
func (t *Timeline) watchStacking(row int) func(*txn) {
	var watches []func(*txn)

	for _, trackID := range t.trackOrder[min(max(row, 0), len(t.trackOrder)):] {
		for _, id := range t.tracks[trackID].compositions.ordered() {
			watches = append(watches, t.watchRelink(t.compositions[id]))
		}
	}

	return func(tx *txn) {
		for _, w := range watches {
			w(tx)
		}
	}
}

// notifyTrack refreshes the track row after op.
func (t *Timeline) notifyTrack(trackID int, op undo.Fun) undo.Fun {
	return func() bool {
		if !op() {
			return false
		}

		t.View().NotifyChange(t.TrackIndex(trackID), update.RoleName)

		return true
	}
}
