// ABOUTME: Item-model adapter mirroring the timeline's row structure from its notifications
// ABOUTME: Counts rows per track and collects changed items so the editor knows what to redraw

package tui

import (
	"fmt"
	"maps"

	"cutline/timeline"
	"cutline/update"
)

type pendingKind int

const (
	pendingInsert pendingKind = iota
	pendingRemove
	pendingMove
)

type pendingRows struct {
	kind   pendingKind
	parent update.Index
	count  int
	dst    update.Index
}

// rowMirror implements update.View. Begin calls queue the row change and the
// matching End call applies it, the way an item model would.
type rowMirror struct {
	tracks  int         // Rows under the root
	items   map[int]int // Track id -> rows
	pending []pendingRows
	changed map[int]update.Roles
	events  int
	logger  Logger
}

func newRowMirror(logger Logger) *rowMirror {
	if logger == nil {
		logger = nopLogger{}
	}

	return &rowMirror{
		items:   make(map[int]int),
		changed: make(map[int]update.Roles),
		logger:  logger,
	}
}

// reset loads the row counts of tl, used when a project is opened.
func (r *rowMirror) reset(tl *timeline.Timeline) {
	r.items = make(map[int]int)
	r.pending = nil
	r.changed = make(map[int]update.Roles)

	ids := tl.TrackIDs()
	r.tracks = len(ids)

	for _, id := range ids {
		if n := len(tl.TrackClips(id)) + len(tl.TrackCompositions(id)); n > 0 {
			r.items[id] = n
		}
	}
}

func (r *rowMirror) BeginInsertRows(parent update.Index, first, last int) {
	r.pending = append(r.pending, pendingRows{kind: pendingInsert, parent: parent, count: last - first + 1})
}

func (r *rowMirror) EndInsertRows() { r.end(pendingInsert) }

func (r *rowMirror) BeginRemoveRows(parent update.Index, first, last int) {
	r.pending = append(r.pending, pendingRows{kind: pendingRemove, parent: parent, count: last - first + 1})
}

func (r *rowMirror) EndRemoveRows() { r.end(pendingRemove) }

func (r *rowMirror) BeginMoveRows(src update.Index, first, last int, dst update.Index, _ int) {
	r.pending = append(r.pending, pendingRows{kind: pendingMove, parent: src, count: last - first + 1, dst: dst})
}

func (r *rowMirror) EndMoveRows() { r.end(pendingMove) }

// NotifyChange records roles under the item id, or the track id for track rows.
func (r *rowMirror) NotifyChange(item update.Index, roles update.Roles) {
	id := item.Item
	if id == timeline.NoID {
		id = item.Track
	}

	r.changed[id] = r.changed[id].Union(roles)
	r.events++
}

// end applies the oldest pending change of kind. Begin and End calls of one
// transaction are emitted in the same order, so the queue is first in first out.
func (r *rowMirror) end(kind pendingKind) {
	idx := -1
	for i, p := range r.pending {
		if p.kind == kind {
			idx = i
			break
		}
	}

	if idx < 0 {
		r.logger.Debugf("[MIRROR] end without begin (kind %d)", kind)
		return
	}

	p := r.pending[idx]
	r.pending = append(r.pending[:idx], r.pending[idx+1:]...)
	r.events++

	switch p.kind {
	case pendingInsert:
		r.add(p.parent, p.count)
	case pendingRemove:
		r.add(p.parent, -p.count)
	case pendingMove:
		r.add(p.parent, -p.count)
		r.add(p.dst, p.count)
	}
}

func (r *rowMirror) add(parent update.Index, n int) {
	if parent.IsRoot() {
		r.tracks += n
		return
	}

	r.items[parent.Track] += n
	if r.items[parent.Track] == 0 {
		delete(r.items, parent.Track)
	}
}

// takeChanged returns and clears the items reported changed since the last call.
func (r *rowMirror) takeChanged() map[int]update.Roles {
	res := r.changed
	r.changed = make(map[int]update.Roles)

	return res
}

// verify compares the mirrored rows with the model.
func (r *rowMirror) verify(tl *timeline.Timeline) error {
	if len(r.pending) > 0 {
		return fmt.Errorf("%d row changes were never closed", len(r.pending))
	}

	ids := tl.TrackIDs()
	if r.tracks != len(ids) {
		return fmt.Errorf("mirror has %d tracks, timeline has %d", r.tracks, len(ids))
	}

	want := make(map[int]int)
	for _, id := range ids {
		if n := len(tl.TrackClips(id)) + len(tl.TrackCompositions(id)); n > 0 {
			want[id] = n
		}
	}

	if !maps.Equal(r.items, want) {
		return fmt.Errorf("mirror rows %v, timeline rows %v", r.items, want)
	}

	return nil
}
