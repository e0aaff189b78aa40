// ABOUTME: One timeline track holding non-overlapping clips and compositions ordered by position
// ABOUTME: Validates insert/move/resize/split against the immediate neighbours before mutating

package timeline

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"

	"cutline/undo"
	"cutline/update"
)

// layer keeps one kind of item of a track: start position -> id, plus the ids in row order.
type layer struct {
	starts *treemap.Map
	ids    *treeset.Set
}

func newLayer() layer {
	return layer{
		starts: treemap.NewWithIntComparator(),
		ids:    treeset.NewWithIntComparator(),
	}
}

// ordered returns the item ids by ascending position.
func (l layer) ordered() []int {
	res := make([]int, 0, l.starts.Size())
	it := l.starts.Iterator()
	for it.Next() {
		res = append(res, it.Value().(int))
	}

	return res
}

// countBelow returns how many ids are smaller than id.
func (l layer) countBelow(id int) int {
	n := 0
	it := l.ids.Iterator()
	for it.Next() {
		if it.Value().(int) >= id {
			break
		}
		n++
	}

	return n
}

// Track is an ordered sequence of clips, with compositions on a separate layer.
// Items of one layer never overlap.
type Track struct {
	id     int
	name   string
	audio  bool
	locked bool
	muted  bool

	clips        layer
	compositions layer

	timeline *Timeline // Owner lookup only
}

// TrackInfo is a read-only copy of a track's properties.
type TrackInfo struct {
	ID           int
	Name         string
	Audio        bool
	Locked       bool
	Muted        bool
	Clips        int
	Compositions int
}

func newTrack(t *Timeline, id int, name string, audio bool) *Track {
	return &Track{
		id:           id,
		name:         name,
		audio:        audio,
		clips:        newLayer(),
		compositions: newLayer(),
		timeline:     t,
	}
}

func (tr *Track) info() TrackInfo {
	return TrackInfo{
		ID:           tr.id,
		Name:         tr.name,
		Audio:        tr.audio,
		Locked:       tr.locked,
		Muted:        tr.muted,
		Clips:        tr.clips.starts.Size(),
		Compositions: tr.compositions.starts.Size(),
	}
}

func (tr *Track) layer(isClip bool) *layer {
	if isClip {
		return &tr.clips
	}

	return &tr.compositions
}

// row is the view row of an item: clips by id, then compositions by id.
// For an item not on the track it is the row the item would get.
func (tr *Track) row(id int, isClip bool) int {
	if isClip {
		return tr.clips.countBelow(id)
	}

	return tr.clips.ids.Size() + tr.compositions.countBelow(id)
}

// isEmpty reports whether the track holds no item.
func (tr *Track) isEmpty() bool {
	return tr.clips.starts.Empty() && tr.compositions.starts.Empty()
}

// allowPlacement reports whether [pos, pos+length) is blank on the layer.
func (tr *Track) allowPlacement(pos, length int, isClip bool) bool {
	return tr.allowPlacementIgnoring(pos, length, isClip, nil)
}

// allowPlacementIgnoring is allowPlacement with the items in skip treated as blank.
func (tr *Track) allowPlacementIgnoring(pos, length int, isClip bool, skip map[int]bool) bool {
	if pos < 0 || length <= 0 {
		return false
	}

	l := tr.layer(isClip)

	from := pos
	if k, _ := l.starts.Floor(pos); k != nil {
		from = k.(int)
	}

	for k, v := l.starts.Ceiling(from); k != nil && k.(int) < pos+length; k, v = l.starts.Ceiling(k.(int) + 1) {
		id := v.(int)
		if skip[id] {
			continue
		}

		if s := tr.timeline.spanOf(id, isClip); s != nil && s.end() > pos {
			return false
		}
	}

	return true
}

// accepts reports whether the item kind matches the track, audio on audio tracks only.
func (tr *Track) accepts(id int, isClip bool) bool {
	t := tr.timeline

	if isClip {
		c, ok := t.clips[id]
		return ok && c.audio == tr.audio
	}

	c, ok := t.compositions[id]
	if !ok {
		return false
	}

	info, known := t.transitions.Get(c.serviceID)

	return !known || info.Audio == tr.audio
}

// allowResize reports whether the placed item id can span [newPos, newEnd)
// without reaching its left or right neighbour.
func (tr *Track) allowResize(id int, isClip bool, newPos, newEnd int) bool {
	s := tr.timeline.spanOf(id, isClip)
	if s == nil || s.trackID != tr.id || newPos < 0 || newEnd <= newPos {
		return false
	}

	l := tr.layer(isClip)

	if _, v := l.starts.Floor(s.position - 1); v != nil {
		if prev := tr.timeline.spanOf(v.(int), isClip); prev != nil && prev.end() > newPos {
			return false
		}
	}

	if k, _ := l.starts.Ceiling(s.position + 1); k != nil && k.(int) < newEnd {
		return false
	}

	return true
}

// blankAt reports whether no clip covers frame pos.
func (tr *Track) blankAt(pos int) bool {
	_, v := tr.clips.starts.Floor(pos)
	if v == nil {
		return true
	}

	s := tr.timeline.spanOf(v.(int), true)

	return s == nil || s.end() <= pos
}

// clipAt returns the clip covering frame pos.
func (tr *Track) clipAt(pos int) (int, bool) {
	if tr.blankAt(pos) {
		return NoID, false
	}

	_, v := tr.clips.starts.Floor(pos)

	return v.(int), true
}

func (tr *Track) placeOp(id int, isClip bool, pos int) undo.Fun {
	t := tr.timeline

	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		s := t.spanOf(id, isClip)
		if s == nil || s.trackID != NoID {
			return false
		}

		l := tr.layer(isClip)
		l.starts.Put(pos, id)
		l.ids.Add(id)

		s.trackID = tr.id
		s.position = pos
		t.snaps.Add(s.position, s.end())

		return true
	}
}

func (tr *Track) unplaceOp(id int, isClip bool) undo.Fun {
	t := tr.timeline

	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		s := t.spanOf(id, isClip)
		if s == nil || s.trackID != tr.id {
			return false
		}

		l := tr.layer(isClip)
		l.starts.Remove(s.position)
		l.ids.Remove(id)

		t.snaps.Remove(s.position, s.end())
		s.trackID = NoID
		s.position = NoID

		return true
	}
}

func (tr *Track) resizeOp(id int, isClip bool, pos, in, out int) undo.Fun {
	t := tr.timeline

	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		s := t.spanOf(id, isClip)
		if s == nil || s.trackID != tr.id {
			return false
		}

		l := tr.layer(isClip)
		l.starts.Remove(s.position)
		t.snaps.Remove(s.position, s.end())

		s.position, s.in, s.out = pos, in, out

		l.starts.Put(s.position, id)
		t.snaps.Add(s.position, s.end())

		return true
	}
}

// requestItemInsertion places an unplaced item at pos.
func (tr *Track) requestItemInsertion(id int, isClip bool, pos int, tx *txn) bool {
	t := tr.timeline

	s := t.spanOf(id, isClip)
	if s == nil || s.trackID != NoID || tr.locked {
		return false
	}

	if !tr.accepts(id, isClip) {
		return false
	}

	if !tr.allowPlacement(pos, s.playtime(), isClip) {
		return false
	}

	if !tx.apply(tr.placeOp(id, isClip, pos), tr.unplaceOp(id, isClip)) {
		return false
	}

	tx.record(update.NewInsert(id, t, tr.id, pos, isClip))

	return true
}

// requestItemDeletion removes an item from the track, leaving it registered.
func (tr *Track) requestItemDeletion(id int, isClip bool, tx *txn) bool {
	t := tr.timeline

	s := t.spanOf(id, isClip)
	if s == nil || s.trackID != tr.id || tr.locked {
		return false
	}

	pos := s.position
	if !tx.apply(tr.unplaceOp(id, isClip), tr.placeOp(id, isClip, pos)) {
		return false
	}

	tx.record(update.NewDelete(id, t, tr.id, pos, isClip))

	return true
}

// requestItemResize changes the placed item's position and bounds in one step.
func (tr *Track) requestItemResize(id int, isClip bool, newPos, newIn, newOut int, tx *txn) bool {
	if tr.locked {
		return false
	}

	s := tr.timeline.spanOf(id, isClip)
	if s == nil || !tr.allowResize(id, isClip, newPos, newPos+newOut-newIn+1) {
		return false
	}

	return tx.apply(
		tr.resizeOp(id, isClip, newPos, newIn, newOut),
		tr.resizeOp(id, isClip, s.position, s.in, s.out),
	)
}

// requestClipMove moves a clip to newPos on this track.
func (tr *Track) requestClipMove(clipID, newPos int, tx *txn) bool {
	return tx.attempt(func(sub *txn) bool {
		return tr.requestItemDeletion(clipID, true, sub) &&
			tr.requestItemInsertion(clipID, true, newPos, sub)
	})
}

// requestClipResize resizes a clip of this track to newSize frames.
func (tr *Track) requestClipResize(clipID, newSize int, right bool, tx *txn) bool {
	c, ok := tr.timeline.clips[clipID]
	if !ok || c.trackID != tr.id {
		return false
	}

	return tx.attempt(func(sub *txn) bool {
		return c.requestResize(newSize, right, sub)
	})
}

// splitClip cuts clipID at position: the clip keeps the left part and a new clip,
// referencing the same source, covers the right part. Returns the new clip id.
func (tr *Track) splitClip(clipID, position int, tx *txn) (int, bool) {
	t := tr.timeline

	c, ok := t.clips[clipID]
	if !ok || c.trackID != tr.id || tr.locked {
		return NoID, false
	}

	if position <= c.position || position >= c.end() {
		return NoID, false
	}

	newID := NoID
	ok = tx.attempt(func(sub *txn) bool {
		offset := position - c.position

		spec := ClipSpec{
			BinID:       c.binID,
			Name:        c.name,
			In:          c.in + offset,
			Out:         c.out,
			MaxDuration: c.maxDuration,
			Audio:       c.audio,
		}

		id, created := t.constructClip(spec, sub)
		if !created {
			return false
		}

		newID = id

		if c.disabled && !sub.apply(t.setClipStateOp(id, c.name, true), t.setClipStateOp(id, c.name, false)) {
			return false
		}

		return c.requestResize(offset, true, sub) &&
			tr.requestItemInsertion(newID, true, position, sub)
	})

	return newID, ok
}

// setPropertiesOp writes the track's user properties.
func (tr *Track) setPropertiesOp(name string, locked, muted bool) undo.Fun {
	t := tr.timeline

	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		tr.name = name
		tr.locked = locked
		tr.muted = muted

		return true
	}
}
