// ABOUTME: Multiset of snap positions (item edges, guides, playhead) with nearest/next/previous queries
// ABOUTME: Drag operations pass the dragged items' own edges as an ignore list

package timeline

import "github.com/emirpasic/gods/maps/treemap"

// SnapIndex counts how many edges sit on each frame. Not safe for concurrent use,
// the timeline guards it with its own lock.
type SnapIndex struct {
	points *treemap.Map // position -> count
}

// NewSnapIndex returns an empty index.
func NewSnapIndex() *SnapIndex {
	return &SnapIndex{points: treemap.NewWithIntComparator()}
}

// Add registers each position once more.
func (s *SnapIndex) Add(positions ...int) {
	for _, pos := range positions {
		n := 0
		if v, found := s.points.Get(pos); found {
			n = v.(int)
		}
		s.points.Put(pos, n+1)
	}
}

// Remove drops one registration of each position.
func (s *SnapIndex) Remove(positions ...int) {
	for _, pos := range positions {
		v, found := s.points.Get(pos)
		if !found {
			continue
		}

		if n := v.(int); n > 1 {
			s.points.Put(pos, n-1)
		} else {
			s.points.Remove(pos)
		}
	}
}

// Count returns how many times pos is registered.
func (s *SnapIndex) Count(pos int) int {
	if v, found := s.points.Get(pos); found {
		return v.(int)
	}

	return 0
}

// Points lists the registered positions in ascending order.
func (s *SnapIndex) Points() []int {
	res := make([]int, 0, s.points.Size())
	for _, k := range s.points.Keys() {
		res = append(res, k.(int))
	}

	return res
}

func (s *SnapIndex) usable(pos int, ignore map[int]int) bool {
	return s.Count(pos) > ignore[pos]
}

// floor returns the greatest usable point <= pos.
func (s *SnapIndex) floor(pos int, ignore map[int]int) (int, bool) {
	for {
		k, _ := s.points.Floor(pos)
		if k == nil {
			return 0, false
		}

		p := k.(int)
		if s.usable(p, ignore) {
			return p, true
		}
		pos = p - 1
	}
}

// ceiling returns the smallest usable point >= pos.
func (s *SnapIndex) ceiling(pos int, ignore map[int]int) (int, bool) {
	for {
		k, _ := s.points.Ceiling(pos)
		if k == nil {
			return 0, false
		}

		p := k.(int)
		if s.usable(p, ignore) {
			return p, true
		}
		pos = p + 1
	}
}

// Closest returns the usable point nearest to pos, preferring the earlier one on ties.
// ignore maps a position to the number of its registrations to disregard.
func (s *SnapIndex) Closest(pos int, ignore map[int]int) (int, bool) {
	before, okBefore := s.floor(pos, ignore)
	after, okAfter := s.ceiling(pos, ignore)

	switch {
	case okBefore && okAfter:
		if after-pos < pos-before {
			return after, true
		}

		return before, true
	case okBefore:
		return before, true
	case okAfter:
		return after, true
	}

	return 0, false
}

// Next returns the first point strictly after pos.
func (s *SnapIndex) Next(pos int) (int, bool) {
	return s.ceiling(pos+1, nil)
}

// Previous returns the last point strictly before pos.
func (s *SnapIndex) Previous(pos int) (int, bool) {
	return s.floor(pos-1, nil)
}

// AddSnapPoint registers an extra snap position such as a guide or the playhead.
func (t *Timeline) AddSnapPoint(pos int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snaps.Add(pos)
}

// RemoveSnapPoint drops a position added with AddSnapPoint.
func (t *Timeline) RemoveSnapPoint(pos int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snaps.Remove(pos)
}

// SnapPoints lists the registered snap positions.
func (t *Timeline) SnapPoints() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.snaps.Points()
}

// RequestBestSnapPos snaps an item of length frames dragged to pos: whichever of its
// two edges lands closest to a snap point within distance wins. The positions in
// ignore, usually the dragged item's own edges, are not snap targets. pos is
// returned unchanged when nothing is close enough.
func (t *Timeline) RequestBestSnapPos(pos, length int, ignore []int, distance int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.bestSnapPos(pos, length, ignore, distance)
}

func (t *Timeline) bestSnapPos(pos, length int, ignore []int, distance int) int {
	skip := make(map[int]int, len(ignore))
	for _, p := range ignore {
		skip[p]++
	}

	best, bestDist := pos, distance+1

	if p, ok := t.snaps.Closest(pos, skip); ok {
		if d := abs(p - pos); d < bestDist {
			best, bestDist = p, d
		}
	}

	if length > 0 {
		if p, ok := t.snaps.Closest(pos+length, skip); ok {
			if d := abs(p - pos - length); d < bestDist {
				best = p - length
			}
		}
	}

	return best
}

// RequestNextSnapPos returns the first snap point after pos, pos when there is none.
func (t *Timeline) RequestNextSnapPos(pos int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if p, ok := t.snaps.Next(pos); ok {
		return p
	}

	return pos
}

// RequestPreviousSnapPos returns the last snap point before pos, pos when there is none.
func (t *Timeline) RequestPreviousSnapPos(pos int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if p, ok := t.snaps.Previous(pos); ok {
		return p
	}

	return pos
}

// SuggestClipMove returns where a clip dragged to pos on trackID should land:
// the snapped position if the move is legal there, else pos if legal, else the
// clip's current position. It only reads the model.
func (t *Timeline) SuggestClipMove(clipID, trackID, pos, distance int) int {
	return t.suggestMove(clipID, true, trackID, pos, distance)
}

// SuggestCompositionMove is SuggestClipMove for compositions.
func (t *Timeline) SuggestCompositionMove(id, trackID, pos, distance int) int {
	return t.suggestMove(id, false, trackID, pos, distance)
}

func (t *Timeline) suggestMove(id int, isClip bool, trackID, pos, distance int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.spanOf(id, isClip)
	if s == nil {
		return pos
	}

	current := s.position

	var ignore []int
	for _, leaf := range t.groups.leaves(t.groups.root(id)) {
		if ls := t.spanOf(leaf, t.clips[leaf] != nil); ls != nil && ls.trackID != NoID {
			ignore = append(ignore, ls.position, ls.end())
		}
	}

	snapped := t.bestSnapPos(pos, s.playtime(), ignore, distance)

	for _, candidate := range []int{snapped, pos} {
		if t.moveAllowed(id, isClip, trackID, candidate) {
			return candidate
		}
	}

	return current
}

// moveAllowed reports whether moving id to pos on trackID would succeed, with
// its group if any, checking the same rules as the move requests.
func (t *Timeline) moveAllowed(id int, isClip bool, trackID, pos int) bool {
	s := t.spanOf(id, isClip)
	dst, ok := t.tracks[trackID]
	if s == nil || !ok {
		return false
	}

	if s.trackID == NoID || !t.groups.isGroup(t.groups.root(id)) {
		return t.placementAllowed(id, isClip, dst, pos, map[int]bool{id: true})
	}

	trackDelta := t.trackIndex(trackID) - t.trackIndex(s.trackID)
	posDelta := pos - s.position

	if trackDelta == 0 && posDelta == 0 {
		return true
	}

	leaves := t.groups.leaves(t.groups.root(id))

	moving := make(map[int]bool, len(leaves))
	for _, leaf := range leaves {
		moving[leaf] = true
	}

	for _, leaf := range leaves {
		leafClip := t.clips[leaf] != nil
		ls := t.spanOf(leaf, leafClip)
		if ls == nil || ls.trackID == NoID {
			return false
		}

		row := t.trackIndex(ls.trackID) + trackDelta
		if row < 0 || row >= len(t.trackOrder) {
			return false
		}

		if !t.placementAllowed(leaf, leafClip, t.tracks[t.trackOrder[row]], ls.position+posDelta, moving) {
			return false
		}
	}

	return true
}

// placementAllowed checks one item leaving its track for pos on dst, items in
// moving being out of the way.
func (t *Timeline) placementAllowed(id int, isClip bool, dst *Track, pos int, moving map[int]bool) bool {
	s := t.spanOf(id, isClip)
	if s == nil || dst.locked || t.lockedItem(s) || !dst.accepts(id, isClip) {
		return false
	}

	return dst.allowPlacementIgnoring(pos, s.playtime(), isClip, moving)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
