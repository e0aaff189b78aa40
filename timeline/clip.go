// ABOUTME: Clip placement (track, position, in/out trim) and its resize validation
// ABOUTME: Resizes check source head/tail room here and sibling room on the owning track

package timeline

import (
	"cutline/undo"
	"cutline/update"
)

// span is the placement shared by clips and compositions.
type span struct {
	trackID  int
	position int
	in       int
	out      int
}

// playtime is the number of frames the item covers: out - in + 1.
func (s *span) playtime() int {
	return s.out - s.in + 1
}

func (s *span) end() int {
	return s.position + s.playtime()
}

// ClipSpec describes the source segment a new clip references.
type ClipSpec struct {
	BinID       string
	Name        string
	In          int
	Out         int
	MaxDuration int // Source length in frames, 0 for unbounded sources (color, title, image)
	Audio       bool
}

// Clip is a placed reference to a source media segment.
type Clip struct {
	span

	id          int
	binID       string
	name        string
	maxDuration int
	audio       bool
	disabled    bool

	timeline *Timeline // Owner lookup only
}

// ClipInfo is a read-only copy of a clip's state.
type ClipInfo struct {
	ID          int
	BinID       string
	Name        string
	TrackID     int
	Position    int
	In          int
	Out         int
	MaxDuration int
	Audio       bool
	Disabled    bool
}

// PlayTime is the clip duration in frames.
func (c ClipInfo) PlayTime() int { return c.Out - c.In + 1 }

// End is the first frame after the clip.
func (c ClipInfo) End() int { return c.Position + c.PlayTime() }

func (c *Clip) info() ClipInfo {
	return ClipInfo{
		ID:          c.id,
		BinID:       c.binID,
		Name:        c.name,
		TrackID:     c.trackID,
		Position:    c.position,
		In:          c.in,
		Out:         c.out,
		MaxDuration: c.maxDuration,
		Audio:       c.audio,
		Disabled:    c.disabled,
	}
}

// constructClip allocates a clip and registers it with the timeline inside tx.
// The clip is not placed on any track.
func (t *Timeline) constructClip(spec ClipSpec, tx *txn) (int, bool) {
	if spec.In < 0 || spec.Out < spec.In {
		return NoID, false
	}

	if spec.MaxDuration > 0 && spec.Out >= spec.MaxDuration {
		return NoID, false
	}

	c := &Clip{
		span:        span{trackID: NoID, position: NoID, in: spec.In, out: spec.Out},
		id:          t.ids.Next(),
		binID:       spec.BinID,
		name:        spec.Name,
		maxDuration: spec.MaxDuration,
		audio:       spec.Audio,
		timeline:    t,
	}

	if !tx.apply(t.registerClipOp(c), t.deregisterClipOp(c.id)) {
		return NoID, false
	}

	return c.id, true
}

// requestResize changes the clip duration to size by dragging its right or left edge.
// The in/out points move inside the source, so growing needs source room on that side.
func (c *Clip) requestResize(size int, right bool, tx *txn) bool {
	if size <= 0 {
		return false
	}

	oldIn, oldOut := c.in, c.out
	delta := c.playtime() - size
	newIn, newOut := oldIn, oldOut

	roles := update.RoleDuration
	if right {
		newOut = oldOut - delta
		roles |= update.RoleOutPoint
	} else {
		newIn = oldIn + delta
		roles |= update.RoleInPoint | update.RoleStart
	}

	if newIn < 0 {
		return false
	}

	if c.maxDuration > 0 && newOut >= c.maxDuration {
		return false
	}

	if delta == 0 {
		return true
	}

	t := c.timeline

	if c.trackID == NoID {
		op := t.setBoundsOp(c.id, true, newIn, newOut)
		rev := t.setBoundsOp(c.id, true, oldIn, oldOut)

		return tx.apply(op, rev)
	}

	newPos := c.position
	if !right {
		newPos += delta
	}

	track := t.tracks[c.trackID]
	if track == nil || !track.requestItemResize(c.id, true, newPos, newIn, newOut, tx) {
		return false
	}

	tx.record(update.NewChange(c.id, t, roles))

	return true
}

// setClipStateOp writes the clip's name and disabled flag.
func (t *Timeline) setClipStateOp(id int, name string, disabled bool) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		c, ok := t.clips[id]
		if !ok {
			return false
		}

		c.name = name
		c.disabled = disabled

		return true
	}
}

func (t *Timeline) registerClipOp(c *Clip) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		if _, exists := t.clips[c.id]; exists {
			return false
		}

		t.clips[c.id] = c

		return true
	}
}

func (t *Timeline) deregisterClipOp(id int) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		c, ok := t.clips[id]
		if !ok || c.trackID != NoID {
			return false
		}

		delete(t.clips, id)

		return true
	}
}
