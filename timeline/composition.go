// ABOUTME: Composition placement spanning a B track (its own) and an A track below it
// ABOUTME: Tracks service parameters and re-evaluates A/B validity whenever it is re-parented

package timeline

import (
	"maps"

	"cutline/undo"
	"cutline/update"
)

// Composition blends its own track (B) over an A track below it.
type Composition struct {
	span

	id        int
	serviceID string
	aTrack    int // Forced A track id, NoID picks the track right below
	params    map[string]string

	timeline *Timeline // Owner lookup only
}

// CompositionInfo is a read-only copy of a composition's state.
type CompositionInfo struct {
	ID           int
	ServiceID    string
	TrackID      int
	Position     int
	In           int
	Out          int
	// ForcedATrack is the explicitly chosen A track, NoID when automatic.
	ForcedATrack int
	// ATrack is the resolved A track, NoID for the background.
	ATrack       int
	Params       map[string]string
	Valid        bool
}

// PlayTime is the composition duration in frames.
func (c CompositionInfo) PlayTime() int { return c.Out - c.In + 1 }

// End is the first frame after the composition.
func (c CompositionInfo) End() int { return c.Position + c.PlayTime() }

func (t *Timeline) compositionInfo(c *Composition) CompositionInfo {
	return CompositionInfo{
		ID:           c.id,
		ServiceID:    c.serviceID,
		TrackID:      c.trackID,
		Position:     c.position,
		In:           c.in,
		Out:          c.out,
		ForcedATrack: c.aTrack,
		ATrack:       t.resolveATrack(c),
		Params:       maps.Clone(c.params),
		Valid:        t.compositionValid(c),
	}
}

// resolveATrack returns the track the composition blends onto, NoID for the background.
func (t *Timeline) resolveATrack(c *Composition) int {
	if c.aTrack != NoID {
		return c.aTrack
	}

	idx := t.trackIndex(c.trackID)
	if idx <= 0 {
		return NoID
	}

	return t.trackOrder[idx-1]
}

// compositionValid reports whether a forced A track still sits below the composition.
func (t *Timeline) compositionValid(c *Composition) bool {
	if c.aTrack == NoID || c.trackID == NoID {
		return true
	}

	a := t.trackIndex(c.aTrack)
	b := t.trackIndex(c.trackID)

	return a >= 0 && b >= 0 && a < b
}

func (t *Timeline) constructComposition(serviceID string, length int, params map[string]string, tx *txn) (int, bool) {
	if length <= 0 || !t.transitions.Exists(serviceID) {
		return NoID, false
	}

	c := &Composition{
		span:      span{trackID: NoID, position: NoID, in: 0, out: length - 1},
		id:        t.ids.Next(),
		serviceID: serviceID,
		aTrack:    NoID,
		params:    maps.Clone(params),
		timeline:  t,
	}

	if c.params == nil {
		c.params = make(map[string]string)
	}

	if !tx.apply(t.registerCompositionOp(c), t.deregisterCompositionOp(c.id)) {
		return NoID, false
	}

	return c.id, true
}

// requestResize changes the composition length. Compositions have no source media,
// only the neighbours on the track bound them.
func (c *Composition) requestResize(size int, right bool, tx *txn) bool {
	if size <= 0 {
		return false
	}

	delta := c.playtime() - size
	if delta == 0 {
		return true
	}

	t := c.timeline
	newOut := c.in + size - 1

	if c.trackID == NoID {
		return tx.apply(t.setBoundsOp(c.id, false, c.in, newOut), t.setBoundsOp(c.id, false, c.in, c.out))
	}

	newPos := c.position
	roles := update.RoleDuration
	if !right {
		newPos += delta
		roles |= update.RoleStart
	}

	track := t.tracks[c.trackID]
	if track == nil || !track.requestItemResize(c.id, false, newPos, c.in, newOut, tx) {
		return false
	}

	tx.record(update.NewChange(c.id, t, roles))

	return true
}

func (t *Timeline) setParamOp(id int, key, value string, present bool) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		c, ok := t.compositions[id]
		if !ok {
			return false
		}

		if present {
			c.params[key] = value
		} else {
			delete(c.params, key)
		}

		return true
	}
}

func (t *Timeline) setATrackOp(id, aTrack int) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		c, ok := t.compositions[id]
		if !ok {
			return false
		}

		c.aTrack = aTrack

		return true
	}
}

func (t *Timeline) registerCompositionOp(c *Composition) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		if _, exists := t.compositions[c.id]; exists {
			return false
		}

		t.compositions[c.id] = c

		return true
	}
}

func (t *Timeline) deregisterCompositionOp(id int) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		c, ok := t.compositions[id]
		if !ok || c.trackID != NoID {
			return false
		}

		delete(t.compositions, id)

		return true
	}
}
