// ABOUTME: Timeline aggregate owning tracks, clips, compositions, groups and the snap index
// ABOUTME: Read accessors take the read lock, mutations only lock inside their primitive operations

// Package timeline is the editing model of a multi-track video timeline.
//
// Every public Request* call validates, mutates through reversible primitive
// operations, then registers the resulting undo/redo pair with the bound undo
// stack. A failed request rolls back whatever it already applied and reports
// false, leaving the model untouched.
//
// Mutating requests are expected on one goroutine. Readers on other goroutines
// may call the accessors concurrently.
package timeline

import (
	"fmt"
	"slices"
	"sync"
	"weak"

	"cutline/undo"
	"cutline/update"
)

// Logger receives debug traces of rejected requests and import problems.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Option configures a Timeline.
type Option func(*Timeline)

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(t *Timeline) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithView sets the notification adapter.
func WithView(v update.View) Option {
	return func(t *Timeline) { t.view = v }
}

// WithTransitions sets the accepted composition services.
func WithTransitions(r *TransitionRepository) Option {
	return func(t *Timeline) {
		if r != nil {
			t.transitions = r
		}
	}
}

// Timeline is the root aggregate of the editing model.
type Timeline struct {
	mu sync.RWMutex

	ids          *IDs
	trackOrder   []int // Bottom to top
	tracks       map[int]*Track
	clips        map[int]*Clip
	compositions map[int]*Composition
	groups       *groupForest
	snaps        *SnapIndex
	transitions  *TransitionRepository

	undoStack weak.Pointer[undo.Stack]
	view      update.View
	logger    Logger
}

// New creates an empty timeline drawing ids from ids, a fresh arena when nil.
func New(ids *IDs, opts ...Option) *Timeline {
	if ids == nil {
		ids = NewIDs()
	}

	t := &Timeline{
		ids:          ids,
		tracks:       make(map[int]*Track),
		clips:        make(map[int]*Clip),
		compositions: make(map[int]*Composition),
		groups:       newGroupForest(),
		snaps:        NewSnapIndex(),
		transitions:  NewTransitionRepository(),
		logger:       nopLogger{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// IDs returns the arena the timeline draws ids from.
func (t *Timeline) IDs() *IDs { return t.ids }

// Transitions returns the accepted composition services.
func (t *Timeline) Transitions() *TransitionRepository { return t.transitions }

// SetUndoStack binds the stack finished requests are pushed to. The timeline
// does not keep the stack alive.
func (t *Timeline) SetUndoStack(s *undo.Stack) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s == nil {
		t.undoStack = weak.Pointer[undo.Stack]{}
		return
	}
	t.undoStack = weak.Make(s)
}

// UndoStack returns the bound stack, nil when unbound or collected.
func (t *Timeline) UndoStack() *undo.Stack {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.undoStack.Value()
}

// SetView replaces the notification adapter.
func (t *Timeline) SetView(v update.View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.view = v
}

// View implements update.Target.
func (t *Timeline) View() update.View {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.view == nil {
		return update.NopView{}
	}

	return t.view
}

// TrackIndex implements update.Target.
func (t *Timeline) TrackIndex(trackID int) update.Index {
	return update.Index{Track: trackID, Item: update.NoID}
}

// ItemIndex implements update.Target.
func (t *Timeline) ItemIndex(itemID int) update.Index {
	t.mu.RLock()
	defer t.mu.RUnlock()

	trackID := NoID
	if s := t.spanOf(itemID, t.clips[itemID] != nil); s != nil {
		trackID = s.trackID
	}

	return update.Index{Track: trackID, Item: itemID}
}

// ItemRow implements update.Target.
func (t *Timeline) ItemRow(trackID, itemID int, isClip bool) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, ok := t.tracks[trackID]
	if !ok {
		return 0
	}

	return tr.row(itemID, isClip)
}

// TrackRow returns the row of trackID below the root, -1 when unknown.
func (t *Timeline) TrackRow(trackID int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.trackIndex(trackID)
}

func (t *Timeline) trackIndex(trackID int) int {
	return slices.Index(t.trackOrder, trackID)
}

func (t *Timeline) spanOf(id int, isClip bool) *span {
	if isClip {
		if c, ok := t.clips[id]; ok {
			return &c.span
		}

		return nil
	}

	if c, ok := t.compositions[id]; ok {
		return &c.span
	}

	return nil
}

func (t *Timeline) isItem(id int) bool {
	_, clip := t.clips[id]
	_, comp := t.compositions[id]

	return clip || comp
}

func (t *Timeline) setBoundsOp(id int, isClip bool, in, out int) undo.Fun {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		s := t.spanOf(id, isClip)
		if s == nil || s.trackID != NoID {
			return false
		}

		s.in, s.out = in, out

		return true
	}
}

// flush registers the updates recorded so far: the transaction is replayed
// once with view notifications around it.
func (tx *txn) flush() bool {
	if len(tx.updates) == 0 {
		return true
	}

	ok := update.Apply(&tx.undo, &tx.redo, tx.updates)
	tx.updates = nil

	return ok
}

// commit runs fn as one all-or-nothing request and pushes it to the undo stack.
func (t *Timeline) commit(label string, logUndo bool, fn func(tx *txn) bool) bool {
	tx := newTxn()

	if !fn(tx) {
		if !tx.rollback() {
			t.logger.Debugf("timeline: rollback of %q failed", label)
		}
		t.logger.Debugf("timeline: %s rejected", label)

		return false
	}

	if !tx.flush() {
		t.logger.Debugf("timeline: %s failed to replay", label)
		return false
	}

	if logUndo {
		if s := t.UndoStack(); s != nil {
			s.Push(tx.undo, tx.redo, label)
		}
	}

	return true
}

// IsClip reports whether id is a registered clip.
func (t *Timeline) IsClip(id int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.clips[id]
	return ok
}

// IsComposition reports whether id is a registered composition.
func (t *Timeline) IsComposition(id int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.compositions[id]
	return ok
}

// IsTrack reports whether id is a track of this timeline.
func (t *Timeline) IsTrack(id int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.tracks[id]
	return ok
}

// Clip returns a copy of the clip state.
func (t *Timeline) Clip(id int) (ClipInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.clips[id]
	if !ok {
		return ClipInfo{}, false
	}

	return c.info(), true
}

// Composition returns a copy of the composition state.
func (t *Timeline) Composition(id int) (CompositionInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.compositions[id]
	if !ok {
		return CompositionInfo{}, false
	}

	return t.compositionInfo(c), true
}

// Track returns a copy of the track properties.
func (t *Timeline) Track(id int) (TrackInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, ok := t.tracks[id]
	if !ok {
		return TrackInfo{}, false
	}

	return tr.info(), true
}

// TrackIDs returns the track ids from bottom to top.
func (t *Timeline) TrackIDs() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.trackOrder)
}

// TrackClips returns the clips of a track ordered by position.
func (t *Timeline) TrackClips(trackID int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, ok := t.tracks[trackID]
	if !ok {
		return nil
	}

	return tr.clips.ordered()
}

// TrackCompositions returns the compositions of a track ordered by position.
func (t *Timeline) TrackCompositions(trackID int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, ok := t.tracks[trackID]
	if !ok {
		return nil
	}

	return tr.compositions.ordered()
}

// ClipAt returns the clip covering frame pos on a track.
func (t *Timeline) ClipAt(trackID, pos int) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, ok := t.tracks[trackID]
	if !ok {
		return NoID, false
	}

	return tr.clipAt(pos)
}

// ClipIDs returns every registered clip id, placed or not, ascending.
func (t *Timeline) ClipIDs() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int, 0, len(t.clips))
	for id := range t.clips {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// CompositionIDs returns every registered composition id ascending.
func (t *Timeline) CompositionIDs() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int, 0, len(t.compositions))
	for id := range t.compositions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Duration is the first frame after the last placed item.
func (t *Timeline) Duration() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	end := 0
	for _, c := range t.clips {
		if c.trackID != NoID {
			end = max(end, c.end())
		}
	}
	for _, c := range t.compositions {
		if c.trackID != NoID {
			end = max(end, c.end())
		}
	}

	return end
}

// CheckConsistency verifies the structural invariants of the model.
func (t *Timeline) CheckConsistency() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.trackOrder) != len(t.tracks) {
		return fmt.Errorf("track order lists %d tracks, %d registered", len(t.trackOrder), len(t.tracks))
	}

	seen := make(map[int]bool)
	for _, id := range t.trackOrder {
		if t.isItem(id) {
			return fmt.Errorf("track id %d reused by an item", id)
		}

		tr, ok := t.tracks[id]
		if !ok {
			return fmt.Errorf("track %d is ordered but not registered", id)
		}

		for _, isClip := range []bool{true, false} {
			if err := t.checkLayer(tr, isClip, seen); err != nil {
				return err
			}
		}
	}

	for id, c := range t.clips {
		if c.trackID != NoID && !seen[id] {
			return fmt.Errorf("clip %d claims track %d but is not on it", id, c.trackID)
		}
		if c.out < c.in {
			return fmt.Errorf("clip %d has out %d before in %d", id, c.out, c.in)
		}
	}

	for id, c := range t.compositions {
		if c.trackID != NoID && !seen[id] {
			return fmt.Errorf("composition %d claims track %d but is not on it", id, c.trackID)
		}
	}

	for id, parent := range t.groups.upLink {
		if !t.groups.isGroup(parent) {
			return fmt.Errorf("item %d points to unknown group %d", id, parent)
		}
		if !t.isItem(id) && !t.groups.isGroup(id) {
			return fmt.Errorf("group forest references unknown id %d", id)
		}
	}

	return nil
}

func (t *Timeline) checkLayer(tr *Track, isClip bool, seen map[int]bool) error {
	l := tr.layer(isClip)
	prevEnd := 0

	for _, id := range l.ordered() {
		s := t.spanOf(id, isClip)
		if s == nil {
			return fmt.Errorf("track %d holds unregistered item %d", tr.id, id)
		}
		if s.trackID != tr.id {
			return fmt.Errorf("item %d on track %d claims track %d", id, tr.id, s.trackID)
		}
		if s.position < prevEnd {
			return fmt.Errorf("item %d at %d overlaps the previous item ending at %d on track %d", id, s.position, prevEnd, tr.id)
		}
		if seen[id] {
			return fmt.Errorf("item %d placed twice", id)
		}

		seen[id] = true
		prevEnd = s.end()
	}

	if l.ids.Size() != l.starts.Size() {
		return fmt.Errorf("track %d row index out of sync", tr.id)
	}

	return nil
}
