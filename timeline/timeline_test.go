// ABOUTME: Tests for timeline requests, undo/redo behavior and view notifications
// ABOUTME: Scenario tests for group moves, overlap rejection and track deletion

package timeline

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"cutline/undo"
	"cutline/update"
)

type recordingView struct {
	calls []string
}

func (v *recordingView) BeginInsertRows(p update.Index, first, last int) {
	v.calls = append(v.calls, fmt.Sprintf("beginInsert(%d,%d)", p.Track, first))
}

func (v *recordingView) EndInsertRows() { v.calls = append(v.calls, "endInsert") }

func (v *recordingView) BeginRemoveRows(p update.Index, first, last int) {
	v.calls = append(v.calls, fmt.Sprintf("beginRemove(%d,%d)", p.Track, first))
}

func (v *recordingView) EndRemoveRows() { v.calls = append(v.calls, "endRemove") }

func (v *recordingView) BeginMoveRows(src update.Index, first, last int, dst update.Index, row int) {
	v.calls = append(v.calls, fmt.Sprintf("beginMove(%d,%d->%d,%d)", src.Track, first, dst.Track, row))
}

func (v *recordingView) EndMoveRows() { v.calls = append(v.calls, "endMove") }

func (v *recordingView) NotifyChange(item update.Index, roles update.Roles) {
	v.calls = append(v.calls, fmt.Sprintf("change(%d,%s)", item.Item, roles))
}

func clipSpec(length int) ClipSpec {
	return ClipSpec{BinID: "bin", Name: "clip", In: 0, Out: length - 1, MaxDuration: 1000}
}

func newTestTimeline(t *testing.T, opts ...Option) (*Timeline, *undo.Stack, int) {
	t.Helper()

	tl := New(nil, opts...)
	stack := undo.NewStack(1000)
	tl.SetUndoStack(stack)

	track, ok := tl.RequestTrackInsertion(-1, false, "V1", true)
	if !ok {
		t.Fatal("track insertion should succeed")
	}

	return tl, stack, track
}

func mustInsertClip(t *testing.T, tl *Timeline, track, pos, length int) int {
	t.Helper()

	id, ok := tl.RequestClipInsertion(clipSpec(length), track, pos, true)
	if !ok {
		t.Fatalf("clip insertion at %d (length %d) should succeed", pos, length)
	}

	return id
}

func positionOf(t *testing.T, tl *Timeline, id int) int {
	t.Helper()

	info, ok := tl.Clip(id)
	if !ok {
		t.Fatalf("clip %d not found", id)
	}

	return info.Position
}

func checkConsistent(t *testing.T, tl *Timeline) {
	t.Helper()

	if err := tl.CheckConsistency(); err != nil {
		t.Fatalf("inconsistent timeline: %v", err)
	}
}

func TestGroupMove_ShiftsAllAndUndoes(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	ids := []int{
		mustInsertClip(t, tl, track, 0, 10),
		mustInsertClip(t, tl, track, 10, 10),
		mustInsertClip(t, tl, track, 20, 10),
	}

	if _, ok := tl.RequestClipsGroup(ids, true); !ok {
		t.Fatal("grouping should succeed")
	}

	if !tl.RequestGroupMove(ids[0], 0, 5, true) {
		t.Fatal("group move should succeed")
	}

	for i, want := range []int{5, 15, 25} {
		if got := positionOf(t, tl, ids[i]); got != want {
			t.Errorf("clip %d at %d after move, want %d", i, got, want)
		}
	}

	checkConsistent(t, tl)

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	for i, want := range []int{0, 10, 20} {
		if got := positionOf(t, tl, ids[i]); got != want {
			t.Errorf("clip %d at %d after undo, want %d", i, got, want)
		}
	}

	if !stack.Redo() {
		t.Fatal("redo should succeed")
	}

	if got := positionOf(t, tl, ids[2]); got != 25 {
		t.Errorf("last clip at %d after redo, want 25", got)
	}
}

func TestClipMove_GroupedClipDragsGroup(t *testing.T) {
	tl, _, track := newTestTimeline(t)

	a := mustInsertClip(t, tl, track, 0, 10)
	b := mustInsertClip(t, tl, track, 30, 10)

	if _, ok := tl.RequestClipsGroup([]int{a, b}, true); !ok {
		t.Fatal("grouping should succeed")
	}

	if !tl.RequestClipMove(b, track, 40, true) {
		t.Fatal("move should succeed")
	}

	if got := positionOf(t, tl, a); got != 10 {
		t.Errorf("grouped clip at %d, want 10", got)
	}

	if got := tl.GroupElements(a); !slices.Equal(got, []int{a, b}) {
		t.Errorf("GroupElements = %v, want %v", got, []int{a, b})
	}
}

func TestClipResize_RejectsOverlap(t *testing.T) {
	tl, _, track := newTestTimeline(t)

	x := mustInsertClip(t, tl, track, 0, 10)
	y := mustInsertClip(t, tl, track, 10, 10)

	if tl.RequestClipResize(x, 15, true, true) {
		t.Fatal("resize into the next clip should fail")
	}

	xi, _ := tl.Clip(x)
	yi, _ := tl.Clip(y)

	if xi.Position != 0 || xi.PlayTime() != 10 {
		t.Errorf("x changed to pos %d len %d", xi.Position, xi.PlayTime())
	}

	if yi.Position != 10 || yi.PlayTime() != 10 {
		t.Errorf("y changed to pos %d len %d", yi.Position, yi.PlayTime())
	}
}

func TestClipResize_Edges(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	x := mustInsertClip(t, tl, track, 0, 10)
	y := mustInsertClip(t, tl, track, 10, 10)

	if !tl.RequestClipResize(x, 5, true, true) {
		t.Fatal("shrinking the right edge should succeed")
	}

	if info, _ := tl.Clip(x); info.Out != 4 || info.Position != 0 {
		t.Errorf("x = pos %d out %d, want pos 0 out 4", info.Position, info.Out)
	}

	if !tl.RequestClipResize(y, 5, false, true) {
		t.Fatal("shrinking the left edge should succeed")
	}

	if info, _ := tl.Clip(y); info.Position != 15 || info.In != 5 {
		t.Errorf("y = pos %d in %d, want pos 15 in 5", info.Position, info.In)
	}

	// The source has no frame before in point 0
	if tl.RequestClipResize(x, 8, false, true) {
		t.Error("growing the left edge past the source start should fail")
	}

	if !stack.Undo() || !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if info, _ := tl.Clip(y); info.Position != 10 || info.In != 0 {
		t.Errorf("y after undo = pos %d in %d, want pos 10 in 0", info.Position, info.In)
	}

	checkConsistent(t, tl)
}

func TestTrackDeletion_CascadesAndUndoes(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	a := mustInsertClip(t, tl, track, 0, 10)
	b := mustInsertClip(t, tl, track, 20, 5)

	if !tl.RequestTrackDeletion(track, true) {
		t.Fatal("track deletion should succeed")
	}

	if tl.IsTrack(track) || tl.IsClip(a) || tl.IsClip(b) {
		t.Fatal("track and clips should be gone")
	}

	checkConsistent(t, tl)

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if !tl.IsTrack(track) {
		t.Fatal("track should be restored")
	}

	if got := positionOf(t, tl, a); got != 0 {
		t.Errorf("a restored at %d, want 0", got)
	}

	if got := positionOf(t, tl, b); got != 20 {
		t.Errorf("b restored at %d, want 20", got)
	}

	if got := tl.TrackClips(track); !slices.Equal(got, []int{a, b}) {
		t.Errorf("TrackClips = %v, want %v", got, []int{a, b})
	}

	checkConsistent(t, tl)

	if !stack.Redo() {
		t.Fatal("redo should succeed")
	}

	if tl.IsTrack(track) || tl.IsClip(a) {
		t.Error("redo should delete the track again")
	}
}

func TestTrackDeletion_DetachesGroupsOnOtherTracks(t *testing.T) {
	tl, stack, v1 := newTestTimeline(t)

	v2, _ := tl.RequestTrackInsertion(-1, false, "V2", true)
	a := mustInsertClip(t, tl, v1, 0, 10)
	b := mustInsertClip(t, tl, v2, 0, 10)

	if _, ok := tl.RequestClipsGroup([]int{a, b}, true); !ok {
		t.Fatal("grouping should succeed")
	}

	if !tl.RequestTrackDeletion(v1, true) {
		t.Fatal("track deletion should succeed")
	}

	if tl.IsGrouped(b) {
		t.Error("remaining clip should no longer be grouped")
	}

	checkConsistent(t, tl)

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if got := tl.GroupElements(b); !slices.Equal(got, []int{a, b}) {
		t.Errorf("GroupElements after undo = %v, want %v", got, []int{a, b})
	}
}

func TestLockedTrack_RejectsMutations(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	a := mustInsertClip(t, tl, track, 0, 10)

	if !tl.RequestTrackProperty(track, TrackProps{Name: "V1", Locked: true}, true) {
		t.Fatal("locking should succeed")
	}

	if tl.RequestClipMove(a, track, 20, true) {
		t.Error("move on a locked track should fail")
	}

	if tl.RequestItemDeletion(a, true) {
		t.Error("deletion on a locked track should fail")
	}

	if _, ok := tl.RequestClipInsertion(clipSpec(5), track, 30, true); ok {
		t.Error("insertion on a locked track should fail")
	}

	before := stack.UndoSize()

	if tl.RequestClipRename(a, "renamed", true) {
		t.Error("rename on a locked track should fail")
	}

	if tl.RequestClipDisable(a, true, true) {
		t.Error("disable on a locked track should fail")
	}

	if _, ok := tl.RequestClipCut(a, 5, true); ok {
		t.Error("cut on a locked track should fail")
	}

	if got := positionOf(t, tl, a); got != 0 {
		t.Errorf("clip moved to %d", got)
	}

	if info, _ := tl.Clip(a); info.Name != "clip" || info.Disabled {
		t.Errorf("clip state changed on a locked track: name %q disabled %t", info.Name, info.Disabled)
	}

	if stack.UndoSize() != before {
		t.Errorf("rejected requests pushed %d undo entries", stack.UndoSize()-before)
	}
}

func TestRequestsWithoutUndo_PushNothing(t *testing.T) {
	tl, stack, v1 := newTestTimeline(t)

	a := mustInsertClip(t, tl, v1, 0, 20)
	stack.Clear()

	v2, ok := tl.RequestTrackInsertion(-1, false, "V2", false)
	if !ok {
		t.Fatal("track insertion should succeed")
	}

	comp, ok := tl.RequestCompositionInsertion("luma", v2, 0, 10, nil, false)
	if !ok {
		t.Fatal("composition insertion should succeed")
	}

	b, ok := tl.RequestClipCut(a, 10, false)
	if !ok {
		t.Fatal("cut should succeed")
	}

	steps := []struct {
		name string
		do   func() bool
	}{
		{"rename", func() bool { return tl.RequestClipRename(a, "left", false) }},
		{"disable", func() bool { return tl.RequestClipDisable(b, true, false) }},
		{"param", func() bool { return tl.RequestCompositionParam(comp, "softness", "0.3", false) }},
		{"a track", func() bool { return tl.RequestCompositionATrack(comp, v1, false) }},
		{"track property", func() bool { return tl.RequestTrackProperty(v2, TrackProps{Name: "top", Muted: true}, false) }},
	}

	for _, step := range steps {
		if !step.do() {
			t.Errorf("%s should succeed", step.name)
		}
	}

	if stack.UndoSize() != 0 {
		t.Errorf("undo size = %d (top %q), want 0", stack.UndoSize(), stack.UndoLabel())
	}

	if info, _ := tl.Clip(a); info.Name != "left" {
		t.Errorf("rename was not applied, name = %q", info.Name)
	}
	if info, _ := tl.Clip(b); !info.Disabled {
		t.Error("disable was not applied")
	}
	if info, _ := tl.Composition(comp); info.Params["softness"] != "0.3" || info.ForcedATrack != v1 {
		t.Errorf("composition edits were not applied: %v forced %d", info.Params, info.ForcedATrack)
	}
	if info, _ := tl.Track(v2); info.Name != "top" || !info.Muted {
		t.Errorf("track edit was not applied: %+v", info)
	}

	if !tl.RequestTrackDeletion(v2, false) {
		t.Fatal("track deletion should succeed")
	}

	if stack.UndoSize() != 0 {
		t.Errorf("track deletion pushed an undo entry")
	}

	checkConsistent(t, tl)
}

func TestTrackStacking_RelinksCompositions(t *testing.T) {
	view := &recordingView{}
	tl, stack, v1 := newTestTimeline(t, WithView(view))

	v2, _ := tl.RequestTrackInsertion(-1, false, "V2", true)
	comp, ok := tl.RequestCompositionInsertion("luma", v2, 0, 10, nil, true)
	if !ok {
		t.Fatal("composition insertion should succeed")
	}

	relinked := fmt.Sprintf("change(%d,a_track)", comp)

	view.calls = nil
	middle, ok := tl.RequestTrackInsertion(1, false, "Vmid", true)
	if !ok {
		t.Fatal("track insertion should succeed")
	}

	if info, _ := tl.Composition(comp); info.ATrack != middle {
		t.Errorf("a track = %d, want the inserted track %d", info.ATrack, middle)
	}
	if !slices.Contains(view.calls, relinked) {
		t.Errorf("insertion below the composition should notify %s, calls = %v", relinked, view.calls)
	}

	view.calls = nil
	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if info, _ := tl.Composition(comp); info.ATrack != v1 {
		t.Errorf("undo: a track = %d, want %d", info.ATrack, v1)
	}
	if !slices.Contains(view.calls, relinked) {
		t.Errorf("undo should notify %s, calls = %v", relinked, view.calls)
	}

	if !stack.Redo() {
		t.Fatal("redo should succeed")
	}

	view.calls = nil
	if !tl.RequestTrackDeletion(middle, true) {
		t.Fatal("track deletion should succeed")
	}

	if info, _ := tl.Composition(comp); info.ATrack != v1 {
		t.Errorf("a track after deletion = %d, want %d", info.ATrack, v1)
	}
	if !slices.Contains(view.calls, relinked) {
		t.Errorf("deletion below the composition should notify %s, calls = %v", relinked, view.calls)
	}

	view.calls = nil
	if _, ok := tl.RequestTrackInsertion(-1, false, "V3", true); !ok {
		t.Fatal("track insertion should succeed")
	}
	if slices.Contains(view.calls, relinked) {
		t.Errorf("insertion above the composition should not relink it, calls = %v", view.calls)
	}

	checkConsistent(t, tl)
}

func TestClipMove_RejectsWrongTrackKind(t *testing.T) {
	tl, _, video := newTestTimeline(t)

	audio, _ := tl.RequestTrackInsertion(0, true, "A1", true)
	a := mustInsertClip(t, tl, video, 0, 10)

	if tl.RequestClipMove(a, audio, 0, true) {
		t.Error("video clip should not move to an audio track")
	}

	if ids := tl.TrackIDs(); !slices.Equal(ids, []int{audio, video}) {
		t.Errorf("TrackIDs = %v, want audio below video", ids)
	}
}

func TestClipCut_SplitsAndUndoes(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	a := mustInsertClip(t, tl, track, 10, 20)
	other := mustInsertClip(t, tl, track, 50, 5)

	if _, ok := tl.RequestClipsGroup([]int{a, other}, true); !ok {
		t.Fatal("grouping should succeed")
	}

	b, ok := tl.RequestClipCut(a, 18, true)
	if !ok {
		t.Fatal("cut should succeed")
	}

	left, _ := tl.Clip(a)
	right, _ := tl.Clip(b)

	if left.Position != 10 || left.PlayTime() != 8 {
		t.Errorf("left part = pos %d len %d, want 10/8", left.Position, left.PlayTime())
	}

	if right.Position != 18 || right.In != 8 || right.Out != 19 {
		t.Errorf("right part = pos %d in %d out %d, want 18/8/19", right.Position, right.In, right.Out)
	}

	if got := tl.GroupElements(a); !slices.Contains(got, b) {
		t.Errorf("right part should join the group, got %v", got)
	}

	if _, ok := tl.RequestClipCut(a, 10, true); ok {
		t.Error("cutting on the clip start should fail")
	}

	checkConsistent(t, tl)

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if tl.IsClip(b) {
		t.Error("undo should remove the right part")
	}

	if info, _ := tl.Clip(a); info.PlayTime() != 20 {
		t.Errorf("clip length after undo = %d, want 20", info.PlayTime())
	}

	checkConsistent(t, tl)
}

func TestChangeOnlyUndo_RestoresValues(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	a := mustInsertClip(t, tl, track, 0, 10)

	if !tl.RequestClipRename(a, "renamed", true) {
		t.Fatal("rename should succeed")
	}

	if !tl.RequestClipDisable(a, true, true) {
		t.Fatal("disable should succeed")
	}

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if info, _ := tl.Clip(a); info.Disabled {
		t.Error("undo should re-enable the clip")
	}

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if info, _ := tl.Clip(a); info.Name != "clip" {
		t.Errorf("name after undo = %q, want %q", info.Name, "clip")
	}
}

func TestCompositions(t *testing.T) {
	tl, stack, v1 := newTestTimeline(t)

	v2, _ := tl.RequestTrackInsertion(-1, false, "V2", true)

	if _, ok := tl.RequestCompositionInsertion("nope", v2, 0, 10, nil, true); ok {
		t.Error("unknown service should be rejected")
	}

	if _, ok := tl.RequestCompositionInsertion("mix", v2, 0, 10, nil, true); ok {
		t.Error("audio service should be rejected on a video track")
	}

	comp, ok := tl.RequestCompositionInsertion("luma", v2, 0, 10, map[string]string{"softness": "0.2"}, true)
	if !ok {
		t.Fatal("composition insertion should succeed")
	}

	info, _ := tl.Composition(comp)
	if info.ATrack != v1 || !info.Valid || info.ForcedATrack != NoID {
		t.Errorf("composition = a_track %d forced %d valid %t, want %d/%d/true", info.ATrack, info.ForcedATrack, info.Valid, v1, NoID)
	}

	// A clip and a composition may share frames on one track
	mustInsertClip(t, tl, v2, 0, 10)

	if !tl.RequestCompositionParam(comp, "softness", "0.5", true) {
		t.Fatal("param change should succeed")
	}

	if !tl.RequestCompositionATrack(comp, v1, true) {
		t.Fatal("forcing the a track should succeed")
	}

	if !tl.RequestCompositionMove(comp, v1, 20, true) {
		t.Fatal("move should succeed")
	}

	if info, _ := tl.Composition(comp); info.Valid {
		t.Error("composition on its own a track should be invalid")
	}

	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if info, _ := tl.Composition(comp); !info.Valid || info.TrackID != v2 {
		t.Errorf("undo should restore a valid composition on V2, got track %d valid %t", info.TrackID, info.Valid)
	}

	if !stack.Undo() || !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if info, _ := tl.Composition(comp); info.Params["softness"] != "0.2" || info.ForcedATrack != NoID {
		t.Errorf("undo should restore params and a track, got %v forced %d", info.Params, info.ForcedATrack)
	}

	if !tl.RequestCompositionResize(comp, 5, false, true) {
		t.Fatal("composition resize should succeed")
	}

	if info, _ := tl.Composition(comp); info.Position != 5 || info.PlayTime() != 5 {
		t.Errorf("resized composition = pos %d len %d, want 5/5", info.Position, info.PlayTime())
	}

	checkConsistent(t, tl)
}

func TestIDsAreUnique(t *testing.T) {
	ids := NewIDs()
	first := New(ids)
	second := New(ids)

	seen := make(map[int]bool)
	add := func(id int, ok bool) {
		t.Helper()

		if !ok {
			t.Fatal("construction should succeed")
		}

		if seen[id] {
			t.Fatalf("id %d issued twice", id)
		}

		seen[id] = true
	}

	for _, tl := range []*Timeline{first, second} {
		track, ok := tl.RequestTrackInsertion(-1, false, "V", true)
		add(track, ok)
		upper, ok := tl.RequestTrackInsertion(-1, false, "V", true)
		add(upper, ok)

		for i := range 5 {
			add(tl.RequestClipInsertion(clipSpec(5), track, i*10, false))
		}

		add(tl.RequestCompositionInsertion("wipe", upper, 0, 5, nil, false))
	}

	if ids.Issued() != len(seen) {
		t.Errorf("arena issued %d ids, saw %d", ids.Issued(), len(seen))
	}
}

func TestNotifications(t *testing.T) {
	view := &recordingView{}
	tl, stack, track := newTestTimeline(t, WithView(view))

	if !slices.Equal(view.calls, []string{"beginInsert(-1,0)", "endInsert"}) {
		t.Errorf("track insertion calls = %v", view.calls)
	}

	view.calls = nil
	a := mustInsertClip(t, tl, track, 0, 10)

	wantInsert := []string{fmt.Sprintf("beginInsert(%d,0)", track), "endInsert"}
	if !slices.Equal(view.calls, wantInsert) {
		t.Errorf("clip insertion calls = %v, want %v", view.calls, wantInsert)
	}

	view.calls = nil
	if !tl.RequestClipMove(a, track, 20, true) {
		t.Fatal("move should succeed")
	}

	wantMove := []string{fmt.Sprintf("change(%d,start)", a)}
	if !slices.Equal(view.calls, wantMove) {
		t.Errorf("same-track move calls = %v, want %v", view.calls, wantMove)
	}

	view.calls = nil
	if !stack.Undo() {
		t.Fatal("undo should succeed")
	}

	if !slices.Equal(view.calls, wantMove) {
		t.Errorf("undo calls = %v, want %v", view.calls, wantMove)
	}

	view.calls = nil
	if !tl.RequestClipRename(a, "x", true) {
		t.Fatal("rename should succeed")
	}

	wantRename := []string{fmt.Sprintf("change(%d,name)", a)}
	if !slices.Equal(view.calls, wantRename) {
		t.Errorf("rename calls = %v, want %v", view.calls, wantRename)
	}

	v2, _ := tl.RequestTrackInsertion(-1, false, "V2", true)
	view.calls = nil

	if !tl.RequestClipMove(a, v2, 0, true) {
		t.Fatal("cross-track move should succeed")
	}

	wantCross := []string{fmt.Sprintf("beginMove(%d,0->%d,0)", track, v2), "endMove"}
	if !slices.Equal(view.calls, wantCross) {
		t.Errorf("cross-track move calls = %v, want %v", view.calls, wantCross)
	}
}

func TestFailedRequest_LeavesNoUndoEntry(t *testing.T) {
	tl, stack, track := newTestTimeline(t)

	mustInsertClip(t, tl, track, 0, 10)
	before := stack.UndoSize()

	if _, ok := tl.RequestClipInsertion(clipSpec(10), track, 5, true); ok {
		t.Fatal("overlapping insertion should fail")
	}

	if stack.UndoSize() != before {
		t.Errorf("undo size = %d, want %d", stack.UndoSize(), before)
	}

	if got := len(tl.ClipIDs()); got != 1 {
		t.Errorf("failed insertion left %d clips registered, want 1", got)
	}
}

type modelState struct {
	Tracks       []TrackInfo
	Clips        []ClipInfo
	Compositions []CompositionInfo
	Groups       []GroupNode
}

func snapshot(tl *Timeline) modelState {
	var s modelState

	for _, id := range tl.TrackIDs() {
		info, _ := tl.Track(id)
		s.Tracks = append(s.Tracks, info)
	}

	for _, id := range tl.ClipIDs() {
		info, _ := tl.Clip(id)
		s.Clips = append(s.Clips, info)
	}

	for _, id := range tl.CompositionIDs() {
		info, _ := tl.Composition(id)
		s.Compositions = append(s.Compositions, info)
	}

	s.Groups = tl.GroupForest()

	return s
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	tl, stack, v1 := newTestTimeline(t)

	stack.Clear()
	initial := snapshot(tl)

	v2, _ := tl.RequestTrackInsertion(-1, false, "V2", true)
	a := mustInsertClip(t, tl, v1, 0, 10)
	b := mustInsertClip(t, tl, v2, 5, 10)
	tl.RequestCompositionInsertion("composite", v2, 20, 10, nil, true)
	tl.RequestClipsGroup([]int{a, b}, true)
	tl.RequestGroupMove(a, 0, 12, true)
	tl.RequestClipCut(b, 20, true)
	tl.RequestClipResize(a, 4, true, true)
	tl.RequestTrackProperty(v2, TrackProps{Name: "top", Muted: true}, true)

	final := snapshot(tl)
	checkConsistent(t, tl)

	for stack.CanUndo() {
		if !stack.Undo() {
			t.Fatalf("undo of %q failed", stack.UndoLabel())
		}
		checkConsistent(t, tl)
	}

	if got := snapshot(tl); !reflect.DeepEqual(got, initial) {
		t.Errorf("state after undo all = %+v, want %+v", got, initial)
	}

	for stack.CanRedo() {
		if !stack.Redo() {
			t.Fatalf("redo of %q failed", stack.RedoLabel())
		}
	}

	if got := snapshot(tl); !reflect.DeepEqual(got, final) {
		t.Errorf("state after redo all = %+v, want %+v", got, final)
	}
}
