// ABOUTME: Tests for update simplification, reversal and notification wrapping
// ABOUTME: Uses a fake timeline target with a recording view adapter

package update

import (
	"fmt"
	"reflect"
	"testing"

	"cutline/undo"
)

type recordingView struct {
	calls []string
}

func (v *recordingView) BeginInsertRows(p Index, first, last int) {
	v.calls = append(v.calls, fmt.Sprintf("beginInsert(t%d,%d,%d)", p.Track, first, last))
}

func (v *recordingView) EndInsertRows() { v.calls = append(v.calls, "endInsert") }

func (v *recordingView) BeginRemoveRows(p Index, first, last int) {
	v.calls = append(v.calls, fmt.Sprintf("beginRemove(t%d,%d,%d)", p.Track, first, last))
}

func (v *recordingView) EndRemoveRows() { v.calls = append(v.calls, "endRemove") }

func (v *recordingView) BeginMoveRows(src Index, first, last int, dst Index, row int) {
	v.calls = append(v.calls, fmt.Sprintf("beginMove(t%d,%d,%d->t%d,%d)", src.Track, first, last, dst.Track, row))
}

func (v *recordingView) EndMoveRows() { v.calls = append(v.calls, "endMove") }

func (v *recordingView) NotifyChange(item Index, roles Roles) {
	v.calls = append(v.calls, fmt.Sprintf("change(%d,%s)", item.Item, roles))
}

type fakeTimeline struct {
	view *recordingView
	rows map[[2]int]int
}

func newFakeTimeline() *fakeTimeline {
	return &fakeTimeline{view: &recordingView{}, rows: make(map[[2]int]int)}
}

func (f *fakeTimeline) View() View { return f.view }
func (f *fakeTimeline) TrackIndex(trackID int) Index { return Index{Track: trackID, Item: NoID} }
func (f *fakeTimeline) ItemIndex(itemID int) Index { return Index{Track: 0, Item: itemID} }

func (f *fakeTimeline) ItemRow(trackID, itemID int, _ bool) int {
	return f.rows[[2]int{trackID, itemID}]
}

func TestSimplify_InsertThenDeleteCancels(t *testing.T) {
	tl := newFakeTimeline()

	got := Simplify([]Update{
		NewInsert(7, tl, 0, 10, true),
		NewDelete(7, tl, 0, 10, true),
	})

	if len(got) != 0 {
		t.Errorf("Simplify() = %v, want empty", got)
	}
}

func TestSimplify_DeleteThenInsertElsewhereIsMove(t *testing.T) {
	tl := newFakeTimeline()

	got := Simplify([]Update{
		NewDelete(7, tl, 0, 10, true),
		NewInsert(7, tl, 1, 20, true),
	})

	want := []Update{NewMove(7, Location{tl, 0, 10}, Location{tl, 1, 20}, true)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Simplify() = %v, want %v", got, want)
	}
}

func TestSimplify_Cases(t *testing.T) {
	a := newFakeTimeline()
	b := newFakeTimeline()

	tests := []struct {
		name string
		in   []Update
		want []Update
	}{
		{
			name: "single insert is kept",
			in:   []Update{NewInsert(1, a, 0, 5, true)},
			want: []Update{NewInsert(1, a, 0, 5, true)},
		},
		{
			name: "moves collapse to first source and last target",
			in: []Update{
				NewMove(1, Location{a, 0, 0}, Location{a, 1, 5}, true),
				NewMove(1, Location{a, 1, 5}, Location{a, 2, 9}, true),
			},
			want: []Update{NewMove(1, Location{a, 0, 0}, Location{a, 2, 9}, true)},
		},
		{
			name: "insert then move is an insert at the final target",
			in: []Update{
				NewInsert(1, a, 0, 0, false),
				NewMove(1, Location{a, 0, 0}, Location{a, 3, 40}, false),
			},
			want: []Update{NewInsert(1, a, 3, 40, false)},
		},
		{
			name: "move back to the start is a no-op",
			in: []Update{
				NewDelete(1, a, 0, 0, true),
				NewInsert(1, a, 1, 0, true),
				NewDelete(1, a, 1, 0, true),
				NewInsert(1, a, 0, 0, true),
			},
			want: []Update{},
		},
		{
			name: "same track move becomes a start change",
			in: []Update{
				NewDelete(1, a, 0, 0, true),
				NewInsert(1, a, 0, 15, true),
			},
			want: []Update{NewChange(1, a, RoleStart)},
		},
		{
			name: "changes are unioned after the structural record",
			in: []Update{
				NewChange(1, a, RoleName),
				NewDelete(1, a, 0, 0, true),
				NewChange(1, a, RoleDuration),
				NewInsert(1, a, 1, 0, true),
			},
			want: []Update{
				NewMove(1, Location{a, 0, 0}, Location{a, 1, 0}, true),
				NewChange(1, a, RoleName|RoleDuration),
			},
		},
		{
			name: "change follows the item to its final timeline",
			in: []Update{
				NewChange(1, a, RoleParams),
				NewDelete(1, a, 0, 0, false),
				NewInsert(1, b, 0, 0, false),
			},
			want: []Update{
				NewMove(1, Location{a, 0, 0}, Location{b, 0, 0}, false),
				NewChange(1, b, RoleParams),
			},
		},
		{
			name: "deleted item drops its changes",
			in: []Update{
				NewChange(1, a, RoleName),
				NewDelete(1, a, 0, 0, true),
			},
			want: []Update{NewDelete(1, a, 0, 0, true)},
		},
		{
			name: "trailing delete drops earlier records",
			in: []Update{
				NewDelete(1, a, 0, 0, true),
				NewInsert(1, a, 2, 30, true),
				NewDelete(1, a, 2, 30, true),
			},
			want: []Update{NewDelete(1, a, 0, 0, true)},
		},
		{
			name: "items keep first appearance order",
			in: []Update{
				NewChange(2, a, RoleName),
				NewInsert(1, a, 0, 0, true),
				NewChange(2, a, RoleDisabled),
			},
			want: []Update{
				NewChange(2, a, RoleName|RoleDisabled),
				NewInsert(1, a, 0, 0, true),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Simplify() = %v, want %v", got, tt.want)
			}

			again := Simplify(got)
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Simplify is not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestReverse(t *testing.T) {
	a := newFakeTimeline()

	list := []Update{
		NewInsert(1, a, 0, 5, true),
		NewMove(2, Location{a, 0, 0}, Location{a, 1, 9}, true),
		NewChange(3, a, RoleName),
	}

	got := Reverse(list)
	want := []Update{
		NewChange(3, a, RoleName),
		NewMove(2, Location{a, 1, 9}, Location{a, 0, 0}, true),
		NewDelete(1, a, 0, 5, true),
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reverse() = %v, want %v", got, want)
	}

	if list[1].From.Track != 0 {
		t.Error("Reverse must not mutate its input")
	}
}

func TestRoles_String(t *testing.T) {
	if got := (RoleStart | RoleName).String(); got != "start|name" {
		t.Errorf("String() = %q", got)
	}

	if !(RoleStart | RoleName).Has(RoleName) {
		t.Error("Has(RoleName) should be true")
	}
}

func TestApply_WrapsNotifications(t *testing.T) {
	tl := newFakeTimeline()
	tl.rows[[2]int{0, 1}] = 3
	tl.rows[[2]int{1, 1}] = 0

	track := 0
	undoFn, redoFn := undo.Fun(undo.Noop), undo.Fun(undo.Noop)

	// Mutation applied eagerly, the way timeline requests do it
	move := func() bool { track = 1; return true }
	back := func() bool { track = 0; return true }

	if !undo.Apply(move, back, &undoFn, &redoFn) {
		t.Fatal("apply move")
	}

	ups := []Update{
		NewDelete(1, tl, 0, 10, true),
		NewInsert(1, tl, 1, 10, true),
	}

	if !Apply(&undoFn, &redoFn, ups) {
		t.Fatal("Apply should succeed")
	}

	if track != 1 {
		t.Fatalf("track = %d after Apply, want 1", track)
	}

	want := []string{"beginMove(t0,3,3->t1,0)", "endMove"}
	if !reflect.DeepEqual(tl.view.calls, want) {
		t.Errorf("redo notifications = %v, want %v", tl.view.calls, want)
	}

	tl.view.calls = nil

	if !undoFn() || track != 0 {
		t.Fatalf("undo should restore track 0, got %d", track)
	}

	want = []string{"beginMove(t1,0,0->t0,3)", "endMove"}
	if !reflect.DeepEqual(tl.view.calls, want) {
		t.Errorf("undo notifications = %v, want %v", tl.view.calls, want)
	}
}

func TestApply_CrossTimelineMove(t *testing.T) {
	src := newFakeTimeline()
	dst := newFakeTimeline()

	undoFn, redoFn := undo.Fun(undo.Noop), undo.Fun(undo.Noop)

	ups := []Update{
		NewDelete(4, src, 0, 0, false),
		NewInsert(4, dst, 2, 0, false),
		NewChange(4, dst, RoleATrack),
	}

	if !Apply(&undoFn, &redoFn, ups) {
		t.Fatal("Apply should succeed")
	}

	if want := []string{"beginRemove(t0,0,0)", "endRemove"}; !reflect.DeepEqual(src.view.calls, want) {
		t.Errorf("source view = %v, want %v", src.view.calls, want)
	}

	if want := []string{"beginInsert(t2,0,0)", "endInsert", "change(4,a_track)"}; !reflect.DeepEqual(dst.view.calls, want) {
		t.Errorf("target view = %v, want %v", dst.view.calls, want)
	}
}

func TestApply_ChangeOnly(t *testing.T) {
	tl := newFakeTimeline()
	name := "new"

	undoFn, redoFn := undo.Fun(undo.Noop), undo.Fun(undo.Noop)
	undo.Apply(func() bool { name = "new"; return true }, func() bool { name = "old"; return true }, &undoFn, &redoFn)

	Apply(&undoFn, &redoFn, []Update{NewChange(9, tl, RoleName)})

	tl.view.calls = nil

	undoFn()

	if name != "old" {
		t.Errorf("undo restored %q, want %q", name, "old")
	}

	if want := []string{"change(9,name)"}; !reflect.DeepEqual(tl.view.calls, want) {
		t.Errorf("undo notifications = %v, want %v", tl.view.calls, want)
	}
}
