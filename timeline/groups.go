// ABOUTME: Group forest: items and nested groups that move and delete together
// ABOUTME: Every forest edit swaps whole snapshots so undo restores the exact previous shape

package timeline

import (
	"maps"
	"slices"

	"cutline/undo"
	"cutline/update"
)

// groupForest links items and groups to their parent group.
// Ids missing from upLink are roots.
type groupForest struct {
	upLink   map[int]int
	downLink map[int][]int
}

func newGroupForest() *groupForest {
	return &groupForest{
		upLink:   make(map[int]int),
		downLink: make(map[int][]int),
	}
}

func (f *groupForest) clone() *groupForest {
	c := &groupForest{
		upLink:   maps.Clone(f.upLink),
		downLink: make(map[int][]int, len(f.downLink)),
	}
	for g, children := range f.downLink {
		c.downLink[g] = slices.Clone(children)
	}

	return c
}

func (f *groupForest) isGroup(id int) bool {
	_, ok := f.downLink[id]
	return ok
}

func (f *groupForest) parent(id int) (int, bool) {
	p, ok := f.upLink[id]
	return p, ok
}

func (f *groupForest) root(id int) int {
	for {
		p, ok := f.upLink[id]
		if !ok {
			return id
		}
		id = p
	}
}

// leaves returns the items below id, or id itself for an item.
func (f *groupForest) leaves(id int) []int {
	children, ok := f.downLink[id]
	if !ok {
		return []int{id}
	}

	var res []int
	for _, c := range children {
		res = append(res, f.leaves(c)...)
	}
	slices.Sort(res)

	return res
}

// subgroups returns id and every group below it.
func (f *groupForest) subgroups(id int) []int {
	children, ok := f.downLink[id]
	if !ok {
		return nil
	}

	res := []int{id}
	for _, c := range children {
		res = append(res, f.subgroups(c)...)
	}

	return res
}

// group creates gid with the given roots as children.
func (f *groupForest) group(gid int, roots []int) {
	children := slices.Clone(roots)
	slices.Sort(children)
	f.downLink[gid] = children

	for _, r := range children {
		f.upLink[r] = gid
	}
}

// ungroup removes group gid, promoting its children to its parent level.
func (f *groupForest) ungroup(gid int) {
	children := f.downLink[gid]
	parent, hasParent := f.upLink[gid]

	delete(f.downLink, gid)
	delete(f.upLink, gid)

	for _, c := range children {
		if hasParent {
			f.upLink[c] = parent
		} else {
			delete(f.upLink, c)
		}
	}

	if hasParent {
		siblings := slices.DeleteFunc(f.downLink[parent], func(x int) bool { return x == gid })
		siblings = append(siblings, children...)
		slices.Sort(siblings)
		f.downLink[parent] = siblings
	}
}

// attach adds id as a child of group gid.
func (f *groupForest) attach(id, gid int) {
	f.upLink[id] = gid
	children := append(f.downLink[gid], id)
	slices.Sort(children)
	f.downLink[gid] = children
}

// detach removes id from its parent. A group left with a single child dissolves.
func (f *groupForest) detach(id int) {
	parent, ok := f.upLink[id]
	if !ok {
		return
	}

	delete(f.upLink, id)
	f.downLink[parent] = slices.DeleteFunc(f.downLink[parent], func(x int) bool { return x == id })

	if len(f.downLink[parent]) < 2 {
		f.ungroup(parent)
	}
}

// drop removes the whole tree rooted at id's root.
func (f *groupForest) drop(id int) {
	root := f.root(id)
	for _, g := range f.subgroups(root) {
		for _, c := range f.downLink[g] {
			delete(f.upLink, c)
		}
		delete(f.downLink, g)
	}
}

func (t *Timeline) setGroupsOp(f *groupForest) undo.Fun {
	snapshot := f.clone()

	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		t.groups = snapshot.clone()

		return true
	}
}

// changeGroups applies edit to a copy of the forest and records a grouping change
// for every item whose top-level group moved.
func (t *Timeline) changeGroups(tx *txn, edit func(f *groupForest) bool) bool {
	before := t.groups.clone()
	after := before.clone()

	if !edit(after) {
		return false
	}

	if !tx.apply(t.setGroupsOp(after), t.setGroupsOp(before)) {
		return false
	}

	touched := make(map[int]bool)
	for id := range before.upLink {
		touched[id] = true
	}
	for id := range after.upLink {
		touched[id] = true
	}

	for _, id := range slices.Sorted(maps.Keys(touched)) {
		if before.isGroup(id) || after.isGroup(id) || !t.isItem(id) {
			continue
		}

		if before.root(id) != after.root(id) {
			tx.record(update.NewChange(id, t, update.RoleGrouped))
		}
	}

	return true
}

// groupItems groups the top-level groups of ids under a new group.
func (t *Timeline) groupItems(ids []int, tx *txn) (int, bool) {
	roots := make([]int, 0, len(ids))
	for _, id := range ids {
		if !t.isItem(id) && !t.groups.isGroup(id) {
			return NoID, false
		}

		r := t.groups.root(id)
		if !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}

	if len(roots) < 2 {
		return NoID, false
	}

	gid := t.ids.Next()
	ok := t.changeGroups(tx, func(f *groupForest) bool {
		f.group(gid, roots)
		return true
	})

	return gid, ok
}

// ungroupItem dissolves the top-level group containing id.
func (t *Timeline) ungroupItem(id int, tx *txn) bool {
	root := t.groups.root(id)
	if !t.groups.isGroup(root) {
		return false
	}

	return t.changeGroups(tx, func(f *groupForest) bool {
		f.ungroup(root)
		return true
	})
}

// detachItem takes a single item out of the forest.
func (t *Timeline) detachItem(id int, tx *txn) bool {
	if _, grouped := t.groups.parent(id); !grouped {
		return true
	}

	return t.changeGroups(tx, func(f *groupForest) bool {
		f.detach(id)
		return true
	})
}
