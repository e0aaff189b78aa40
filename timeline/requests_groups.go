// ABOUTME: Group requests: grouping, ungrouping, group move and group deletion
// ABOUTME: Also exposes the forest shape for serialization

package timeline

import (
	"slices"
)

// GroupNode is one node of the group forest: a group with children, or a leaf item.
type GroupNode struct {
	ID       int
	Children []GroupNode // Empty for leaf items
}

// IsLeaf reports whether the node is an item.
func (n GroupNode) IsLeaf() bool { return len(n.Children) == 0 }

// RequestClipsGroup groups the top-level groups of ids and returns the new group id.
func (t *Timeline) RequestClipsGroup(ids []int, logUndo bool) (int, bool) {
	gid := NoID

	ok := t.commit("Group clips", logUndo, func(tx *txn) bool {
		var grouped bool
		gid, grouped = t.groupItems(ids, tx)
		return grouped
	})

	if !ok {
		return NoID, false
	}

	return gid, true
}

// RequestClipUngroup dissolves the top-level group containing id.
func (t *Timeline) RequestClipUngroup(id int, logUndo bool) bool {
	return t.commit("Ungroup clips", logUndo, func(tx *txn) bool {
		return t.ungroupItem(id, tx)
	})
}

// GroupElements returns every item sharing the top-level group of id, id alone when ungrouped.
func (t *Timeline) GroupElements(id int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.groups.leaves(t.groups.root(id))
}

// IsGrouped reports whether id belongs to a group.
func (t *Timeline) IsGrouped(id int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.groups.parent(id)
	return ok
}

// GroupForest returns the top-level groups with their nested structure.
func (t *Timeline) GroupForest() []GroupNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var roots []int
	for g := range t.groups.downLink {
		if _, nested := t.groups.parent(g); !nested {
			roots = append(roots, g)
		}
	}
	slices.Sort(roots)

	nodes := make([]GroupNode, 0, len(roots))
	for _, g := range roots {
		nodes = append(nodes, t.groupNode(g))
	}

	return nodes
}

func (t *Timeline) groupNode(id int) GroupNode {
	n := GroupNode{ID: id}
	for _, c := range t.groups.downLink[id] {
		n.Children = append(n.Children, t.groupNode(c))
	}

	return n
}

// RequestGroupMove shifts every item of id's group by trackDelta tracks and posDelta frames.
func (t *Timeline) RequestGroupMove(id, trackDelta, posDelta int, logUndo bool) bool {
	return t.commit("Move group", logUndo, func(tx *txn) bool {
		return t.groupMove(id, trackDelta, posDelta, tx)
	})
}

// RequestGroupDeletion deletes every item of id's group and the group itself.
func (t *Timeline) RequestGroupDeletion(id int, logUndo bool) bool {
	return t.commit("Delete group", logUndo, func(tx *txn) bool {
		return t.deleteGroup(id, tx)
	})
}

type groupTarget struct {
	id     int
	isClip bool
	src    *Track
	dst    *Track
	pos    int
}

func (t *Timeline) groupMove(id, trackDelta, posDelta int, tx *txn) bool {
	if !t.isItem(id) && !t.groups.isGroup(id) {
		return false
	}

	if trackDelta == 0 && posDelta == 0 {
		return true
	}

	leaves := t.groups.leaves(t.groups.root(id))
	targets := make([]groupTarget, 0, len(leaves))

	for _, leaf := range leaves {
		isClip := t.clips[leaf] != nil
		s := t.spanOf(leaf, isClip)
		if s == nil || s.trackID == NoID {
			return false
		}

		row := t.trackIndex(s.trackID) + trackDelta
		if row < 0 || row >= len(t.trackOrder) {
			return false
		}

		targets = append(targets, groupTarget{
			id:     leaf,
			isClip: isClip,
			src:    t.tracks[s.trackID],
			dst:    t.tracks[t.trackOrder[row]],
			pos:    s.position + posDelta,
		})
	}

	return tx.attempt(func(sub *txn) bool {
		var relinks []func(*txn)
		for _, g := range targets {
			if !g.isClip {
				relinks = append(relinks, t.watchRelink(t.compositions[g.id]))
			}
		}

		// Lift everything first so group members never collide with each other.
		for _, g := range targets {
			if !g.src.requestItemDeletion(g.id, g.isClip, sub) {
				return false
			}
		}

		for _, g := range targets {
			if !g.dst.requestItemInsertion(g.id, g.isClip, g.pos, sub) {
				return false
			}
		}

		for _, relink := range relinks {
			relink(sub)
		}

		return true
	})
}

func (t *Timeline) deleteGroup(id int, tx *txn) bool {
	if !t.isItem(id) && !t.groups.isGroup(id) {
		return false
	}

	leaves := t.groups.leaves(t.groups.root(id))

	return tx.attempt(func(sub *txn) bool {
		if !t.changeGroups(sub, func(f *groupForest) bool {
			f.drop(id)
			return true
		}) {
			return false
		}

		for _, leaf := range leaves {
			if !t.deleteItem(leaf, t.clips[leaf] != nil, sub) {
				return false
			}
		}

		return true
	})
}
