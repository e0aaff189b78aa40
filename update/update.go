// ABOUTME: Atomic change records describing one structural or attribute change of one timeline item
// ABOUTME: Closed set of kinds (delete, insert, move, change), each able to produce its inverse

// Package update describes timeline mutations as notification records and folds
// a transaction's records into the minimal set a view needs to stay consistent.
package update

import (
	"fmt"
	"strings"
)

// Kind enumerates the update variants.
type Kind int

const (
	KindDelete Kind = iota
	KindInsert
	KindMove
	KindChange
)

func (k Kind) String() string {
	switch k {
	case KindDelete:
		return "delete"
	case KindInsert:
		return "insert"
	case KindMove:
		return "move"
	case KindChange:
		return "change"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Roles is a set of attribute kinds that changed on an item.
type Roles uint32

const (
	RoleStart Roles = 1 << iota
	RoleDuration
	RoleInPoint
	RoleOutPoint
	RoleName
	RoleDisabled
	RoleParams
	RoleATrack
	RoleValidity
	RoleGrouped
)

var roleNames = []string{"start", "duration", "in", "out", "name", "disabled", "params", "a_track", "valid", "grouped"}

// Union returns the roles present in r or o.
func (r Roles) Union(o Roles) Roles { return r | o }

// Has reports whether every role of o is in r.
func (r Roles) Has(o Roles) bool { return r&o == o }

func (r Roles) String() string {
	if r == 0 {
		return "none"
	}

	var names []string
	for i, name := range roleNames {
		if r&(1<<i) != 0 {
			names = append(names, name)
		}
	}

	return strings.Join(names, "|")
}

// Location places an item on a track of a timeline.
type Location struct {
	Timeline Target
	Track    int
	Pos      int
}

func (l Location) String() string {
	return fmt.Sprintf("%p:%d@%d", l.Timeline, l.Track, l.Pos)
}

// Update is one atomic change to one item. Values are immutable once built:
// Reverse and the merge steps always return fresh records.
//
// Delete, Insert and Change use At; Move uses From and To.
type Update struct {
	Kind   Kind
	Item   int
	IsClip bool
	At     Location
	From   Location
	To     Location
	Roles  Roles
}

// NewDelete records the removal of an item from a track.
func NewDelete(item int, tl Target, track, pos int, isClip bool) Update {
	return Update{Kind: KindDelete, Item: item, IsClip: isClip, At: Location{tl, track, pos}}
}

// NewInsert records the placement of an item on a track.
func NewInsert(item int, tl Target, track, pos int, isClip bool) Update {
	return Update{Kind: KindInsert, Item: item, IsClip: isClip, At: Location{tl, track, pos}}
}

// NewMove records an item moving between two locations.
func NewMove(item int, from, to Location, isClip bool) Update {
	return Update{Kind: KindMove, Item: item, IsClip: isClip, From: from, To: to}
}

// NewChange records attribute changes of an item living in tl.
func NewChange(item int, tl Target, roles Roles) Update {
	return Update{Kind: KindChange, Item: item, At: Location{Timeline: tl, Track: -1, Pos: -1}, Roles: roles}
}

// Reverse returns the record undoing u from the view's point of view.
// A change is its own inverse: the values are restored by the entity's own undo.
func (u Update) Reverse() Update {
	switch u.Kind {
	case KindDelete:
		return NewInsert(u.Item, u.At.Timeline, u.At.Track, u.At.Pos, u.IsClip)
	case KindInsert:
		return NewDelete(u.Item, u.At.Timeline, u.At.Track, u.At.Pos, u.IsClip)
	case KindMove:
		return NewMove(u.Item, u.To, u.From, u.IsClip)
	case KindChange:
		return NewChange(u.Item, u.At.Timeline, u.Roles)
	}

	panic(fmt.Sprintf("update: unknown kind %d", u.Kind))
}

// Structural reports whether u changes the item tree rather than an item's attributes.
func (u Update) Structural() bool {
	return u.Kind != KindChange
}

// origin is where the item was before u.
func (u Update) origin() Location {
	if u.Kind == KindMove {
		return u.From
	}

	return u.At
}

// destination is where the item is after u.
func (u Update) destination() Location {
	if u.Kind == KindMove {
		return u.To
	}

	return u.At
}

// String is a debug representation.
func (u Update) String() string {
	switch u.Kind {
	case KindDelete, KindInsert:
		return fmt.Sprintf("%s(%d, %s, clip=%t)", u.Kind, u.Item, u.At, u.IsClip)
	case KindMove:
		return fmt.Sprintf("move(%d, %s -> %s)", u.Item, u.From, u.To)
	case KindChange:
		return fmt.Sprintf("change(%d, %s)", u.Item, u.Roles)
	}

	return fmt.Sprintf("update(%d)", u.Item)
}
