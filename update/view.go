// ABOUTME: Notification surface between the timeline core and an item-model adapter
// ABOUTME: The core only calls these hooks; adapters (tui, tests) implement them

package update

// NoID marks the absence of a track or item.
const NoID = -1

// Index addresses a node of the item tree: the root, a track or an item on a track.
type Index struct {
	Track int
	Item  int
}

// Root is the parent index of tracks.
var Root = Index{Track: NoID, Item: NoID}

// IsRoot reports whether i is the root index.
func (i Index) IsRoot() bool { return i.Track == NoID && i.Item == NoID }

// View receives row-level structural notifications and attribute refreshes.
type View interface {
	BeginInsertRows(parent Index, first, last int)
	EndInsertRows()
	BeginRemoveRows(parent Index, first, last int)
	EndRemoveRows()
	BeginMoveRows(srcParent Index, first, last int, dstParent Index, dstRow int)
	EndMoveRows()
	NotifyChange(item Index, roles Roles)
}

// Target is a timeline instance updates refer to. Implementations must be
// comparable (pointer types), updates compare timelines by identity.
type Target interface {
	// View returns the adapter to notify, or nil.
	View() View
	TrackIndex(trackID int) Index
	ItemIndex(itemID int) Index
	// ItemRow returns the row itemID has on trackID, or the row it would get once inserted.
	ItemRow(trackID, itemID int, isClip bool) int
}

// NopView ignores every notification.
type NopView struct{}

func (NopView) BeginInsertRows(Index, int, int) {}
func (NopView) EndInsertRows() {}
func (NopView) BeginRemoveRows(Index, int, int) {}
func (NopView) EndRemoveRows() {}
func (NopView) BeginMoveRows(Index, int, int, Index, int) {}
func (NopView) EndMoveRows() {}
func (NopView) NotifyChange(Index, Roles) {}

func viewOf(t Target) View {
	if t == nil {
		return NopView{}
	}

	if v := t.View(); v != nil {
		return v
	}

	return NopView{}
}
