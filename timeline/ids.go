// ABOUTME: Id arena shared by every track, clip, composition and group of a session
// ABOUTME: Issues monotonically increasing ids so handles stay stable across undo/redo

package timeline

import "sync"

// NoID marks an unassigned track or item.
const NoID = -1

// IDs hands out session-unique ids. Timelines sharing an arena never reuse an id.
type IDs struct {
	mu   sync.Mutex
	next int
}

// NewIDs creates an arena starting at id 0.
func NewIDs() *IDs {
	return &IDs{}
}

// Next returns a fresh id.
func (a *IDs) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++

	return id
}

// Issued returns how many ids have been handed out.
func (a *IDs) Issued() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
