// ABOUTME: Bounded undo/redo history of committed timeline transactions
// ABOUTME: Each entry holds the undo and redo closures produced by one request

package undo

import "sync"

// Entry is one committed transaction.
type Entry struct {
	Label string
	Undo  Fun
	Redo  Fun
}

// Stack manages undo/redo history with a maximum size limit.
// It is owned by the editor, not by the timeline, and may be swapped on reload.
type Stack struct {
	mu      sync.Mutex
	history []Entry
	cursor  int // Number of entries we can undo (index of the next redo entry)
	maxSize int
	onIndex func(cursor int)
}

// NewStack creates a new stack with the specified max size
func NewStack(maxSize int) *Stack {
	if maxSize <= 0 {
		maxSize = 100
	}

	return &Stack{maxSize: maxSize}
}

// OnIndexChanged registers a callback invoked after every push, undo and redo.
func (s *Stack) OnIndexChanged(fn func(cursor int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onIndex = fn
}

// Push records an already-applied transaction.
// Clears the redo entries (you can't redo after a new action)
func (s *Stack) Push(undo, redo Fun, label string) {
	s.mu.Lock()

	s.history = s.history[:s.cursor]
	s.history = append(s.history, Entry{Label: label, Undo: undo, Redo: redo})
	s.cursor++

	if len(s.history) > s.maxSize {
		s.history = s.history[1:]
		s.cursor--
	}

	cursor, fn := s.cursor, s.onIndex
	s.mu.Unlock()

	if fn != nil {
		fn(cursor)
	}
}

// Undo reverts the most recent entry.
// Returns false if there is nothing to undo or the entry's undo chain failed;
// a failed entry stays where it was.
func (s *Stack) Undo() bool {
	s.mu.Lock()
	if s.cursor == 0 {
		s.mu.Unlock()
		return false
	}

	entry := s.history[s.cursor-1]
	s.mu.Unlock()

	// Closures run without the lock, they may query other stacks or push notifications
	if !entry.Undo() {
		return false
	}

	s.mu.Lock()
	s.cursor--
	cursor, fn := s.cursor, s.onIndex
	s.mu.Unlock()

	if fn != nil {
		fn(cursor)
	}

	return true
}

// Redo re-applies the most recently undone entry.
func (s *Stack) Redo() bool {
	s.mu.Lock()
	if s.cursor == len(s.history) {
		s.mu.Unlock()
		return false
	}

	entry := s.history[s.cursor]
	s.mu.Unlock()

	if !entry.Redo() {
		return false
	}

	s.mu.Lock()
	s.cursor++
	cursor, fn := s.cursor, s.onIndex
	s.mu.Unlock()

	if fn != nil {
		fn(cursor)
	}

	return true
}

// CanUndo reports whether an entry is available to undo.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanRedo reports whether an entry is available to redo.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.history)
}

// UndoSize returns the number of entries that can be undone
func (s *Stack) UndoSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// RedoSize returns the number of entries that can be redone
func (s *Stack) RedoSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) - s.cursor
}

// UndoLabel returns the label of the entry Undo would revert.
func (s *Stack) UndoLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == 0 {
		return ""
	}
	return s.history[s.cursor-1].Label
}

// RedoLabel returns the label of the entry Redo would re-apply.
func (s *Stack) RedoLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == len(s.history) {
		return ""
	}
	return s.history[s.cursor].Label
}

// Clear drops the whole history
func (s *Stack) Clear() {
	s.mu.Lock()
	s.history = nil
	s.cursor = 0
	s.mu.Unlock()
}
