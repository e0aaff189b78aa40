// ABOUTME: Scrolling for the track list and the horizontal frame window
// ABOUTME: Both follow their cursor vim/less style: cursor moves to the middle, then content scrolls

package tui

// ScrollPhase tells where the cursor sits relative to the window
type ScrollPhase int

const (
	TopPhase    ScrollPhase = iota // Cursor moves, window at the start
	MiddlePhase                    // Cursor at the middle, content scrolls
	BottomPhase                    // Window at the end, cursor moves
)

// scrollPhase returns the phase of cursor in a window of size over total entries
func scrollPhase(size, cursor, total int) ScrollPhase {
	if total == 0 || size < 1 {
		return TopPhase
	}

	middle := size / 2
	if cursor < middle {
		return TopPhase
	}

	if cursor < total-size+middle {
		return MiddlePhase
	}

	return BottomPhase
}

// scrollOffset returns the first visible entry keeping cursor in view
func scrollOffset(size, cursor, total int) int {
	switch scrollPhase(size, cursor, total) {
	case TopPhase:
		return 0
	case MiddlePhase:
		return cursor - size/2
	}

	return max(total-size, 0)
}

// Zoom limits in frames per column
const (
	minZoom = 1
	maxZoom = 250
)

// frameWindow maps timeline frames onto terminal columns
type frameWindow struct {
	start   int // First visible frame
	columns int
	zoom    int // Frames per column
}

func newFrameWindow(columns, zoom int) frameWindow {
	return frameWindow{columns: max(columns, 1), zoom: clampZoom(zoom)}
}

func clampZoom(zoom int) int {
	return min(max(zoom, minZoom), maxZoom)
}

// frames is the number of frames the window shows
func (w frameWindow) frames() int {
	return w.columns * w.zoom
}

// column returns the column showing frame, -1 when it is outside the window
func (w frameWindow) column(frame int) int {
	if frame < w.start || frame >= w.start+w.frames() {
		return -1
	}

	return (frame - w.start) / w.zoom
}

// frameAt returns the first frame shown in column col
func (w frameWindow) frameAt(col int) int {
	return w.start + col*w.zoom
}

// follow scrolls so the playhead stays visible. The scrollable range extends one
// window past duration so items can be dragged beyond the end.
func (w frameWindow) follow(playhead, duration int) frameWindow {
	totalCols := (duration+w.zoom-1)/w.zoom + w.columns
	w.start = scrollOffset(w.columns, playhead/w.zoom, totalCols) * w.zoom

	return w
}

// withZoom changes the scale keeping the playhead column where it was when possible
func (w frameWindow) withZoom(zoom, playhead int) frameWindow {
	zoom = clampZoom(zoom)
	if zoom == w.zoom {
		return w
	}

	col := max(w.column(playhead), 0)
	w.zoom = zoom
	w.start = max(playhead-col*zoom, 0)
	w.start -= w.start % zoom

	return w
}
