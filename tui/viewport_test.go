// ABOUTME: Tests for track list and frame window scrolling
// ABOUTME: Verifies cursor-to-middle vim-style scrolling and zoom mapping

package tui

import "testing"

func TestScrollOffset(t *testing.T) {
	// Window of 10 over 50 entries: middle = 5, bottom threshold = 45
	tests := []struct {
		name       string
		cursor     int
		wantOffset int
		wantPhase  ScrollPhase
	}{
		{"cursor at 0", 0, 0, TopPhase},
		{"cursor just before middle", 4, 0, TopPhase},
		{"cursor at middle start", 5, 0, MiddlePhase},
		{"cursor at 25", 25, 20, MiddlePhase},
		{"cursor just before bottom threshold", 44, 39, MiddlePhase},
		{"cursor at bottom threshold", 45, 40, BottomPhase},
		{"cursor at last entry", 49, 40, BottomPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrollOffset(10, tt.cursor, 50); got != tt.wantOffset {
				t.Errorf("scrollOffset() = %d, want %d", got, tt.wantOffset)
			}

			if got := scrollPhase(10, tt.cursor, 50); got != tt.wantPhase {
				t.Errorf("scrollPhase() = %v, want %v", got, tt.wantPhase)
			}
		})
	}
}

func TestScrollOffset_EdgeCases(t *testing.T) {
	tests := []struct {
		name                string
		size, cursor, total int
		want                int
	}{
		{"empty list", 10, 0, 0, 0},
		{"zero height", 0, 3, 10, 0},
		{"fewer entries than rows", 10, 3, 4, 0},
		{"exactly one window", 10, 9, 10, 0},
		{"single row window", 1, 7, 20, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrollOffset(tt.size, tt.cursor, tt.total); got != tt.want {
				t.Errorf("scrollOffset(%d, %d, %d) = %d, want %d", tt.size, tt.cursor, tt.total, got, tt.want)
			}
		})
	}
}

func TestFrameWindow_Column(t *testing.T) {
	w := frameWindow{start: 100, columns: 10, zoom: 5}

	tests := []struct {
		frame int
		want  int
	}{
		{99, -1},
		{100, 0},
		{104, 0},
		{105, 1},
		{149, 9},
		{150, -1},
	}

	for _, tt := range tests {
		if got := w.column(tt.frame); got != tt.want {
			t.Errorf("column(%d) = %d, want %d", tt.frame, got, tt.want)
		}
	}

	if got := w.frameAt(3); got != 115 {
		t.Errorf("frameAt(3) = %d, want 115", got)
	}
}

func TestFrameWindow_Follow(t *testing.T) {
	w := newFrameWindow(10, 2)

	// Playhead in the first half keeps the window at 0
	if got := w.follow(8, 1000).start; got != 0 {
		t.Errorf("start = %d, want 0", got)
	}

	// Column 50 is centred: start column 45
	if got := w.follow(100, 1000).start; got != 90 {
		t.Errorf("start = %d, want 90", got)
	}
}

func TestFrameWindow_WithZoom(t *testing.T) {
	w := frameWindow{start: 0, columns: 20, zoom: 1}

	zoomed := w.withZoom(4, 10)
	if zoomed.zoom != 4 {
		t.Fatalf("zoom = %d, want 4", zoomed.zoom)
	}
	if zoomed.start != 0 {
		t.Errorf("start = %d, want 0", zoomed.start)
	}
	if zoomed.column(10) != 2 {
		t.Errorf("playhead column = %d, want 2", zoomed.column(10))
	}

	if got := w.withZoom(0, 0).zoom; got != minZoom {
		t.Errorf("zoom clamps to %d, got %d", minZoom, got)
	}
	if got := w.withZoom(10_000, 0).zoom; got != maxZoom {
		t.Errorf("zoom clamps to %d, got %d", maxZoom, got)
	}
}
