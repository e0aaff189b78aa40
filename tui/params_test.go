// ABOUTME: Tests for the settings panel adjustment and navigation
// ABOUTME: Verifies boundary checking, clamping to range and reset functionality

package tui

import (
	"testing"

	"cutline/config"
)

func TestSettingsPanel_Selection(t *testing.T) {
	tests := []struct {
		name     string
		initial  int
		op       func(p *SettingsPanel)
		expected int
	}{
		{"select next", 0, (*SettingsPanel).SelectNext, 1},
		{"select next at end", 4, (*SettingsPanel).SelectNext, 4},
		{"select previous", 2, (*SettingsPanel).SelectPrevious, 1},
		{"select previous at start", 0, (*SettingsPanel).SelectPrevious, 0},
		{"set valid index", 0, func(p *SettingsPanel) { p.SetSelected(3) }, 3},
		{"set invalid negative", 2, func(p *SettingsPanel) { p.SetSelected(-1) }, 2},
		{"set invalid too high", 2, func(p *SettingsPanel) { p.SetSelected(10) }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			p := NewSettingsPanel(editorSettings(&cfg))
			p.SetSelected(tt.initial)

			tt.op(p)

			if p.Selected() != tt.expected {
				t.Errorf("Expected index %d, got %d", tt.expected, p.Selected())
			}
		})
	}
}

func TestSettingsPanel_Adjust(t *testing.T) {
	tests := []struct {
		name         string
		initial      int
		increase     bool
		expectChange bool
		expected     int
	}{
		{"increase from middle", 50, true, true, 60},
		{"increase clamps to max", 95, true, true, 100},
		{"increase at max", 100, true, false, 100},
		{"decrease from middle", 50, false, true, 40},
		{"decrease clamps to min", 5, false, true, 0},
		{"decrease at min", 0, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val := tt.initial
			p := NewSettingsPanel([]Setting{{Name: "test", Value: &val, Min: 0, Max: 100, Step: 10}})

			var changed bool
			if tt.increase {
				changed = p.Increase()
			} else {
				changed = p.Decrease()
			}

			if changed != tt.expectChange {
				t.Errorf("Expected changed=%v, got %v", tt.expectChange, changed)
			}
			if val != tt.expected {
				t.Errorf("Expected value %d, got %d", tt.expected, val)
			}
		})
	}
}

func TestSettingsPanel_EmptyIsSafe(t *testing.T) {
	p := NewSettingsPanel(nil)

	if p.Increase() || p.Decrease() {
		t.Error("adjusting an empty panel should report no change")
	}
	if p.Current() != nil {
		t.Error("Current on an empty panel should be nil")
	}
}

func TestSettingsPanel_ResetToDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewSettingsPanel(editorSettings(&cfg))

	for range 3 {
		p.Increase()
	}
	p.SetSelected(2)
	p.Decrease()

	if cfg.SnapDistance != 8 || cfg.UndoLimit != 90 {
		t.Fatalf("adjusted config = snap %d undo %d, want 8 and 90", cfg.SnapDistance, cfg.UndoLimit)
	}

	p.ResetToDefaults(config.DefaultConfig())

	if cfg.SnapDistance != 5 || cfg.UndoLimit != 100 {
		t.Errorf("reset config = snap %d undo %d, want 5 and 100", cfg.SnapDistance, cfg.UndoLimit)
	}
}
