// ABOUTME: Settings panel state for editor configuration tuning
// ABOUTME: Handles integer setting adjustments with boundary checking

package tui

import "cutline/config"

// Setting is one editable configuration value
type Setting struct {
	Name  string
	Value *int // Points into the editor's local config
	Min   int
	Max   int
	Step  int
	// Default reads the setting's value from a config, used by reset
	Default func(config.Config) int
}

// SettingsPanel tracks the selected setting and applies adjustments
type SettingsPanel struct {
	settings []Setting
	selected int
}

// NewSettingsPanel creates a panel over settings
func NewSettingsPanel(settings []Setting) *SettingsPanel {
	return &SettingsPanel{settings: settings}
}

// editorSettings binds the tunable fields of cfg
func editorSettings(cfg *config.Config) []Setting {
	return []Setting{
		{"Snap distance", &cfg.SnapDistance, 0, 100, 1, func(c config.Config) int { return c.SnapDistance }},
		{"Track height", &cfg.TrackHeight, 2, 6, 1, func(c config.Config) int { return c.TrackHeight }},
		{"Undo limit", &cfg.UndoLimit, 10, 1000, 10, func(c config.Config) int { return c.UndoLimit }},
		{"Display fps", &cfg.FPS, 1, 120, 1, func(c config.Config) int { return c.FPS }},
		{"Backups kept", &cfg.BackupLimit, 0, 200, 5, func(c config.Config) int { return c.BackupLimit }},
	}
}

// Selected returns the index of the selected setting
func (p *SettingsPanel) Selected() int {
	return p.selected
}

// SetSelected selects index when it is in range
func (p *SettingsPanel) SetSelected(index int) {
	if index >= 0 && index < len(p.settings) {
		p.selected = index
	}
}

// SelectNext moves selection to the next setting
func (p *SettingsPanel) SelectNext() {
	p.SetSelected(p.selected + 1)
}

// SelectPrevious moves selection to the previous setting
func (p *SettingsPanel) SelectPrevious() {
	p.SetSelected(p.selected - 1)
}

// Increase steps the selected setting up
// Returns true if the value was changed
func (p *SettingsPanel) Increase() bool {
	return p.adjust(1)
}

// Decrease steps the selected setting down
// Returns true if the value was changed
func (p *SettingsPanel) Decrease() bool {
	return p.adjust(-1)
}

func (p *SettingsPanel) adjust(dir int) bool {
	s := p.Current()
	if s == nil {
		return false
	}

	next := min(max(*s.Value+dir*s.Step, s.Min), s.Max)
	if next == *s.Value {
		return false
	}

	*s.Value = next

	return true
}

// ResetToDefaults sets every setting back to its value in defaults
func (p *SettingsPanel) ResetToDefaults(defaults config.Config) {
	for _, s := range p.settings {
		if s.Default != nil {
			*s.Value = s.Default(defaults)
		}
	}
}

// Current returns the selected setting
func (p *SettingsPanel) Current() *Setting {
	if p.selected >= 0 && p.selected < len(p.settings) {
		return &p.settings[p.selected]
	}

	return nil
}

// Len returns the number of settings
func (p *SettingsPanel) Len() int {
	return len(p.settings)
}

// All returns all settings (for rendering)
func (p *SettingsPanel) All() []Setting {
	return p.settings
}
