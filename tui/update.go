// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"cutline/config"
	"cutline/timeline"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debugf("[PANIC] Update panic: %v", r)
			m.logger.Debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case fileChangeMsg:
		return m, m.handleFileChange(msg)

	case reloadCompleteMsg:
		if msg.err != nil {
			m.logger.Debugf("[TUI] Reload failed: %v", msg.err)
			m.setStatusMsg("Reload failed: " + msg.err.Error())

			return m, nil
		}

		m.bindProject(msg.project)
		m.sync()
		m.setStatusMsg("Reloaded " + msg.project.Path)

		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m.handleQuitKey()
		}

		if m.focusedPanel == panelSettings {
			return m, m.handleSettingsKey(msg)
		}

		return m, m.handleTimelineKey(msg)
	}

	return m, nil
}

// resize lays the panels out for a new terminal size
func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	// Right panel width: total width - left panel - padding
	viewportWidth := max(width-settingsPanelWidth-panelPadding, minViewportWidth)

	// Height: total height minus all UI chrome
	viewportHeight := max(height-totalUIChrome, minViewportHeight)

	// The right panel pads one column on each side
	m.viewport.Width = viewportWidth - 2
	m.viewport.Height = viewportHeight

	// Strip columns: the viewport minus the track label column and its gap
	m.frames.columns = max(m.viewport.Width-trackLabelWidth-1, 1)
	m.frames = m.frames.follow(m.playhead, m.project.Timeline.Duration())

	m.viewport.YOffset = 0
	m.ensureCursorVisible()
	m.updateViewportContent()
}

// handleFileChange reloads config or project after an external write
func (m *model) handleFileChange(msg fileChangeMsg) tea.Cmd {
	var next tea.Cmd
	if m.watcher != nil {
		next = waitForFileChange(m.watcher, m.logger)
	}

	switch {
	case samePath(msg.path, m.configPath):
		cfg, err := config.LoadConfig(m.configPath)
		if err != nil {
			m.logger.Debugf("[TUI] Config reload failed: %v", err)
			m.setStatusMsg("Config reload failed: " + err.Error())

			return next
		}

		m.sharedConfig.Update(cfg)
		*m.localConfig = cfg
		m.ensureCursorVisible()
		m.updateViewportContent()
		m.setStatusMsg("Config reloaded")

		return next

	case samePath(msg.path, m.project.Path):
		if time.Since(m.lastSave) < reloadGrace {
			return next
		}

		if m.modified {
			m.setStatusMsg("Project changed on disk, press r to reload and drop your edits")
			return next
		}

		return tea.Batch(m.reloadProject(), next)
	}

	return next
}

// handleQuitKey handles the quit key press
func (m *model) handleQuitKey() (model, tea.Cmd) {
	m.quitting = true

	// Save config on quit
	if m.configPath != "" {
		if err := config.SaveConfig(m.configPath, m.sharedConfig.Get()); err != nil {
			m.logger.Debugf("[TUI] Failed to save config on quit: %v", err)
			// Continue anyway - don't block quit on config save failure
		}
	}

	return *m, tea.Quit
}

// handleSettingsKey handles keys while the settings panel has focus
func (m *model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Tab):
		m.focusedPanel = panelTimeline
	case key.Matches(msg, keys.Up):
		m.settings.SelectPrevious()
	case key.Matches(msg, keys.Down):
		m.settings.SelectNext()
	case key.Matches(msg, keys.Left):
		if m.settings.Decrease() {
			m.syncSettings()
		}
	case key.Matches(msg, keys.Right):
		if m.settings.Increase() {
			m.syncSettings()
		}
	case key.Matches(msg, keys.Reload):
		m.settings.ResetToDefaults(config.DefaultConfig())
		m.syncSettings()
		m.setStatusMsg("Settings reset to defaults")
	}

	return nil
}

// handleTimelineKey handles keys while the timeline has focus
func (m *model) handleTimelineKey(msg tea.KeyMsg) tea.Cmd {
	tl := m.project.Timeline

	switch {
	case key.Matches(msg, keys.Tab):
		m.focusedPanel = panelSettings

	// Navigation
	case key.Matches(msg, keys.Up):
		m.setTrackCursor(m.trackCursor - 1)
	case key.Matches(msg, keys.Down):
		m.setTrackCursor(m.trackCursor + 1)
	case key.Matches(msg, keys.Left):
		m.setPlayhead(m.playhead - m.step())
	case key.Matches(msg, keys.Right):
		m.setPlayhead(m.playhead + m.step())
	case key.Matches(msg, keys.PageUp):
		m.setPlayhead(m.playhead - m.frames.frames())
	case key.Matches(msg, keys.PageDown):
		m.setPlayhead(m.playhead + m.frames.frames())
	case key.Matches(msg, keys.Home):
		m.setPlayhead(0)
	case key.Matches(msg, keys.End):
		m.setPlayhead(tl.Duration())
	case key.Matches(msg, keys.NextSnap):
		m.setPlayhead(tl.RequestNextSnapPos(m.playhead))
	case key.Matches(msg, keys.PrevSnap):
		m.setPlayhead(tl.RequestPreviousSnapPos(m.playhead))
	case key.Matches(msg, keys.ZoomIn):
		m.frames = m.frames.withZoom(m.frames.zoom/2, m.playhead)
		m.updateViewportContent()
	case key.Matches(msg, keys.ZoomOut):
		m.frames = m.frames.withZoom(m.frames.zoom*2, m.playhead)
		m.updateViewportContent()

	// Selection
	case key.Matches(msg, keys.Select):
		m.selectAtPlayhead()
	case key.Matches(msg, keys.Clear):
		m.selected = timeline.NoID
		m.updateViewportContent()
	case key.Matches(msg, keys.NextItem):
		m.cycleItem(1)
	case key.Matches(msg, keys.PrevItem):
		m.cycleItem(-1)
	case key.Matches(msg, keys.Mark):
		m.toggleMark()

	// Editing
	case key.Matches(msg, keys.MoveLeft):
		m.moveSelected(-m.step())
	case key.Matches(msg, keys.MoveRight):
		m.moveSelected(m.step())
	case key.Matches(msg, keys.MoveUp):
		m.moveSelectedTrack(-1)
	case key.Matches(msg, keys.MoveDown):
		m.moveSelectedTrack(1)
	case key.Matches(msg, keys.Shrink):
		m.resizeSelected(-m.step())
	case key.Matches(msg, keys.Grow):
		m.resizeSelected(m.step())
	case key.Matches(msg, keys.Cut):
		m.cutAtPlayhead()
	case key.Matches(msg, keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, keys.Disable):
		m.toggleDisabled()
	case key.Matches(msg, keys.Group):
		m.groupMarked()
	case key.Matches(msg, keys.Ungroup):
		m.ungroupSelected()
	case key.Matches(msg, keys.Composition):
		m.insertComposition()
	case key.Matches(msg, keys.Guide):
		m.toggleGuide()
	case key.Matches(msg, keys.Lock):
		m.toggleTrackFlag(true)
	case key.Matches(msg, keys.Mute):
		m.toggleTrackFlag(false)
	case key.Matches(msg, keys.Undo):
		m.undo()
	case key.Matches(msg, keys.Redo):
		m.redo()

	// Files
	case key.Matches(msg, keys.Save):
		m.save()
	case key.Matches(msg, keys.Reload):
		return m.reloadProject()
	}

	return nil
}
