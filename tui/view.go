// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and the track strip renderer

package tui

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"cutline/melt"
	"cutline/timeline"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debugf("[PANIC] View panic: %v", r)
			m.logger.Debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Saving config and exiting...\n"
	}

	leftPanel := m.renderSettings()
	rightPanel := m.renderTimeline()

	// Both panels share a height so they join cleanly
	panelHeight := m.height - (statusBarHeight + inspectorHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(settingsPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := max(m.width-settingsPanelWidth-panelPadding, minViewportWidth*2)

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(leftPanel),
		rightPanelStyle.Render(rightPanel),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderInspector() + "\n" + m.renderHelp()
}

// renderSettings renders the settings panel
func (m model) renderSettings() string {
	var s strings.Builder

	title := "Settings"
	if m.focusedPanel == panelSettings {
		title = "► " + title + " [FOCUSED]"
	}
	s.WriteString(titleStyle.Render(title) + "\n\n")

	for i, setting := range m.settings.All() {
		prefix := "  "
		if i == m.settings.Selected() {
			prefix = "► "
		}

		// Fixed width formatting to prevent column misalignment
		line := fmt.Sprintf("%s%-18s %5d", prefix, setting.Name, *setting.Value)

		if i == m.settings.Selected() {
			s.WriteString(selectedParamStyle.Render(line) + "\n")
		} else {
			s.WriteString(paramStyle.Render(line) + "\n")
		}
	}

	fmt.Fprintf(&s, "\n  Zoom %d frames/col\n", m.frames.zoom)
	if len(m.guides) > 0 {
		fmt.Fprintf(&s, "  Guides %d\n", len(m.guides))
	}

	return s.String()
}

// renderTimeline renders the ruler and the scrolled track list
func (m model) renderTimeline() string {
	var s strings.Builder

	title := "Timeline " + truncate(m.project.Path, 40)
	if m.modified {
		title += " [modified]"
	}
	if m.focusedPanel == panelTimeline {
		title = "► " + title + " [FOCUSED]"
	}
	s.WriteString(titleStyle.Render(title) + "\n\n")

	s.WriteString(rulerStyle.Render(m.renderRuler()) + "\n")

	// Render viewport (content is set in Update())
	s.WriteString(m.viewport.View())

	return s.String()
}

// renderRuler marks every tenth column with its timecode, guides with ◆ and the playhead with ▼
func (m model) renderRuler() string {
	cols := []rune(strings.Repeat(" ", m.frames.columns))

	for col := 0; col < len(cols); col += 10 {
		label := []rune(melt.Timecode(m.frames.frameAt(col), float64(m.localConfig.FPS)))
		if col+len(label) > len(cols) {
			break
		}
		cols[col] = '|'
		copy(cols[col+1:], label[3:]) // Drop the hours
	}

	for _, guide := range m.guides {
		if col := m.frames.column(guide); col >= 0 {
			cols[col] = '◆'
		}
	}

	if col := m.frames.column(m.playhead); col >= 0 {
		cols[col] = '▼'
	}

	return strings.Repeat(" ", trackLabelWidth+1) + string(cols)
}

// updateViewportContent builds and sets the viewport content
// Renders ALL tracks - let viewport handle scrolling
func (m *model) updateViewportContent() {
	var content strings.Builder

	height := m.localConfig.TrackHeight

	for row, trackID := range m.tracksTopDown() {
		info, _ := m.project.Timeline.Track(trackID)

		label := fmt.Sprintf("%-*s", trackLabelWidth, truncate(trackLabel(info), trackLabelWidth))
		if row == m.trackCursor {
			label = cursorStyle.Render(label)
		}

		content.WriteString(label + " " + m.renderStrip(m.project.Timeline.TrackClips(trackID), true) + "\n")

		for line := 1; line < height; line++ {
			pad := strings.Repeat(" ", trackLabelWidth+1)
			if line == 1 {
				content.WriteString(pad + m.renderStrip(m.project.Timeline.TrackCompositions(trackID), false) + "\n")
			} else {
				content.WriteString("\n")
			}
		}
	}

	m.viewport.SetContent(content.String())
}

// trackLabel is the name column: kind, name and flags
func trackLabel(info timeline.TrackInfo) string {
	kind := "V"
	if info.Audio {
		kind = "A"
	}

	flags := ""
	if info.Locked {
		flags += "L"
	}
	if info.Muted {
		flags += "M"
	}
	if flags != "" {
		flags = " " + flags
	}

	return kind + " " + info.Name + flags
}

// stripSegment is one item drawn on a strip
type stripSegment struct {
	first, last int // Columns
	text        []rune
	style       lipgloss.Style
}

// renderStrip draws items as [name] blocks on the visible frame range
func (m model) renderStrip(ids []int, isClip bool) string {
	cols := m.frames.columns
	lastFrame := m.frames.start + m.frames.frames() - 1

	var segments []stripSegment

	for _, id := range ids {
		_, pos, length, ok := m.itemSpan(id)
		if !ok || pos > lastFrame || pos+length <= m.frames.start {
			continue
		}

		first := m.frames.column(max(pos, m.frames.start))
		last := m.frames.column(min(pos+length-1, lastFrame))
		if first < 0 || last < 0 {
			continue
		}

		text, style := m.itemLook(id, isClip)

		width := last - first + 1
		body := []rune(strings.Repeat(" ", width))
		copy(body, text)
		if width > 1 {
			body[0], body[width-1] = '[', ']'
			copy(body[1:width-1], text)
		}

		segments = append(segments, stripSegment{first: first, last: last, text: body, style: style})
	}

	var b strings.Builder

	col := 0
	for _, seg := range segments {
		if seg.first < col {
			continue
		}

		b.WriteString(m.blank(col, seg.first))
		b.WriteString(seg.style.Render(string(seg.text)))
		col = seg.last + 1
	}
	b.WriteString(m.blank(col, cols))

	return b.String()
}

// blank draws empty columns [from, to), marking the playhead
func (m model) blank(from, to int) string {
	if from >= to {
		return ""
	}

	cols := []rune(strings.Repeat("·", to-from))
	if col := m.frames.column(m.playhead); col >= from && col < to {
		cols[col-from] = '│'
	}

	return string(cols)
}

// itemLook returns the label and style of an item
func (m model) itemLook(id int, isClip bool) ([]rune, lipgloss.Style) {
	tl := m.project.Timeline

	var (
		name  string
		style lipgloss.Style
	)

	if isClip {
		c, _ := tl.Clip(id)
		name = c.Name
		style = clipStyle
		if c.Audio {
			style = audioClipStyle
		}
		if c.Disabled {
			name = strings.ToLower(name)
			style = helpStyle
		}
	} else {
		c, _ := tl.Composition(id)
		name = c.ServiceID
		style = compositionStyle
		if !c.Valid {
			style = invalidStyle
		}
	}

	if tl.IsGrouped(id) {
		name = "*" + name
	}

	switch {
	case id == m.selected:
		style = selectedItemStyle
	case m.marked[id]:
		style = markedItemStyle.Inherit(style)
	}

	return []rune(name), style
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	// Show status message if recent
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	tl := m.project.Timeline
	fps := float64(m.localConfig.FPS)

	trackInfo := fmt.Sprintf("Track %d/%d", m.trackCursor+1, len(tl.TrackIDs()))

	undoInfo := fmt.Sprintf("U:%d R:%d", m.stack.UndoSize(), m.stack.RedoSize())
	if label := m.stack.UndoLabel(); label != "" {
		undoInfo += " (" + label + ")"
	}

	editFlag := ""
	if m.modified {
		editFlag = "[MODIFIED] "
	}

	status := fmt.Sprintf("%s%s | @ %s / %s | %d clips | %s",
		editFlag,
		trackInfo,
		melt.Timecode(m.playhead, fps),
		melt.Timecode(tl.Duration(), fps),
		len(tl.ClipIDs()),
		undoInfo,
	)

	return statusStyle.Width(m.width).Render(status)
}

// renderInspector describes the selected item
func (m model) renderInspector() string {
	if m.selected == timeline.NoID {
		return helpStyle.Render(" No selection")
	}

	tl := m.project.Timeline
	fps := float64(m.localConfig.FPS)

	group := ""
	if n := len(tl.GroupElements(m.selected)); n > 1 {
		group = fmt.Sprintf(" | group of %d", n)
	}

	if c, ok := tl.Clip(m.selected); ok {
		state := ""
		if c.Disabled {
			state = " | disabled"
		}

		return helpStyle.Render(fmt.Sprintf(" Clip %d %q | bin %s | %s +%d | in %d out %d / %d%s%s",
			c.ID, c.Name, c.BinID, melt.Timecode(c.Position, fps), c.PlayTime(), c.In, c.Out, c.MaxDuration, group, state))
	}

	if c, ok := tl.Composition(m.selected); ok {
		aTrack := "background"
		if c.ATrack != timeline.NoID {
			info, _ := tl.Track(c.ATrack)
			aTrack = info.Name
		}
		if c.ForcedATrack != timeline.NoID {
			aTrack += " (forced)"
		}

		return helpStyle.Render(fmt.Sprintf(" Composition %d %s | %s +%d | over %s%s",
			c.ID, c.ServiceID, melt.Timecode(c.Position, fps), c.PlayTime(), aTrack, group))
	}

	return ""
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	if m.focusedPanel == panelSettings {
		return helpStyle.Render(" Tab: timeline | ↑/↓: select | ←/→: adjust | r: reset | q: quit")
	}

	return helpStyle.Render(" Tab: settings | ↑/↓ track | ←/→ playhead | enter/[/] select | </> move | J/K track | -/= resize | x cut | d delete | e disable | m mark | ^g group | c dissolve | M guide | u undo | ^r redo | w save | q quit")
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
