// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model editing a timeline through its request API with undo/redo

// Package tui provides an interactive terminal editor for MLT timelines.
package tui

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"cutline/config"
	"cutline/timeline"
	"cutline/undo"
)

// Panel identifiers
const (
	panelSettings = "settings"
	panelTimeline = "timeline"
)

// Layout constants for UI dimensions
const (
	settingsPanelWidth = 32 // Left panel width for settings
	panelPadding       = 2  // Horizontal spacing between panels
	trackLabelWidth    = 14 // Track name column in front of each strip

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // Panel title bars
	rulerHeight     = 1 // Frame ruler above the tracks
	statusBarHeight = 1 // Bottom status bar
	inspectorHeight = 1 // Selected item details
	helpHeight      = 1 // Help text line
	spacingHeight   = 2 // Vertical spacing between elements
	totalUIChrome   = titleHeight + rulerHeight + statusBarHeight + inspectorHeight + helpHeight + spacingHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 5
)

// Editing constants
const (
	statusMessageDuration = 5 * time.Second // How long to show transient status messages
	reloadGrace           = 2 * time.Second // File events this soon after our own save are ignored
	defaultComposition    = "luma"
)

// fileChangeMsg is sent when a watched file changes
type fileChangeMsg struct {
	path string
}

// reloadCompleteMsg is sent after a project reload completes
type reloadCompleteMsg struct {
	project *Project
	err     error
}

// model holds the TUI state
type model struct {
	// Dependencies
	sharedConfig *config.SharedConfig
	loader       ProjectLoader
	writer       ProjectWriter
	logger       Logger
	configPath   string

	// Configuration
	localConfig *config.Config // Settings point into it, pointer so addresses stay valid
	settings    *SettingsPanel

	// Project
	project    *Project
	stack      *undo.Stack
	mirror     *rowMirror
	outputPath string
	dryRun     bool
	modified   bool
	guides     []int // Snap points added at the playhead

	// File watching
	watcher  *fsnotify.Watcher
	lastSave time.Time

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string    // Temporary status message (e.g., "Project saved")
	statusMsgAge time.Time // When status message was set
	focusedPanel string

	// Timeline navigation
	trackCursor int // Row from the top track
	playhead    int
	selected    int // Selected item, timeline.NoID when none
	marked      map[int]bool
	frames      frameWindow
	viewport    viewport.Model
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	NextSnap key.Binding
	PrevSnap key.Binding
	// Selection
	Select   key.Binding
	Clear    key.Binding
	NextItem key.Binding
	PrevItem key.Binding
	Mark     key.Binding
	// Editing
	MoveLeft    key.Binding
	MoveRight   key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	Shrink      key.Binding
	Grow        key.Binding
	Cut         key.Binding
	Delete      key.Binding
	Disable     key.Binding
	Group       key.Binding
	Ungroup     key.Binding
	Composition key.Binding
	Guide       key.Binding
	Lock        key.Binding
	Mute        key.Binding
	Undo        key.Binding
	Redo        key.Binding
	// View
	ZoomIn  key.Binding
	ZoomOut key.Binding
	// Files and panels
	Save   key.Binding
	Reload key.Binding
	Tab    key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "track up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "track down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "playhead back")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "playhead forward")),
	PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page back")),
	PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page forward")),
	Home:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "start")),
	End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "end")),
	NextSnap:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next edit point")),
	PrevSnap:    key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "previous edit point")),
	Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select at playhead")),
	Clear:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	NextItem:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next item")),
	PrevItem:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous item")),
	Mark:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark for grouping")),
	MoveLeft:    key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "move left")),
	MoveRight:   key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "move right")),
	MoveUp:      key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move to track above")),
	MoveDown:    key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move to track below")),
	Shrink:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink")),
	Grow:        key.NewBinding(key.WithKeys("="), key.WithHelp("=", "grow")),
	Cut:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cut at playhead")),
	Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Disable:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "enable/disable")),
	Group:       key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "group")),
	Ungroup:     key.NewBinding(key.WithKeys("alt+g"), key.WithHelp("alt+g", "ungroup")),
	Composition: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add dissolve")),
	Guide:       key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "toggle guide")),
	Lock:        key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "lock track")),
	Mute:        key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "mute track")),
	Undo:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
	Redo:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
	ZoomIn:      key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zoom in")),
	ZoomOut:     key.NewBinding(key.WithKeys("Z"), key.WithHelp("Z", "zoom out")),
	Save:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
	Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload / reset settings")),
	Tab:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paramStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedParamStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true).
				Padding(0, 1)

	rulerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))

	clipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	audioClipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	compositionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11"))

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("12")).
				Foreground(lipgloss.Color("0")).
				Bold(true)

	markedItemStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)

	invalidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Run starts the editor with injected dependencies
func Run(opts Options, deps Dependencies) error {
	project, err := deps.Loader.Load(opts.ProjectPath)
	if err != nil {
		return err
	}

	m := initModel(project, opts, deps)

	if opts.Watch {
		watcher, err := newWatcher(opts.ProjectPath, deps.ConfigPath)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()

		m.watcher = watcher
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Save the edited project on exit (unless dry-run mode)
	if m, ok := finalModel.(model); ok && m.modified {
		if m.dryRun {
			fmt.Println("\n--dry-run mode: project not modified")
			return nil
		}

		if err := m.writer.Write(m.outputPath, m.project); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}

		fmt.Printf("\nSaved project to: %s\n", m.outputPath)
	}

	return nil
}

// initModel creates the initial model with injected dependencies
func initModel(project *Project, opts Options, deps Dependencies) model {
	shared := deps.Config
	if shared == nil {
		shared = config.NewSharedConfig(config.DefaultConfig())
	}

	logger := deps.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	// Allocate localConfig on heap so pointers remain valid
	cfg := shared.Get()
	localConfig := &cfg

	outputPath := opts.ProjectPath
	if opts.OutputPath != "" {
		outputPath = opts.OutputPath
	}

	m := model{
		sharedConfig: shared,
		loader:       deps.Loader,
		writer:       deps.Writer,
		logger:       logger,
		configPath:   deps.ConfigPath,

		localConfig: localConfig,
		settings:    NewSettingsPanel(editorSettings(localConfig)),

		outputPath: outputPath,
		dryRun:     opts.DryRun,
		mirror:     newRowMirror(logger),

		viewport:     viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		focusedPanel: panelTimeline,
		selected:     timeline.NoID,
		marked:       make(map[int]bool),
		frames:       newFrameWindow(minViewportWidth, 1),
	}

	m.bindProject(project)

	return m
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	if m.watcher == nil {
		return tea.EnterAltScreen
	}

	return tea.Batch(waitForFileChange(m.watcher, m.logger), tea.EnterAltScreen)
}

// bindProject makes p the edited project with a fresh undo history
func (m *model) bindProject(p *Project) {
	if m.project != nil && m.project.Timeline != nil {
		m.project.Timeline.SetView(nil)
		m.project.Timeline.SetUndoStack(nil)
	}

	m.project = p
	m.stack = undo.NewStack(m.localConfig.UndoLimit)
	m.modified = false
	m.selected = timeline.NoID
	m.marked = make(map[int]bool)
	m.guides = nil

	p.Timeline.SetUndoStack(m.stack)
	p.Timeline.SetView(m.mirror)
	m.mirror.reset(p.Timeline)

	m.trackCursor = min(m.trackCursor, max(len(p.Timeline.TrackIDs())-1, 0))
	m.playhead = min(m.playhead, p.Timeline.Duration())
}

// ========== Helpers ==========

// tracksTopDown returns track ids in display order, top track first
func (m *model) tracksTopDown() []int {
	ids := m.project.Timeline.TrackIDs()
	slices.Reverse(ids)

	return ids
}

// currentTrack returns the track under the cursor
func (m *model) currentTrack() (int, bool) {
	ids := m.tracksTopDown()
	if m.trackCursor < 0 || m.trackCursor >= len(ids) {
		return timeline.NoID, false
	}

	return ids[m.trackCursor], true
}

// trackItems returns the clips then compositions of a track, each by position
func (m *model) trackItems(trackID int) []int {
	tl := m.project.Timeline
	return append(tl.TrackClips(trackID), tl.TrackCompositions(trackID)...)
}

// itemSpan returns the track, position and length of a placed item
func (m *model) itemSpan(id int) (track, pos, length int, ok bool) {
	tl := m.project.Timeline

	if c, found := tl.Clip(id); found && c.TrackID != timeline.NoID {
		return c.TrackID, c.Position, c.PlayTime(), true
	}

	if c, found := tl.Composition(id); found && c.TrackID != timeline.NoID {
		return c.TrackID, c.Position, c.PlayTime(), true
	}

	return timeline.NoID, 0, 0, false
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// step is how far a nudge moves: one terminal column
func (m *model) step() int {
	return m.frames.zoom
}

// setPlayhead moves the playhead and keeps it visible
func (m *model) setPlayhead(pos int) {
	m.playhead = max(pos, 0)
	m.frames = m.frames.follow(m.playhead, m.project.Timeline.Duration())
	m.updateViewportContent()
}

// setTrackCursor moves the track cursor and keeps it visible
func (m *model) setTrackCursor(row int) {
	n := len(m.project.Timeline.TrackIDs())
	if n == 0 {
		m.trackCursor = 0
		return
	}

	m.trackCursor = min(max(row, 0), n-1)
	m.ensureCursorVisible()
	m.updateViewportContent()
}

// ensureCursorVisible adjusts the viewport so the cursor track is on screen
func (m *model) ensureCursorVisible() {
	height := m.localConfig.TrackHeight
	tracks := len(m.project.Timeline.TrackIDs())
	visible := max(m.viewport.Height/height, 1)

	m.viewport.SetYOffset(scrollOffset(visible, m.trackCursor, tracks) * height)
}

// selectAtPlayhead selects the clip under the playhead on the cursor track,
// or the composition there when there is no clip
func (m *model) selectAtPlayhead() {
	trackID, ok := m.currentTrack()
	if !ok {
		return
	}

	tl := m.project.Timeline
	if id, found := tl.ClipAt(trackID, m.playhead); found {
		m.selected = id
		m.updateViewportContent()

		return
	}

	for _, id := range tl.TrackCompositions(trackID) {
		if _, pos, length, ok := m.itemSpan(id); ok && m.playhead >= pos && m.playhead < pos+length {
			m.selected = id
			m.updateViewportContent()

			return
		}
	}

	m.setStatusMsg("Nothing under the playhead")
}

// cycleItem selects the next (dir 1) or previous (dir -1) item on the cursor track
func (m *model) cycleItem(dir int) {
	trackID, ok := m.currentTrack()
	if !ok {
		return
	}

	items := m.trackItems(trackID)
	if len(items) == 0 {
		return
	}

	idx := slices.Index(items, m.selected)
	switch {
	case idx < 0 && dir > 0:
		idx = 0
	case idx < 0:
		idx = len(items) - 1
	default:
		idx = (idx + dir + len(items)) % len(items)
	}

	m.selected = items[idx]
	if _, pos, _, ok := m.itemSpan(m.selected); ok {
		m.setPlayhead(pos)
	}
}

// toggleMark adds or removes the selection from the grouping set
func (m *model) toggleMark() {
	if m.selected == timeline.NoID {
		return
	}

	if m.marked[m.selected] {
		delete(m.marked, m.selected)
	} else {
		m.marked[m.selected] = true
	}

	m.updateViewportContent()
}

// ========== Edit actions ==========

// afterEdit reports the outcome of a request and refreshes the display
func (m *model) afterEdit(action string, ok bool) {
	if !ok {
		m.setStatusMsg("Cannot " + action)
		m.logger.Debugf("[TUI] Rejected: %s", action)

		return
	}

	m.modified = true
	m.sync()
	m.setStatusMsg(fmt.Sprintf("%s (U:%d R:%d)", capitalize(action), m.stack.UndoSize(), m.stack.RedoSize()))
}

// sync drops stale selections and redraws after the model changed
func (m *model) sync() {
	tl := m.project.Timeline

	changed := m.mirror.takeChanged()
	m.logger.Debugf("[TUI] %d items changed", len(changed))

	if err := m.mirror.verify(tl); err != nil {
		m.logger.Debugf("[TUI] Row mirror out of sync: %v", err)
		m.mirror.reset(tl)
	}

	if _, _, _, ok := m.itemSpan(m.selected); !ok {
		m.selected = timeline.NoID
	}

	for id := range m.marked {
		if _, _, _, ok := m.itemSpan(id); !ok {
			delete(m.marked, id)
		}
	}

	m.setTrackCursor(m.trackCursor)
	m.frames = m.frames.follow(m.playhead, tl.Duration())
	m.updateViewportContent()
}

// moveSelected moves the selection by delta frames, snapping to nearby edit points
func (m *model) moveSelected(delta int) {
	trackID, pos, _, ok := m.itemSpan(m.selected)
	if !ok {
		return
	}

	tl := m.project.Timeline
	target := pos + delta
	snap := m.localConfig.SnapDistance

	if tl.IsClip(m.selected) {
		target = tl.SuggestClipMove(m.selected, trackID, target, snap)
		if target == pos {
			// Snapping pulled the item back, step past the snap point
			target = tl.SuggestClipMove(m.selected, trackID, pos+delta, 0)
		}
		m.afterEdit("move clip", target != pos && tl.RequestClipMove(m.selected, trackID, target, true))

		return
	}

	target = tl.SuggestCompositionMove(m.selected, trackID, target, snap)
	if target == pos {
		target = tl.SuggestCompositionMove(m.selected, trackID, pos+delta, 0)
	}
	m.afterEdit("move composition", target != pos && tl.RequestCompositionMove(m.selected, trackID, target, true))
}

// moveSelectedTrack moves the selection to the track dir rows up (dir -1) or down (dir 1)
func (m *model) moveSelectedTrack(dir int) {
	trackID, pos, _, ok := m.itemSpan(m.selected)
	if !ok {
		return
	}

	ids := m.tracksTopDown()
	row := slices.Index(ids, trackID) + dir
	if row < 0 || row >= len(ids) {
		return
	}

	tl := m.project.Timeline

	var moved bool
	if tl.IsClip(m.selected) {
		moved = tl.RequestClipMove(m.selected, ids[row], pos, true)
	} else {
		moved = tl.RequestCompositionMove(m.selected, ids[row], pos, true)
	}

	m.afterEdit("move to another track", moved)

	if moved {
		m.setTrackCursor(row)
	}
}

// resizeSelected changes the length of the selection by delta frames, keeping its start
func (m *model) resizeSelected(delta int) {
	_, _, length, ok := m.itemSpan(m.selected)
	if !ok {
		return
	}

	tl := m.project.Timeline
	if tl.IsClip(m.selected) {
		m.afterEdit("resize clip", tl.RequestClipResize(m.selected, length+delta, true, true))
	} else {
		m.afterEdit("resize composition", tl.RequestCompositionResize(m.selected, length+delta, true, true))
	}
}

// cutAtPlayhead splits the selected clip, or the clip under the playhead, at the playhead
func (m *model) cutAtPlayhead() {
	tl := m.project.Timeline

	clipID := m.selected
	if !tl.IsClip(clipID) {
		trackID, ok := m.currentTrack()
		if !ok {
			return
		}
		if clipID, ok = tl.ClipAt(trackID, m.playhead); !ok {
			m.setStatusMsg("No clip under the playhead")
			return
		}
	}

	newID, ok := tl.RequestClipCut(clipID, m.playhead, true)
	m.afterEdit("cut clip", ok)

	if ok {
		m.selected = newID
		m.updateViewportContent()
	}
}

// deleteSelected removes the selection, with its group
func (m *model) deleteSelected() {
	if m.selected == timeline.NoID {
		return
	}

	m.afterEdit("delete", m.project.Timeline.RequestItemDeletion(m.selected, true))
}

// toggleDisabled flips the disabled state of the selected clip
func (m *model) toggleDisabled() {
	c, ok := m.project.Timeline.Clip(m.selected)
	if !ok {
		return
	}

	m.afterEdit("toggle clip", m.project.Timeline.RequestClipDisable(c.ID, !c.Disabled, true))
}

// groupMarked groups the marked items with the selection
func (m *model) groupMarked() {
	ids := make([]int, 0, len(m.marked)+1)
	for id := range m.marked {
		ids = append(ids, id)
	}
	if m.selected != timeline.NoID && !m.marked[m.selected] {
		ids = append(ids, m.selected)
	}
	slices.Sort(ids)

	_, ok := m.project.Timeline.RequestClipsGroup(ids, true)
	m.afterEdit("group", ok)

	if ok {
		m.marked = make(map[int]bool)
		m.updateViewportContent()
	}
}

// ungroupSelected dissolves the group of the selection
func (m *model) ungroupSelected() {
	if m.selected == timeline.NoID {
		return
	}

	m.afterEdit("ungroup", m.project.Timeline.RequestClipUngroup(m.selected, true))
}

// insertComposition adds a one second dissolve at the playhead on the cursor track
func (m *model) insertComposition() {
	trackID, ok := m.currentTrack()
	if !ok {
		return
	}

	id, ok := m.project.Timeline.RequestCompositionInsertion(defaultComposition, trackID, m.playhead, m.localConfig.FPS, nil, true)
	m.afterEdit("add composition", ok)

	if ok {
		m.selected = id
		m.updateViewportContent()
	}
}

// toggleGuide adds a snap point at the playhead, or removes the guide already there
func (m *model) toggleGuide() {
	tl := m.project.Timeline

	if idx := slices.Index(m.guides, m.playhead); idx >= 0 {
		tl.RemoveSnapPoint(m.playhead)
		m.guides = slices.Delete(m.guides, idx, idx+1)
		m.setStatusMsg("Guide removed")
	} else {
		tl.AddSnapPoint(m.playhead)
		m.guides = append(m.guides, m.playhead)
		m.setStatusMsg("Guide added")
	}

	m.updateViewportContent()
}

// toggleTrackFlag flips the lock (lock true) or mute flag of the cursor track
func (m *model) toggleTrackFlag(lock bool) {
	trackID, ok := m.currentTrack()
	if !ok {
		return
	}

	info, _ := m.project.Timeline.Track(trackID)
	props := timeline.TrackProps{Name: info.Name, Locked: info.Locked, Muted: info.Muted}

	action := "mute track"
	if lock {
		props.Locked = !props.Locked
		action = "lock track"
	} else {
		props.Muted = !props.Muted
	}

	m.afterEdit(action, m.project.Timeline.RequestTrackProperty(trackID, props, true))
}

// undo reverts the last edit
func (m *model) undo() {
	label := m.stack.UndoLabel()
	if !m.stack.Undo() {
		m.setStatusMsg("Nothing to undo")
		return
	}

	m.modified = true
	m.sync()
	m.setStatusMsg(fmt.Sprintf("Undo %s (U:%d R:%d)", label, m.stack.UndoSize(), m.stack.RedoSize()))
}

// redo re-applies the last undone edit
func (m *model) redo() {
	label := m.stack.RedoLabel()
	if !m.stack.Redo() {
		m.setStatusMsg("Nothing to redo")
		return
	}

	m.modified = true
	m.sync()
	m.setStatusMsg(fmt.Sprintf("Redo %s (U:%d R:%d)", label, m.stack.UndoSize(), m.stack.RedoSize()))
}

// save writes the project to the output path
func (m *model) save() {
	if m.dryRun {
		m.setStatusMsg("Dry run: not saved")
		return
	}

	if err := m.writer.Write(m.outputPath, m.project); err != nil {
		m.logger.Debugf("[TUI] Save failed: %v", err)
		m.setStatusMsg("Save failed: " + err.Error())

		return
	}

	m.modified = false
	m.lastSave = time.Now()
	m.setStatusMsg("Saved " + m.outputPath)
	m.logger.Debugf("[TUI] Saved project to %s", m.outputPath)
}

// reloadProject loads the project in the background
func (m *model) reloadProject() tea.Cmd {
	loader, path := m.loader, m.project.Path

	return func() tea.Msg {
		p, err := loader.Load(path)
		return reloadCompleteMsg{project: p, err: err}
	}
}

// syncSettings publishes the local config after a settings change
func (m *model) syncSettings() {
	m.sharedConfig.Update(*m.localConfig)

	if s := m.settings.Current(); s != nil {
		m.logger.Debugf("[TUI] Setting changed - %s: %d", s.Name, *s.Value)
	}

	m.ensureCursorVisible()
	m.updateViewportContent()
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}

	return string(s[0]-'a'+'A') + s[1:]
}
