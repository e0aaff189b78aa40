// ABOUTME: Shared initialization code for all commands
// ABOUTME: Provides debug logging, config loading and project loading/saving through melt and the bin

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"cutline/bin"
	"cutline/config"
	"cutline/melt"
	"cutline/timeline"
	"cutline/tui"
)

var debugLog *log.Logger

// debugLogger routes library traces into the debug log
type debugLogger struct{}

func (debugLogger) Debugf(format string, args ...any) {
	debugf(format, args...)
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	fileInfo, _ := os.Stdout.Stat()
	if fileInfo != nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...any) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// loadConfig reads the config named by --config, or the default location
func loadConfig() (config.Config, string, error) {
	path := configFlag
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, path, err
	}

	debugf("[CONFIG] Loaded %s", path)

	return cfg, path, nil
}

// newTimeline creates an empty timeline accepting the configured transitions
func newTimeline(cfg config.Config) *timeline.Timeline {
	return timeline.New(nil,
		timeline.WithLogger(debugLogger{}),
		timeline.WithTransitions(timeline.NewTransitionRepository(cfg.ExtraTransitions...)),
	)
}

// loadProject parses an MLT project and rebuilds its timeline
func loadProject(path string, cfg config.Config) (*tui.Project, melt.Stats, error) {
	doc, err := melt.ReadFile(path)
	if err != nil {
		return nil, melt.Stats{}, fmt.Errorf("failed to load project: %w", err)
	}

	reg := bin.NewRegistry(debugLogger{})
	for _, src := range doc.Sources() {
		if err := reg.Add(src); err != nil {
			debugf("[LOAD] %s: skipping bin source: %v", path, err)
		}
	}

	if n := reg.ProbeNames(filepath.Dir(path)); n > 0 {
		debugf("[LOAD] %s: named %d bin clips from media tags", path, n)
	}

	tl := newTimeline(cfg)

	builder := melt.Builder{Bin: reg, Logger: debugLogger{}}

	stats, err := builder.Build(doc, tl)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to build timeline from %s: %w", path, err)
	}

	debugf("[LOAD] %s: %d tracks, %d clips, %d compositions, %d groups, %d skipped",
		path, stats.Tracks, stats.Clips, stats.Compositions, stats.Groups, stats.Skipped)

	return &tui.Project{Path: path, Timeline: tl, Bin: reg}, stats, nil
}

// newProject creates an empty project with the configured tracks, audio below video
func newProject(path string, cfg config.Config) *tui.Project {
	tl := newTimeline(cfg)

	for i := cfg.AudioTracks; i >= 1; i-- {
		tl.RequestTrackInsertion(-1, true, fmt.Sprintf("A%d", i), false)
	}

	for i := 1; i <= cfg.VideoTracks; i++ {
		tl.RequestTrackInsertion(-1, false, fmt.Sprintf("V%d", i), false)
	}

	return &tui.Project{Path: path, Timeline: tl, Bin: bin.NewRegistry(debugLogger{})}
}

// openProject loads path, or starts a new project when it does not exist yet
func openProject(path string, cfg config.Config) (*tui.Project, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		debugf("[LOAD] %s does not exist, starting an empty project", path)
		return newProject(path, cfg), nil
	}

	p, _, err := loadProject(path, cfg)

	return p, err
}

// encodeProject exports a project to MLT XML
func encodeProject(p *tui.Project, cfg config.Config) ([]byte, error) {
	doc, err := melt.Export(p.Timeline, p.Bin, cfg.FPS)
	if err != nil {
		return nil, fmt.Errorf("failed to export timeline: %w", err)
	}

	return doc.Bytes()
}

// truncate shortens string to maxLen, adding "..." if needed
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
