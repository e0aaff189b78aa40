// ABOUTME: File watching for the project and the config file
// ABOUTME: Turns fsnotify write events in their directories into Bubble Tea messages

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// newWatcher watches the directories of the project and, when it exists, the
// config file. Saves replace the project file, so its directory is watched
// and events are matched by name.
func newWatcher(projectPath, configPath string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := []string{filepath.Dir(projectPath)}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			dirs = append(dirs, filepath.Dir(configPath))
		}
	}

	for i, dir := range dirs {
		if i > 0 && samePath(dir, dirs[0]) {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return watcher, nil
}

// waitForFileChange returns a command that waits for file system events
func waitForFileChange(watcher *fsnotify.Watcher, logger Logger) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				// Only react to write events
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					// Debounce: wait a bit for atomic writes to complete
					time.Sleep(100 * time.Millisecond)
					return fileChangeMsg{path: event.Name}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				// Log error but continue watching
				logger.Debugf("[WATCHER] Error: %v", err)
			}
		}
	}
}

// samePath reports whether two paths name the same file
func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}

	return absA == absB
}
