// ABOUTME: Adapter implementations for TUI interfaces
// ABOUTME: Bridges project loading, MLT export and the backup store to the editor's loader/writer contracts

package main

import (
	"fmt"
	"os"

	"cutline/config"
	"cutline/store"
	"cutline/tui"
)

// projectIO loads and saves projects for the editor, snapshotting every save
type projectIO struct {
	cfg     config.Config
	backups *store.Backups // nil disables snapshots
}

var (
	_ tui.ProjectLoader = (*projectIO)(nil)
	_ tui.ProjectWriter = (*projectIO)(nil)
)

// Load opens path, starting an empty project when it does not exist
func (p *projectIO) Load(path string) (*tui.Project, error) {
	return openProject(path, p.cfg)
}

// Write exports the project to path and stores a snapshot of it
func (p *projectIO) Write(path string, project *tui.Project) error {
	data, err := encodeProject(project, p.cfg)
	if err != nil {
		return err
	}

	if err := writeWithBackup(path, data); err != nil {
		return err
	}

	debugf("[SAVE] Wrote %s (%d bytes)", path, len(data))

	if p.backups == nil {
		return nil
	}

	b, saved, err := p.backups.Save(store.ProjectKey(path), "save", data)
	if err != nil {
		// The project itself is on disk, a failed snapshot only loses history
		debugf("[SAVE] Snapshot of %s failed: %v", path, err)
		return nil
	}

	if saved {
		debugf("[SAVE] Snapshot %s of %s", b.ID, path)
	}

	return nil
}

// writeWithBackup writes data to path, keeping the previous version as path.bak
func writeWithBackup(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}

	return nil
}

// openBackups opens the snapshot database, or returns nil when snapshots are disabled
func openBackups(cfg config.Config) (*store.Backups, error) {
	if cfg.BackupLimit <= 0 || cfg.BackupDB == "" {
		return nil, nil
	}

	b, err := store.Open(cfg.BackupDB, cfg.BackupLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup database: %w", err)
	}

	return b, nil
}
