// ABOUTME: Tests for configuration load/save functionality
// ABOUTME: Validates TOML parsing and default config fallback behavior

package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SnapDistance != 5 {
		t.Errorf("Expected SnapDistance 5, got %d", cfg.SnapDistance)
	}

	if cfg.UndoLimit != 100 {
		t.Errorf("Expected UndoLimit 100, got %d", cfg.UndoLimit)
	}

	if cfg.BackupLimit != 20 {
		t.Errorf("Expected BackupLimit 20, got %d", cfg.BackupLimit)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cutline.toml")

	cfg := DefaultConfig()
	cfg.SnapDistance = 12
	cfg.ExtraTransitions = []string{"frei0r.bw0r", "dissolve"}

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.SnapDistance != 12 {
		t.Errorf("SnapDistance mismatch: got %d, want 12", loaded.SnapDistance)
	}
	if !slices.Equal(loaded.ExtraTransitions, cfg.ExtraTransitions) {
		t.Errorf("ExtraTransitions mismatch: got %v, want %v", loaded.ExtraTransitions, cfg.ExtraTransitions)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutline.toml")
	if err := os.WriteFile(path, []byte("undo_limit = 7\nfps = -3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.UndoLimit != 7 {
		t.Errorf("Expected UndoLimit 7, got %d", cfg.UndoLimit)
	}
	if cfg.FPS != 25 {
		t.Errorf("Expected invalid fps to fall back to 25, got %d", cfg.FPS)
	}
	if cfg.TrackHeight != 3 {
		t.Errorf("Expected default TrackHeight 3, got %d", cfg.TrackHeight)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutline.toml")
	if err := os.WriteFile(path, []byte("snap_distance = \"far\""), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("Expected a parse error")
	}
	if cfg.SnapDistance != 5 {
		t.Errorf("Expected defaults on error, got SnapDistance %d", cfg.SnapDistance)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	// Loading non-existent file should return defaults without error
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}

	if cfg.SnapDistance != DefaultConfig().SnapDistance {
		t.Errorf("Expected default SnapDistance, got %d", cfg.SnapDistance)
	}
}

func TestSharedConfig(t *testing.T) {
	shared := NewSharedConfig(DefaultConfig())

	cfg := shared.Get()
	cfg.SnapDistance = 40
	if shared.Get().SnapDistance != 5 {
		t.Error("Get should return a copy")
	}

	shared.Update(cfg)
	if shared.Get().SnapDistance != 40 {
		t.Errorf("Expected SnapDistance 40 after Update, got %d", shared.Get().SnapDistance)
	}
}
