// ABOUTME: Configuration management for the timeline editor
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Config holds the editor settings
type Config struct {
	// Editing
	SnapDistance int `toml:"snap_distance"` // Frames
	UndoLimit    int `toml:"undo_limit"`
	FPS          int `toml:"fps"`

	// Display
	TrackHeight int `toml:"track_height"` // Terminal rows per track

	// New projects
	VideoTracks int `toml:"video_tracks"`
	AudioTracks int `toml:"audio_tracks"`

	// Backups
	BackupDB    string `toml:"backup_db"`
	BackupLimit int    `toml:"backup_limit"`

	// Composition services accepted besides the built-in ones
	ExtraTransitions []string `toml:"extra_transitions"`
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/cutline/config.toml
func GetConfigPath() string {
	// First try current directory
	if _, err := os.Stat("./cutline.toml"); err == nil {
		return "./cutline.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./cutline.toml"
	}

	return filepath.Join(home, ".config", "cutline", "config.toml")
}

// DefaultBackupDB is where backups go when the config names no database
func DefaultBackupDB() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", "cutline-backups.db")
	}

	return filepath.Join(dir, "cutline", "backups.db")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist or fails to load, returns default config.
// Keys missing from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return sanitize(config), nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		SnapDistance: 5,
		UndoLimit:    100,
		FPS:          25,
		TrackHeight:  3,
		VideoTracks:  2,
		AudioTracks:  2,
		BackupDB:     DefaultBackupDB(),
		BackupLimit:  20,
	}
}

// sanitize replaces out of range values with their defaults
func sanitize(config Config) Config {
	defaults := DefaultConfig()

	if config.SnapDistance < 0 {
		config.SnapDistance = defaults.SnapDistance
	}
	if config.UndoLimit <= 0 {
		config.UndoLimit = defaults.UndoLimit
	}
	if config.FPS <= 0 {
		config.FPS = defaults.FPS
	}
	if config.TrackHeight <= 0 {
		config.TrackHeight = defaults.TrackHeight
	}
	if config.VideoTracks < 0 {
		config.VideoTracks = defaults.VideoTracks
	}
	if config.AudioTracks < 0 {
		config.AudioTracks = defaults.AudioTracks
	}
	if config.BackupDB == "" {
		config.BackupDB = defaults.BackupDB
	}

	return config
}

// SharedConfig is a Config read by the editor while a file watcher replaces it
type SharedConfig struct {
	mu     sync.RWMutex
	config Config
}

// NewSharedConfig wraps config
func NewSharedConfig(config Config) *SharedConfig {
	return &SharedConfig{config: config}
}

// Get returns a copy of the current config
func (s *SharedConfig) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.config
	c.ExtraTransitions = append([]string(nil), s.config.ExtraTransitions...)

	return c
}

// Update replaces the current config
func (s *SharedConfig) Update(config Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}
