// ABOUTME: TUI mode configuration and command-line options
// ABOUTME: Defines input parameters and injected dependencies for running the editor

package tui

import "cutline/config"

// Options contains configuration for running the TUI
type Options struct {
	ProjectPath string // Path to the MLT project
	OutputPath  string // Path for saving (defaults to ProjectPath)
	DryRun      bool   // If true, don't save changes to disk
	Watch       bool   // Reload the project and config when they change on disk
}

// Dependencies holds all external dependencies for the TUI
// This allows for clean dependency injection and easy testing
type Dependencies struct {
	Config     *config.SharedConfig
	Loader     ProjectLoader
	Writer     ProjectWriter
	Logger     Logger
	ConfigPath string
}
