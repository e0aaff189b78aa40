// ABOUTME: Interfaces defining dependencies for the TUI package
// ABOUTME: Allows clean separation and easy testing with mocks

package tui

import (
	"cutline/bin"
	"cutline/timeline"
)

// Project is an open timeline with the bin its clips come from
type Project struct {
	Path     string
	Timeline *timeline.Timeline
	Bin      *bin.Registry
}

// ProjectLoader loads projects from disk. The returned timeline must not have
// an undo stack bound yet, the editor binds its own.
type ProjectLoader interface {
	Load(path string) (*Project, error)
}

// ProjectWriter saves projects to disk
type ProjectWriter interface {
	Write(path string, p *Project) error
}

// Logger provides debug logging capability
type Logger interface {
	Debugf(format string, args ...any)
}

// LoaderFunc adapts a function to ProjectLoader
type LoaderFunc func(path string) (*Project, error)

// Load calls f
func (f LoaderFunc) Load(path string) (*Project, error) { return f(path) }

// WriterFunc adapts a function to ProjectWriter
type WriterFunc func(path string, p *Project) error

// Write calls f
func (f WriterFunc) Write(path string, p *Project) error { return f(path, p) }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
