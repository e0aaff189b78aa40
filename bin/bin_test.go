// ABOUTME: Tests for the bin registry and media tag probing
// ABOUTME: Uses temp files to check probing falls back when tags are unreadable

package bin

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type recordingLogger struct {
	lines int
}

func (l *recordingLogger) Debugf(string, ...any) { l.lines++ }

func TestRegistry_AddGet(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Add(Source{ID: "2", Resource: "/media/a.mp4", Length: 250}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	src, err := r.Get("2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if src.Name != "2" {
		t.Errorf("Name = %q, want the id as default", src.Name)
	}

	if src.Length != 250 {
		t.Errorf("Length = %d, want 250", src.Length)
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownClip) {
		t.Errorf("Get(missing) error = %v, want ErrUnknownClip", err)
	}
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Add(Source{}); err == nil {
		t.Error("source without id should be rejected")
	}

	if err := r.Add(Source{ID: "x", Length: -1}); err == nil {
		t.Error("negative length should be rejected")
	}

	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRegistry_IDsSorted(t *testing.T) {
	r := NewRegistry(nil)

	for _, id := range []string{"b", "c", "a"} {
		if err := r.Add(Source{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	r.Remove("c")

	if got := r.IDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IDs = %v, want [a b]", got)
	}
}

func TestProbe_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Probe("missing.mp3", dir); err == nil {
		t.Error("probing a missing file should fail")
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not media"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Probe("notes.txt", dir); err == nil {
		t.Error("probing a file without tags should fail")
	}
}

func TestProbeNames_KeepsNamesOnFailure(t *testing.T) {
	dir := t.TempDir()
	logger := &recordingLogger{}
	r := NewRegistry(logger)

	if err := r.Add(Source{ID: "1", Resource: "missing.mp3"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Add(Source{ID: "2", Resource: "other.mp3", Name: "Custom"}); err != nil {
		t.Fatal(err)
	}

	if n := r.ProbeNames(dir); n != 0 {
		t.Errorf("ProbeNames renamed %d sources, want 0", n)
	}

	if src, _ := r.Get("1"); src.Name != "1" {
		t.Errorf("Name = %q, want unchanged", src.Name)
	}

	// Only the source still named after its id is probed
	if logger.lines != 1 {
		t.Errorf("logged %d probe failures, want 1", logger.lines)
	}
}

func TestMetadata_DisplayName(t *testing.T) {
	tests := []struct {
		meta Metadata
		want string
	}{
		{Metadata{Title: "Dreams", Artist: "Aperio"}, "Aperio - Dreams"},
		{Metadata{Title: "Dreams"}, "Dreams"},
		{Metadata{Artist: "Aperio"}, ""},
	}

	for _, tt := range tests {
		if got := tt.meta.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.meta, got, tt.want)
		}
	}
}
