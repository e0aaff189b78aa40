// ABOUTME: Reads media tags (ID3, MP4, Vorbis, FLAC) to name bin sources
// ABOUTME: Probes run in parallel on a bounded worker pool

package bin

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/dhowden/tag"
)

// Metadata is what the tags of a media file tell about it.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Format string // Container/tag format, e.g. "ID3v2.4", "MP4"
}

// DisplayName is the title, prefixed by the artist when known.
func (m Metadata) DisplayName() string {
	if m.Artist != "" && m.Title != "" {
		return m.Artist + " - " + m.Title
	}

	return m.Title
}

// Probe reads the tags of a media file. Relative paths are resolved against baseDir.
func Probe(resource, baseDir string) (Metadata, error) {
	fullPath := resource
	if !filepath.IsAbs(resource) && baseDir != "" {
		fullPath = filepath.Join(baseDir, resource)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to open media: %w", err)
	}
	defer func() { _ = file.Close() }()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read tags of %s: %w", resource, err)
	}

	title := m.Title()
	if title == "" {
		title = filepath.Base(resource)
	}

	return Metadata{
		Title:  title,
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Format: string(m.Format()),
	}, nil
}

// ProbeNames replaces the name of every file-backed source whose name is still
// its bin id or file name with the title from its tags. Sources whose tags cannot
// be read keep their name. Returns how many sources were renamed.
func (r *Registry) ProbeNames(baseDir string) int {
	var candidates []Source
	for _, id := range r.IDs() {
		src, err := r.Get(id)
		if err != nil || src.Resource == "" {
			continue
		}

		if src.Name == src.ID || src.Name == filepath.Base(src.Resource) {
			candidates = append(candidates, src)
		}
	}

	if len(candidates) == 0 {
		return 0
	}

	pool := pond.New(runtime.NumCPU(), len(candidates))
	defer pool.StopAndWait()

	names := make([]string, len(candidates))
	group := pool.Group()

	for i, src := range candidates {
		group.Submit(func() {
			meta, err := Probe(src.Resource, baseDir)
			if err != nil {
				r.logger.Debugf("bin: probe %s: %v", src.ID, err)
				return
			}

			names[i] = meta.DisplayName()
		})
	}

	group.Wait()

	renamed := 0
	for i, src := range candidates {
		if names[i] == "" || names[i] == src.Name {
			continue
		}

		r.setName(src.ID, names[i])
		renamed++
	}

	return renamed
}
