// ABOUTME: MLT XML document model: producers, playlists, tractors and transitions
// ABOUTME: Reads and writes project files and converts MLT time values to frames

// Package melt reads and writes MLT XML project documents and converts them
// to and from the timeline model.
package melt

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cutline/bin"
)

// ErrNoMainTractor is returned for documents without a top-level tractor.
var ErrNoMainTractor = errors.New("no main tractor")

// Property is a named MLT property.
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Properties is an ordered property list.
type Properties []Property

// Lookup returns the value of name.
func (p Properties) Lookup(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}

	return "", false
}

// Get returns the value of name, empty when absent.
func (p Properties) Get(name string) string {
	v, _ := p.Lookup(name)
	return v
}

// Set replaces or appends name.
func (p *Properties) Set(name, value string) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}

	*p = append(*p, Property{Name: name, Value: value})
}

// Profile is the video format of the document.
type Profile struct {
	Description  string `xml:"description,attr,omitempty"`
	Width        int    `xml:"width,attr,omitempty"`
	Height       int    `xml:"height,attr,omitempty"`
	FrameRateNum int    `xml:"frame_rate_num,attr,omitempty"`
	FrameRateDen int    `xml:"frame_rate_den,attr,omitempty"`
}

// Producer is a media source (also used for MLT chains).
type Producer struct {
	ID         string     `xml:"id,attr"`
	In         string     `xml:"in,attr,omitempty"`
	Out        string     `xml:"out,attr,omitempty"`
	Properties Properties `xml:"property"`
}

// PlaylistItem is a <blank> or an <entry> of a playlist.
type PlaylistItem struct {
	XMLName    xml.Name
	Producer   string     `xml:"producer,attr,omitempty"`
	In         string     `xml:"in,attr,omitempty"`
	Out        string     `xml:"out,attr,omitempty"`
	Length     string     `xml:"length,attr,omitempty"`
	Properties Properties `xml:"property"`
}

// IsBlank reports whether the item is a gap.
func (i PlaylistItem) IsBlank() bool { return i.XMLName.Local == "blank" }

// IsEntry reports whether the item references a producer.
func (i PlaylistItem) IsEntry() bool { return i.XMLName.Local == "entry" }

// Playlist is a sequence of entries and blanks.
type Playlist struct {
	ID         string         `xml:"id,attr"`
	Properties Properties     `xml:"property"`
	Items      []PlaylistItem `xml:",any"`
}

// TrackRef is a track of a tractor.
type TrackRef struct {
	Producer string `xml:"producer,attr"`
	Hide     string `xml:"hide,attr,omitempty"`
}

// Transition blends two tracks of a tractor.
type Transition struct {
	ID         string     `xml:"id,attr,omitempty"`
	In         string     `xml:"in,attr,omitempty"`
	Out        string     `xml:"out,attr,omitempty"`
	Properties Properties `xml:"property"`
}

// Tractor multiplexes tracks.
type Tractor struct {
	ID          string       `xml:"id,attr"`
	In          string       `xml:"in,attr,omitempty"`
	Out         string       `xml:"out,attr,omitempty"`
	GlobalFeed  string       `xml:"global_feed,attr,omitempty"`
	Properties  Properties   `xml:"property"`
	Tracks      []TrackRef   `xml:"track"`
	Transitions []Transition `xml:"transition"`
}

// Document is an MLT XML document.
type Document struct {
	XMLName   xml.Name   `xml:"mlt"`
	LCNumeric string     `xml:"LC_NUMERIC,attr,omitempty"`
	Version   string     `xml:"version,attr,omitempty"`
	Root      string     `xml:"root,attr,omitempty"`
	Producer  string     `xml:"producer,attr,omitempty"`
	Profile   *Profile   `xml:"profile"`
	Producers []Producer `xml:"producer"`
	Chains    []Producer `xml:"chain"`
	Playlists []Playlist `xml:"playlist"`
	Tractors  []Tractor  `xml:"tractor"`
}

// Read parses a document.
func Read(r io.Reader) (*Document, error) {
	var doc Document

	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse MLT XML: %w", err)
	}

	return &doc, nil
}

// ReadFile parses the document at path.
func ReadFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	defer func() { _ = file.Close() }()

	doc, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if doc.Root == "" {
		doc.Root = filepath.Dir(path)
	}

	return doc, nil
}

// Write encodes the document as indented XML.
func (d *Document) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write MLT XML: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", " ")

	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode MLT XML: %w", err)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write MLT XML: %w", err)
	}

	return nil
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteFile writes the document to path, keeping the previous version as path.bak.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

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

// FPS is the profile frame rate, 25 when unspecified.
func (d *Document) FPS() float64 {
	if d.Profile == nil || d.Profile.FrameRateNum <= 0 {
		return 25
	}

	den := d.Profile.FrameRateDen
	if den <= 0 {
		den = 1
	}

	return float64(d.Profile.FrameRateNum) / float64(den)
}

// producer finds a producer or chain by id.
func (d *Document) producer(id string) *Producer {
	for i := range d.Producers {
		if d.Producers[i].ID == id {
			return &d.Producers[i]
		}
	}

	for i := range d.Chains {
		if d.Chains[i].ID == id {
			return &d.Chains[i]
		}
	}

	return nil
}

func (d *Document) playlist(id string) *Playlist {
	for i := range d.Playlists {
		if d.Playlists[i].ID == id {
			return &d.Playlists[i]
		}
	}

	return nil
}

func (d *Document) tractor(id string) *Tractor {
	for i := range d.Tractors {
		if d.Tractors[i].ID == id {
			return &d.Tractors[i]
		}
	}

	return nil
}

// MainTractor returns the last tractor no other tractor uses as a track.
func (d *Document) MainTractor() (*Tractor, error) {
	used := make(map[string]bool)
	for _, t := range d.Tractors {
		for _, ref := range t.Tracks {
			used[ref.Producer] = true
		}
	}

	for i := len(d.Tractors) - 1; i >= 0; i-- {
		if !used[d.Tractors[i].ID] {
			return &d.Tractors[i], nil
		}
	}

	return nil, ErrNoMainTractor
}

// Sources lists the bin sources declared by the document's producers, the ones
// carrying a kdenlive:id.
func (d *Document) Sources() []bin.Source {
	fps := d.FPS()

	var sources []bin.Source
	for _, list := range [][]Producer{d.Producers, d.Chains} {
		for _, p := range list {
			id := p.Properties.Get(propBinID)
			if id == "" {
				continue
			}

			length, err := ParseTime(p.Properties.Get("length"), fps)
			if err != nil {
				length = 0
			}

			service := p.Properties.Get("mlt_service")
			sources = append(sources, bin.Source{
				ID:       id,
				Resource: p.Properties.Get("resource"),
				Name:     p.Properties.Get(propClipName),
				Service:  service,
				Length:   length,
				Audio:    p.Properties.Get("video_index") == "-1",
			})
		}
	}

	return sources
}

// ParseTime converts an MLT time value to frames. Plain integers are frames;
// clock values ("00:01:02.500" or "00:01:02:12") are converted with fps.
func ParseTime(value string, fps float64) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	if !strings.Contains(value, ":") {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid frame count %q: %w", value, err)
		}

		return n, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}

	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	seconds, errS := strconv.ParseFloat(parts[2], 64)
	if err := errors.Join(errH, errM, errS); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}

	frames := int(math.Round((float64(hours*3600+minutes*60) + seconds) * fps))

	if len(parts) == 4 {
		ff, err := strconv.Atoi(parts[3])
		if err != nil {
			return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
		}
		frames += ff
	}

	return frames, nil
}

// Timecode formats frames as "hh:mm:ss:ff", the clock form ParseTime accepts.
func Timecode(frames int, fps float64) string {
	if fps <= 0 {
		fps = 25
	}

	sign := ""
	if frames < 0 {
		sign = "-"
		frames = -frames
	}

	perSecond := int(math.Round(fps))
	seconds := frames / perSecond

	return fmt.Sprintf("%s%02d:%02d:%02d:%02d", sign, seconds/3600, seconds/60%60, seconds%60, frames%perSecond)
}
