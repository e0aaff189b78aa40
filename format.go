// ABOUTME: Plain data views of a project for the info and dump commands
// ABOUTME: Converts a timeline into tagged structs that encode to YAML and JSON

package main

import (
	"maps"
	"slices"

	"cutline/config"
	"cutline/melt"
	"cutline/timeline"
	"cutline/tui"
)

// projectSummary is one line of the info command
type projectSummary struct {
	Path     string
	Stats    melt.Stats
	Duration int
	Err      error
}

// summarizeProject loads a project and reports what the import kept
func summarizeProject(path string, cfg config.Config) projectSummary {
	project, stats, err := loadProject(path, cfg)
	if err != nil {
		return projectSummary{Path: path, Err: err}
	}

	return projectSummary{Path: path, Stats: stats, Duration: project.Timeline.Duration()}
}

type timelineDump struct {
	Duration string      `yaml:"duration" json:"duration"`
	Frames   int         `yaml:"frames" json:"frames"`
	Tracks   []trackDump `yaml:"tracks" json:"tracks"`
	Groups   []groupDump `yaml:"groups,omitempty" json:"groups,omitempty"`
}

type trackDump struct {
	ID           int               `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Audio        bool              `yaml:"audio,omitempty" json:"audio,omitempty"`
	Locked       bool              `yaml:"locked,omitempty" json:"locked,omitempty"`
	Muted        bool              `yaml:"muted,omitempty" json:"muted,omitempty"`
	Clips        []clipDump        `yaml:"clips,omitempty" json:"clips,omitempty"`
	Compositions []compositionDump `yaml:"compositions,omitempty" json:"compositions,omitempty"`
}

type clipDump struct {
	ID       int    `yaml:"id" json:"id"`
	Bin      string `yaml:"bin" json:"bin"`
	Name     string `yaml:"name" json:"name"`
	Position int    `yaml:"position" json:"position"`
	In       int    `yaml:"in" json:"in"`
	Out      int    `yaml:"out" json:"out"`
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

type compositionDump struct {
	ID       int               `yaml:"id" json:"id"`
	Service  string            `yaml:"service" json:"service"`
	Position int               `yaml:"position" json:"position"`
	Length   int               `yaml:"length" json:"length"`
	ATrack   string            `yaml:"a_track" json:"a_track"`
	Forced   bool              `yaml:"forced,omitempty" json:"forced,omitempty"`
	Valid    bool              `yaml:"valid" json:"valid"`
	Params   map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
}

// groupDump is a group node: a leaf item id, or nested children
type groupDump struct {
	Item     *int        `yaml:"item,omitempty" json:"item,omitempty"`
	Children []groupDump `yaml:"children,omitempty" json:"children,omitempty"`
}

// dumpTimeline converts a project to its encodable form, tracks listed top first
func dumpTimeline(p *tui.Project, fps int) timelineDump {
	tl := p.Timeline

	d := timelineDump{
		Duration: melt.Timecode(tl.Duration(), float64(fps)),
		Frames:   tl.Duration(),
	}

	ids := tl.TrackIDs()
	slices.Reverse(ids)

	for _, trackID := range ids {
		info, _ := tl.Track(trackID)

		td := trackDump{ID: info.ID, Name: info.Name, Audio: info.Audio, Locked: info.Locked, Muted: info.Muted}

		for _, id := range tl.TrackClips(trackID) {
			c, _ := tl.Clip(id)
			td.Clips = append(td.Clips, clipDump{
				ID:       c.ID,
				Bin:      c.BinID,
				Name:     c.Name,
				Position: c.Position,
				In:       c.In,
				Out:      c.Out,
				Disabled: c.Disabled,
			})
		}

		for _, id := range tl.TrackCompositions(trackID) {
			c, _ := tl.Composition(id)
			td.Compositions = append(td.Compositions, dumpComposition(tl, c))
		}

		d.Tracks = append(d.Tracks, td)
	}

	for _, n := range tl.GroupForest() {
		d.Groups = append(d.Groups, dumpGroup(n))
	}

	return d
}

func dumpComposition(tl *timeline.Timeline, c timeline.CompositionInfo) compositionDump {
	aTrack := "background"
	if c.ATrack != timeline.NoID {
		info, _ := tl.Track(c.ATrack)
		aTrack = info.Name
	}

	var params map[string]string
	if len(c.Params) > 0 {
		params = maps.Clone(c.Params)
	}

	return compositionDump{
		ID:       c.ID,
		Service:  c.ServiceID,
		Position: c.Position,
		Length:   c.PlayTime(),
		ATrack:   aTrack,
		Forced:   c.ForcedATrack != timeline.NoID,
		Valid:    c.Valid,
		Params:   params,
	}
}

func dumpGroup(n timeline.GroupNode) groupDump {
	if n.IsLeaf() {
		id := n.ID
		return groupDump{Item: &id}
	}

	g := groupDump{}
	for _, c := range n.Children {
		g.Children = append(g.Children, dumpGroup(c))
	}

	return g
}
