// ABOUTME: Imports an MLT document into a timeline: tracks, clips, compositions and groups
// ABOUTME: Items that cannot be resolved are logged and skipped, the import carries on

package melt

import (
	"errors"
	"maps"
	"slices"
	"strconv"

	"cutline/bin"
	"cutline/timeline"
)

const (
	propBinID       = "kdenlive:id"
	propClipName    = "kdenlive:clipname"
	propDisabled    = "kdenlive:disabled"
	propTrackName   = "kdenlive:track_name"
	propAudioTrack  = "kdenlive:audio_track"
	propLockedTrack = "kdenlive:locked_track"
	propGroups      = "kdenlive:sequenceproperties.groups"
	propService     = "mlt_service"
	propAssetID     = "kdenlive_id"
	propATrack      = "a_track"
	propBTrack      = "b_track"
	propForceTrack  = "force_track"
	propInternalMix = "internal_added"
)

// reservedTracks are technical tracks of the main tractor, never user tracks.
var reservedTracks = map[string]bool{
	"playlistmain":     true,
	"timeline_preview": true,
	"overlay_track":    true,
	"black_track":      true,
}

// transitionProps are the transition properties that are not service parameters.
var transitionProps = map[string]bool{
	propService:     true,
	propATrack:      true,
	propBTrack:      true,
	propForceTrack:  true,
	propInternalMix: true,
	propAssetID:     true,
}

// Logger receives import traces.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Stats summarizes an import.
type Stats struct {
	Tracks       int
	Clips        int
	Compositions int
	Groups       int
	Skipped      int
}

// Builder reconstructs timelines from documents, resolving clips through Bin.
type Builder struct {
	Bin    *bin.Registry
	Logger Logger
}

// leafKey locates an item the way group descriptions do.
type leafKey struct {
	track  int // Index in the main tractor
	pos    int
	isClip bool
}

type buildState struct {
	doc    *Document
	tl     *timeline.Timeline
	fps    float64
	logger Logger
	stats  Stats

	tracks map[int]int // Main tractor index -> timeline track id
	leaves map[leafKey]int
}

// Build fills tl, expected empty, from doc. Requests are made without undo
// entries; bind the undo stack afterwards.
func (b *Builder) Build(doc *Document, tl *timeline.Timeline) (Stats, error) {
	main, err := doc.MainTractor()
	if err != nil {
		return Stats{}, err
	}

	if b.Bin == nil {
		return Stats{}, errors.New("melt: builder has no bin")
	}

	s := &buildState{
		doc:    doc,
		tl:     tl,
		fps:    doc.FPS(),
		logger: b.Logger,
		tracks: make(map[int]int),
		leaves: make(map[leafKey]int),
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}

	type pendingProps struct {
		trackID int
		props   timeline.TrackProps
	}
	var pending []pendingProps

	for i, ref := range main.Tracks {
		if reservedTracks[ref.Producer] {
			continue
		}

		var (
			trackID int
			props   timeline.TrackProps
			ok      bool
		)

		switch {
		case doc.playlist(ref.Producer) != nil:
			trackID, props, ok = s.playlistTrack(i, doc.playlist(ref.Producer), ref, b.Bin)
		case doc.tractor(ref.Producer) != nil:
			trackID, props, ok = s.tractorTrack(i, doc.tractor(ref.Producer), ref, b.Bin)
		default:
			s.logger.Debugf("melt: track %d references unknown producer %q", i, ref.Producer)
			s.stats.Skipped++
		}

		if ok {
			s.tracks[i] = trackID
			s.stats.Tracks++
			pending = append(pending, pendingProps{trackID, props})
		}
	}

	for _, tr := range main.Transitions {
		s.composition(tr)
	}

	if raw := main.Properties.Get(propGroups); raw != "" {
		if err := s.groups(raw); err != nil {
			s.logger.Debugf("melt: ignoring groups: %v", err)
		}
	}

	// Locks last, a locked track rejects insertions
	for _, p := range pending {
		if p.props.Locked || p.props.Muted {
			tl.RequestTrackProperty(p.trackID, p.props, false)
		}
	}

	return s.stats, nil
}

func hidden(ref TrackRef, audio bool) bool {
	if ref.Hide == "both" {
		return true
	}

	if audio {
		return ref.Hide == "audio"
	}

	return ref.Hide == "video"
}

func (s *buildState) newTrack(props Properties, ref TrackRef, fallback string) (int, timeline.TrackProps, bool) {
	audio := props.Get(propAudioTrack) == "1"

	name := props.Get(propTrackName)
	if name == "" {
		name = fallback
	}

	id, ok := s.tl.RequestTrackInsertion(-1, audio, name, false)
	if !ok {
		s.logger.Debugf("melt: cannot create track %q", name)
		return timeline.NoID, timeline.TrackProps{}, false
	}

	return id, timeline.TrackProps{
		Name:   name,
		Locked: props.Get(propLockedTrack) == "1",
		Muted:  hidden(ref, audio),
	}, true
}

func (s *buildState) playlistTrack(index int, pl *Playlist, ref TrackRef, reg *bin.Registry) (int, timeline.TrackProps, bool) {
	id, props, ok := s.newTrack(pl.Properties, ref, pl.ID)
	if !ok {
		return id, props, false
	}

	s.fillTrack(index, id, pl, reg)

	return id, props, true
}

// tractorTrack imports a track made of paired sub-playlists into a single timeline track.
func (s *buildState) tractorTrack(index int, tr *Tractor, ref TrackRef, reg *bin.Registry) (int, timeline.TrackProps, bool) {
	props := slices.Clone(tr.Properties)

	// Older documents only flag the sub-playlists as audio
	if _, ok := props.Lookup(propAudioTrack); !ok {
		for _, sub := range tr.Tracks {
			if pl := s.doc.playlist(sub.Producer); pl != nil && pl.Properties.Get(propAudioTrack) == "1" {
				props.Set(propAudioTrack, "1")
				break
			}
		}
	}

	id, trackProps, ok := s.newTrack(props, ref, tr.ID)
	if !ok {
		return id, trackProps, false
	}

	for _, sub := range tr.Tracks {
		pl := s.doc.playlist(sub.Producer)
		if pl == nil {
			s.logger.Debugf("melt: track tractor %s: sub-track %q is not a playlist", tr.ID, sub.Producer)
			s.stats.Skipped++

			continue
		}

		s.fillTrack(index, id, pl, reg)
	}

	return id, trackProps, true
}

func (s *buildState) fillTrack(index, trackID int, pl *Playlist, reg *bin.Registry) {
	info, _ := s.tl.Track(trackID)
	pos := 0

	for _, item := range pl.Items {
		switch {
		case item.IsBlank():
			length, err := ParseTime(item.Length, s.fps)
			if err != nil {
				s.logger.Debugf("melt: playlist %s: %v", pl.ID, err)
			}
			pos += length
		case item.IsEntry():
			pos += s.entry(index, trackID, info.Audio, pos, item, reg)
		}
	}
}

// entry creates the clip of a playlist entry and returns the frames it covers.
func (s *buildState) entry(index, trackID int, audio bool, pos int, item PlaylistItem, reg *bin.Registry) int {
	in, errIn := ParseTime(item.In, s.fps)
	out, errOut := ParseTime(item.Out, s.fps)

	producer := s.doc.producer(item.Producer)
	if producer != nil {
		if item.In == "" {
			in, errIn = ParseTime(producer.In, s.fps)
		}
		if item.Out == "" {
			out, errOut = ParseTime(producer.Out, s.fps)
		}
	}

	if errIn != nil || errOut != nil || out < in {
		s.logger.Debugf("melt: entry of %q has invalid bounds %q-%q", item.Producer, item.In, item.Out)
		s.stats.Skipped++

		return 0
	}

	length := out - in + 1

	if s.doc.tractor(item.Producer) != nil {
		s.logger.Debugf("melt: nested tractor %q at %d is not supported", item.Producer, pos)
		s.stats.Skipped++

		return length
	}

	if producer == nil {
		s.logger.Debugf("melt: entry references missing producer %q", item.Producer)
		s.stats.Skipped++

		return length
	}

	binID := item.Properties.Get(propBinID)
	if binID == "" {
		binID = producer.Properties.Get(propBinID)
	}

	src, err := reg.Get(binID)
	if err != nil {
		s.logger.Debugf("melt: producer %s: %v", producer.ID, err)
		s.stats.Skipped++

		return length
	}

	name := item.Properties.Get(propClipName)
	if name == "" {
		name = src.Name
	}

	spec := timeline.ClipSpec{
		BinID:       src.ID,
		Name:        name,
		In:          in,
		Out:         out,
		MaxDuration: src.Length,
		Audio:       audio,
	}

	id, ok := s.tl.RequestClipInsertion(spec, trackID, pos, false)
	if !ok {
		s.logger.Debugf("melt: cannot place clip %s at %d on track %d", src.ID, pos, trackID)
		s.stats.Skipped++

		return length
	}

	if item.Properties.Get(propDisabled) == "1" {
		s.tl.RequestClipDisable(id, true, false)
	}

	s.leaves[leafKey{track: index, pos: pos, isClip: true}] = id
	s.stats.Clips++

	return length
}

func (s *buildState) composition(tr Transition) {
	if tr.Properties.Get(propInternalMix) != "" {
		return
	}

	service := tr.Properties.Get(propService)

	bTrack, errB := strconv.Atoi(tr.Properties.Get(propBTrack))
	aTrack, errA := strconv.Atoi(tr.Properties.Get(propATrack))
	in, errIn := ParseTime(tr.In, s.fps)
	out, errOut := ParseTime(tr.Out, s.fps)

	if errB != nil || errA != nil || errIn != nil || errOut != nil || out < in {
		s.logger.Debugf("melt: transition %s has invalid tracks or bounds", tr.ID)
		s.stats.Skipped++

		return
	}

	trackID, ok := s.tracks[bTrack]
	if !ok {
		s.logger.Debugf("melt: transition %s targets unknown track %d", tr.ID, bTrack)
		s.stats.Skipped++

		return
	}

	params := make(map[string]string)
	for _, p := range tr.Properties {
		if !transitionProps[p.Name] {
			params[p.Name] = p.Value
		}
	}

	id, ok := s.tl.RequestCompositionInsertion(service, trackID, in, out-in+1, params, false)
	if !ok {
		s.logger.Debugf("melt: cannot place composition %s (%s) at %d", tr.ID, service, in)
		s.stats.Skipped++

		return
	}

	if tr.Properties.Get(propForceTrack) == "1" {
		if a, known := s.tracks[aTrack]; known {
			s.tl.RequestCompositionATrack(id, a, false)
		}
	}

	s.leaves[leafKey{track: bTrack, pos: in, isClip: false}] = id
	s.stats.Compositions++
}

func (s *buildState) groups(raw string) error {
	nodes, err := decodeGroups(raw)
	if err != nil {
		return err
	}

	for _, n := range nodes {
		if _, ok := s.group(n); ok {
			s.stats.Groups++
		}
	}

	return nil
}

// group creates the group of node bottom-up and returns its id.
func (s *buildState) group(n groupJSON) (int, bool) {
	if n.Type == groupLeaf {
		key, err := n.leafKey()
		if err != nil {
			s.logger.Debugf("melt: group leaf: %v", err)
			return timeline.NoID, false
		}

		id, ok := s.leaves[key]
		if !ok {
			s.logger.Debugf("melt: group leaf %q matches no item", n.Data)
		}

		return id, ok
	}

	var children []int
	for _, c := range n.Children {
		if id, ok := s.group(c); ok {
			children = append(children, id)
		}
	}

	switch len(children) {
	case 0:
		return timeline.NoID, false
	case 1:
		return children[0], true
	}

	return s.tl.RequestClipsGroup(children, false)
}

// paramKeys returns the sorted keys of a parameter map.
func paramKeys(params map[string]string) []string {
	return slices.Sorted(maps.Keys(params))
}
