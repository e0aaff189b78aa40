// ABOUTME: Exports a timeline to an MLT document that Build reads back
// ABOUTME: Each track becomes a track tractor over two playlists, compositions become transitions

package melt

import (
	"fmt"
	"strconv"

	"cutline/bin"
	"cutline/timeline"
)

const blackTrack = "black_track"

// Export converts tl into a document. Clips are resolved through reg for their
// source producers; unplaced items are not exported.
func Export(tl *timeline.Timeline, reg *bin.Registry, fps int) (*Document, error) {
	if fps <= 0 {
		fps = 25
	}

	duration := tl.Duration()

	doc := &Document{
		LCNumeric: "C",
		Version:   "7.0.0",
		Producer:  "main_bin",
		Profile: &Profile{
			Description:  fmt.Sprintf("HD 1080p %d fps", fps),
			Width:        1920,
			Height:       1080,
			FrameRateNum: fps,
			FrameRateDen: 1,
		},
	}

	producers := make(map[string]string) // Bin id -> producer id
	mainBin := Playlist{ID: "main_bin"}
	mainBin.Properties.Set("xml_retain", "1")

	for i, id := range reg.IDs() {
		src, err := reg.Get(id)
		if err != nil {
			return nil, err
		}

		p := Producer{ID: "producer" + strconv.Itoa(i), In: "0"}
		if src.Length > 0 {
			p.Out = strconv.Itoa(src.Length - 1)
			p.Properties.Set("length", strconv.Itoa(src.Length))
		}

		service := src.Service
		if service == "" {
			service = "avformat"
		}

		p.Properties.Set("resource", src.Resource)
		p.Properties.Set(propService, service)
		p.Properties.Set(propBinID, src.ID)
		p.Properties.Set(propClipName, src.Name)
		if src.Audio {
			p.Properties.Set("video_index", "-1")
		}

		doc.Producers = append(doc.Producers, p)
		producers[src.ID] = p.ID
		mainBin.Items = append(mainBin.Items, entryItem(p.ID, 0, max(src.Length-1, 0), nil))
	}

	black := Producer{ID: blackTrack, In: "0", Out: strconv.Itoa(max(duration-1, 0))}
	black.Properties.Set("length", strconv.Itoa(max(duration, 1)))
	black.Properties.Set(propService, "color")
	black.Properties.Set("resource", "black")
	doc.Producers = append(doc.Producers, black)
	doc.Playlists = append(doc.Playlists, mainBin)

	mainTractor := Tractor{ID: "maintractor", In: "0", Out: strconv.Itoa(max(duration-1, 0)), GlobalFeed: "1"}
	mainTractor.Tracks = append(mainTractor.Tracks, TrackRef{Producer: blackTrack})

	trackIDs := tl.TrackIDs()
	mainIndex := make(map[int]int, len(trackIDs)) // Track id -> main tractor index
	leaves := make(map[int]leafKey)

	for row, trackID := range trackIDs {
		index := row + 1
		mainIndex[trackID] = index

		info, _ := tl.Track(trackID)

		pl, err := exportPlaylist(tl, trackID, fmt.Sprintf("playlist%d", 2*row), producers, index, leaves)
		if err != nil {
			return nil, err
		}

		spare := Playlist{ID: fmt.Sprintf("playlist%d", 2*row+1)}
		if info.Audio {
			pl.Properties.Set(propAudioTrack, "1")
			spare.Properties.Set(propAudioTrack, "1")
		}
		doc.Playlists = append(doc.Playlists, pl, spare)

		tr := Tractor{ID: fmt.Sprintf("tractor%d", row), In: "0", Out: strconv.Itoa(max(duration-1, 0))}
		tr.Properties.Set(propTrackName, info.Name)
		if info.Audio {
			tr.Properties.Set(propAudioTrack, "1")
		}
		if info.Locked {
			tr.Properties.Set(propLockedTrack, "1")
		}
		tr.Tracks = []TrackRef{{Producer: pl.ID}, {Producer: spare.ID}}
		doc.Tractors = append(doc.Tractors, tr)

		mainTractor.Tracks = append(mainTractor.Tracks, TrackRef{Producer: tr.ID, Hide: hideValue(info)})
	}

	for _, trackID := range trackIDs {
		for _, id := range tl.TrackCompositions(trackID) {
			c, _ := tl.Composition(id)
			mainTractor.Transitions = append(mainTractor.Transitions, exportTransition(c, mainIndex))
			leaves[id] = leafKey{track: mainIndex[trackID], pos: c.Position, isClip: false}
		}
	}

	groups, err := exportGroups(tl.GroupForest(), leaves)
	if err != nil {
		return nil, err
	}
	if groups != "" {
		mainTractor.Properties.Set(propGroups, groups)
	}

	doc.Tractors = append(doc.Tractors, mainTractor)

	return doc, nil
}

func hideValue(info timeline.TrackInfo) string {
	switch {
	case info.Audio && info.Muted:
		return "both"
	case info.Audio, info.Muted:
		return "video"
	}

	return ""
}

func entryItem(producer string, in, out int, props Properties) PlaylistItem {
	item := PlaylistItem{
		Producer:   producer,
		In:         strconv.Itoa(in),
		Out:        strconv.Itoa(out),
		Properties: props,
	}
	item.XMLName.Local = "entry"

	return item
}

func blankItem(length int) PlaylistItem {
	item := PlaylistItem{Length: strconv.Itoa(length)}
	item.XMLName.Local = "blank"

	return item
}

func exportPlaylist(tl *timeline.Timeline, trackID int, id string, producers map[string]string, index int, leaves map[int]leafKey) (Playlist, error) {
	pl := Playlist{ID: id}
	pos := 0

	for _, clipID := range tl.TrackClips(trackID) {
		c, _ := tl.Clip(clipID)

		producer, ok := producers[c.BinID]
		if !ok {
			return Playlist{}, fmt.Errorf("clip %d: bin id %q: %w", clipID, c.BinID, bin.ErrUnknownClip)
		}

		if gap := c.Position - pos; gap > 0 {
			pl.Items = append(pl.Items, blankItem(gap))
		}

		var props Properties
		props.Set(propBinID, c.BinID)
		props.Set(propClipName, c.Name)
		if c.Disabled {
			props.Set(propDisabled, "1")
		}

		pl.Items = append(pl.Items, entryItem(producer, c.In, c.Out, props))
		leaves[clipID] = leafKey{track: index, pos: c.Position, isClip: true}
		pos = c.End()
	}

	return pl, nil
}

func exportTransition(c timeline.CompositionInfo, mainIndex map[int]int) Transition {
	tr := Transition{
		ID:  fmt.Sprintf("transition%d", c.ID),
		In:  strconv.Itoa(c.Position),
		Out: strconv.Itoa(c.End() - 1),
	}

	aTrack := 0
	if c.ATrack != timeline.NoID {
		aTrack = mainIndex[c.ATrack]
	}

	tr.Properties.Set(propService, c.ServiceID)
	tr.Properties.Set(propATrack, strconv.Itoa(aTrack))
	tr.Properties.Set(propBTrack, strconv.Itoa(mainIndex[c.TrackID]))
	if c.ForcedATrack != timeline.NoID {
		tr.Properties.Set(propForceTrack, "1")
	}

	for _, k := range paramKeys(c.Params) {
		tr.Properties.Set(k, c.Params[k])
	}

	return tr
}

func exportGroups(forest []timeline.GroupNode, leaves map[int]leafKey) (string, error) {
	if len(forest) == 0 {
		return "", nil
	}

	var convert func(n timeline.GroupNode) (groupJSON, bool)
	convert = func(n timeline.GroupNode) (groupJSON, bool) {
		if n.IsLeaf() {
			key, ok := leaves[n.ID]
			return newLeaf(key), ok
		}

		g := groupJSON{Type: groupNormal}
		for _, c := range n.Children {
			if child, ok := convert(c); ok {
				g.Children = append(g.Children, child)
			}
		}

		return g, len(g.Children) > 0
	}

	nodes := make([]groupJSON, 0, len(forest))
	for _, n := range forest {
		if g, ok := convert(n); ok {
			nodes = append(nodes, g)
		}
	}

	return encodeGroups(nodes)
}
