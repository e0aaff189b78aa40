// ABOUTME: JSON description of the group forest stored on the main tractor
// ABOUTME: Leaves address items by main tractor track index and position

package melt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	groupLeaf   = "Leaf"
	groupNormal = "Normal"

	leafClip        = "clip"
	leafComposition = "composition"
)

type groupJSON struct {
	Type     string      `json:"type"`
	Leaf     string      `json:"leaf,omitempty"`
	Data     string      `json:"data,omitempty"`
	Children []groupJSON `json:"children,omitempty"`
}

func decodeGroups(raw string) ([]groupJSON, error) {
	var nodes []groupJSON
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		return nil, fmt.Errorf("invalid groups: %w", err)
	}

	return nodes, nil
}

func encodeGroups(nodes []groupJSON) (string, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("failed to encode groups: %w", err)
	}

	return string(data), nil
}

func (n groupJSON) leafKey() (leafKey, error) {
	trackStr, posStr, ok := strings.Cut(n.Data, ":")
	if !ok {
		return leafKey{}, fmt.Errorf("invalid leaf data %q", n.Data)
	}

	track, errT := strconv.Atoi(trackStr)
	pos, errP := strconv.Atoi(posStr)
	if errT != nil || errP != nil {
		return leafKey{}, fmt.Errorf("invalid leaf data %q", n.Data)
	}

	switch n.Leaf {
	case leafClip:
		return leafKey{track: track, pos: pos, isClip: true}, nil
	case leafComposition:
		return leafKey{track: track, pos: pos, isClip: false}, nil
	}

	return leafKey{}, fmt.Errorf("unknown leaf type %q", n.Leaf)
}

func newLeaf(key leafKey) groupJSON {
	kind := leafComposition
	if key.isClip {
		kind = leafClip
	}

	return groupJSON{Type: groupLeaf, Leaf: kind, Data: fmt.Sprintf("%d:%d", key.track, key.pos)}
}
