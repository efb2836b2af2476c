package graph

import (
	"net/url"
	"strings"
)

// resolveLink turns a dataset image link into an absolute URL.
// Absolute links are returned unchanged; relative links are joined onto base.
// An empty base leaves relative links untouched.
func resolveLink(base, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || base == "" {
		return link
	}

	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}

	baseURL, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return link
	}
	return baseURL.ResolveReference(ref).String()
}

// positionIndex maps world coordinates back to node IDs so legacy
// coordinate-only lines can be paired with their endpoints.
type positionIndex struct {
	byCorner map[Point]int
	byCenter map[Point]int
}

func newPositionIndex(nodes []Node, size float64) *positionIndex {
	idx := &positionIndex{
		byCorner: make(map[Point]int, len(nodes)),
		byCenter: make(map[Point]int, len(nodes)),
	}
	for _, n := range nodes {
		// First node wins when two share a position
		if _, ok := idx.byCorner[n.Pos]; !ok {
			idx.byCorner[n.Pos] = n.ID
		}
		c := n.Center(size)
		if _, ok := idx.byCenter[c]; !ok {
			idx.byCenter[c] = n.ID
		}
	}
	return idx
}

// lookup returns the node at p, matching either its top-left corner or its centre
func (idx *positionIndex) lookup(p Point) (int, bool) {
	if id, ok := idx.byCorner[p]; ok {
		return id, true
	}
	id, ok := idx.byCenter[p]
	return id, ok
}
