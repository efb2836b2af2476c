package viewport

import (
	"sync"

	"github.com/teranos/recipeviz/graph"
	"github.com/teranos/recipeviz/metrics"
)

// CullOptions configures the visibility filter
type CullOptions struct {
	NodeSize float64 // <= 0 uses graph.DefaultNodeSize

	// ClipEdges skips axis-aligned edges lying wholly outside the viewport.
	// Diagonal edges are always kept.
	ClipEdges bool
}

// Visible is the drawable subset of the revealed graph for one viewport
type Visible struct {
	Nodes []graph.Node
	Edges []graph.Edge
}

// ComputeVisible filters revealed nodes and eligible edges down to what the
// viewport shows. It is pure: identical inputs produce identical outputs.
//
// An edge is eligible only when both endpoints are in revealed. Nodes are
// kept when their box strictly overlaps the viewport; touching edges do not
// count.
func ComputeVisible(revealed []graph.Node, edges []graph.Edge, vp Viewport, opts CullOptions) Visible {
	size := opts.NodeSize
	if size <= 0 {
		size = graph.DefaultNodeSize
	}
	view := vp.WorldRect()

	out := Visible{
		Nodes: make([]graph.Node, 0, len(revealed)),
		Edges: make([]graph.Edge, 0, len(edges)),
	}

	ids := make(map[int]struct{}, len(revealed))
	for _, n := range revealed {
		ids[n.ID] = struct{}{}
		if NodeVisible(n.Pos, size, view) {
			out.Nodes = append(out.Nodes, n)
		}
	}

	for _, e := range edges {
		if _, ok := ids[e.FromID]; !ok {
			continue
		}
		if _, ok := ids[e.ToID]; !ok {
			continue
		}
		if opts.ClipEdges && !EdgeVisible(e.From, e.To, view) {
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

// NodeVisible reports whether the size x size box at pos strictly overlaps view
func NodeVisible(pos graph.Point, size float64, view Rect) bool {
	return pos.X < view.MaxX && pos.X+size > view.MinX &&
		pos.Y < view.MaxY && pos.Y+size > view.MinY
}

// EdgeVisible is the per-frame clipping test. Horizontal and vertical segments
// get an inclusive range check; anything diagonal is treated as visible.
func EdgeVisible(from, to graph.Point, view Rect) bool {
	switch {
	case from.Y == to.Y:
		if from.Y < view.MinY || from.Y > view.MaxY {
			return false
		}
		lo, hi := minmax(from.X, to.X)
		return hi >= view.MinX && lo <= view.MaxX
	case from.X == to.X:
		if from.X < view.MinX || from.X > view.MaxX {
			return false
		}
		lo, hi := minmax(from.Y, to.Y)
		return hi >= view.MinY && lo <= view.MaxY
	default:
		return true
	}
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

type cullKey struct {
	generation uint64
	version    uint64
	edges      int
	vp         Viewport
	opts       CullOptions
}

// Culler memoizes ComputeVisible. It recomputes only when the revealed set
// version, the edge list, the viewport or the options changed.
type Culler struct {
	mu         sync.Mutex
	valid      bool
	key        cullKey
	result     Visible
	recomputes int
}

// NewCuller creates an empty Culler
func NewCuller() *Culler {
	return &Culler{}
}

// Visible returns the visible set, reusing the previous result when nothing
// it depends on has changed. generation and version identify the revealed
// snapshot; edges must be the (immutable) edge list of that generation.
func (c *Culler) Visible(generation, version uint64, revealed []graph.Node, edges []graph.Edge, vp Viewport, opts CullOptions) Visible {
	key := cullKey{generation: generation, version: version, edges: len(edges), vp: vp, opts: opts}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.key == key {
		return c.result
	}
	c.result = ComputeVisible(revealed, edges, vp, opts)
	c.key = key
	c.valid = true
	c.recomputes++
	metrics.CullRecomputes.Inc()
	return c.result
}

// Recomputes returns how many times the visible set was recomputed
func (c *Culler) Recomputes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recomputes
}

// Invalidate forces the next call to recompute
func (c *Culler) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
