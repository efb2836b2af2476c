package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recipeviz/graph"
)

func scenarioGraph() ([]graph.Node, []graph.Edge) {
	nodes := []graph.Node{
		{ID: 1, Name: "A", Pos: graph.Point{X: 0, Y: 0}},
		{ID: 2, Name: "B", Pos: graph.Point{X: 100, Y: 0}},
		{ID: 3, Name: "C", Pos: graph.Point{X: 50, Y: 100}},
	}
	edges := []graph.Edge{
		{FromID: 1, ToID: 2, From: graph.Point{X: 30, Y: 30}, To: graph.Point{X: 130, Y: 30}},
		{FromID: 2, ToID: 3, From: graph.Point{X: 130, Y: 30}, To: graph.Point{X: 80, Y: 130}},
	}
	return nodes, edges
}

func edgeIDs(v Visible) [][2]int {
	out := make([][2]int, 0, len(v.Edges))
	for _, e := range v.Edges {
		out = append(out, [2]int{e.FromID, e.ToID})
	}
	return out
}

func TestEdgesRequireBothEndpointsRevealed(t *testing.T) {
	nodes, edges := scenarioGraph()
	vp := Default(screen)

	for _, clip := range []bool{false, true} {
		opts := CullOptions{NodeSize: 60, ClipEdges: clip}

		v := ComputeVisible(nodes[:1], edges, vp, opts)
		assert.Empty(t, v.Edges)

		v = ComputeVisible(nodes[:2], edges, vp, opts)
		assert.Equal(t, [][2]int{{1, 2}}, edgeIDs(v))

		v = ComputeVisible(nodes, edges, vp, opts)
		assert.Equal(t, [][2]int{{1, 2}, {2, 3}}, edgeIDs(v))
	}
}

func TestComputeVisibleIsPure(t *testing.T) {
	nodes, edges := scenarioGraph()
	vp := Viewport{Offset: graph.Point{X: -20, Y: 10}, Size: screen, Scale: 1}
	opts := CullOptions{NodeSize: 60, ClipEdges: true}

	a := ComputeVisible(nodes, edges, vp, opts)
	b := ComputeVisible(nodes, edges, vp, opts)
	assert.Equal(t, a, b)
}

func TestNodeVisibleStrictOverlap(t *testing.T) {
	view := Default(screen).WorldRect() // [-400,400] x [-300,300]

	assert.True(t, NodeVisible(graph.Point{X: 399, Y: 0}, 60, view))
	assert.False(t, NodeVisible(graph.Point{X: 400, Y: 0}, 60, view), "touching right edge")
	assert.False(t, NodeVisible(graph.Point{X: -460, Y: 0}, 60, view), "touching left edge")
	assert.True(t, NodeVisible(graph.Point{X: -459, Y: 0}, 60, view))
	assert.False(t, NodeVisible(graph.Point{X: 0, Y: 300}, 60, view))
}

func TestNodeVisibleAtScaleOneMatchesOffsetWindow(t *testing.T) {
	vp := Viewport{Offset: graph.Point{X: -1000, Y: -500}, Size: screen, Scale: 1}
	view := vp.WorldRect()
	assert.Equal(t, Rect{MinX: 1000, MinY: 500, MaxX: 1800, MaxY: 1100}, view)
	assert.True(t, NodeVisible(graph.Point{X: 1000, Y: 500}, 60, view))
	assert.False(t, NodeVisible(graph.Point{X: 900, Y: 500}, 60, view))
}

func TestEdgeVisibleClipping(t *testing.T) {
	view := Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}

	assert.True(t, EdgeVisible(graph.Point{X: -50, Y: 50}, graph.Point{X: 10, Y: 50}, view))
	assert.False(t, EdgeVisible(graph.Point{X: -50, Y: 150}, graph.Point{X: 10, Y: 150}, view))
	assert.False(t, EdgeVisible(graph.Point{X: 150, Y: 50}, graph.Point{X: 300, Y: 50}, view))
	assert.True(t, EdgeVisible(graph.Point{X: 50, Y: -10}, graph.Point{X: 50, Y: 0}, view), "inclusive bound")
	assert.False(t, EdgeVisible(graph.Point{X: 50, Y: 200}, graph.Point{X: 50, Y: 300}, view))

	// Diagonals are never clipped, even far away
	assert.True(t, EdgeVisible(graph.Point{X: 500, Y: 500}, graph.Point{X: 900, Y: 800}, view))
}

func TestOffscreenNodesStillAllowEdges(t *testing.T) {
	nodes, edges := scenarioGraph()
	vp := Viewport{Offset: graph.Point{X: -5000, Y: -5000}, Size: screen, Scale: 1}

	v := ComputeVisible(nodes, edges, vp, CullOptions{NodeSize: 60})
	assert.Empty(t, v.Nodes)
	assert.Len(t, v.Edges, 2, "without clipping every eligible edge is drawn")

	v = ComputeVisible(nodes, edges, vp, CullOptions{NodeSize: 60, ClipEdges: true})
	assert.Equal(t, [][2]int{{2, 3}}, edgeIDs(v), "only the diagonal survives clipping")
}

func TestEmptyRevealedSet(t *testing.T) {
	_, edges := scenarioGraph()
	v := ComputeVisible(nil, edges, Default(screen), CullOptions{})
	assert.Empty(t, v.Nodes)
	assert.Empty(t, v.Edges)
}

func TestCullerMemoizes(t *testing.T) {
	nodes, edges := scenarioGraph()
	c := NewCuller()
	vp := Default(screen)
	opts := CullOptions{NodeSize: 60}

	first := c.Visible(1, 3, nodes, edges, vp, opts)
	second := c.Visible(1, 3, nodes, edges, vp, opts)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Recomputes())

	c.Visible(1, 4, nodes, edges, vp, opts)
	assert.Equal(t, 2, c.Recomputes())

	vp.Offset.X += 1
	c.Visible(1, 4, nodes, edges, vp, opts)
	assert.Equal(t, 3, c.Recomputes())

	c.Invalidate()
	c.Visible(1, 4, nodes, edges, vp, opts)
	assert.Equal(t, 4, c.Recomputes())
}

func TestMinimapTransform(t *testing.T) {
	bounds := graph.ContentBounds{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 500}
	m := NewMinimap(graph.Size{Width: 200, Height: 100}, 0, bounds)

	assert.InDelta(t, 0.15, m.Scale(), 1e-12)

	ind := m.Indicator(Default(screen))
	assert.InDelta(t, -60, ind.MinX, 1e-9)
	assert.InDelta(t, -45, ind.MinY, 1e-9)
	assert.InDelta(t, 120, ind.Width(), 1e-9)
	assert.InDelta(t, 90, ind.Height(), 1e-9)

	world, ok := m.ToWorld(graph.Point{X: 75, Y: 37.5})
	require.True(t, ok)
	assert.InDelta(t, 500, world.X, 1e-9)
	assert.InDelta(t, 250, world.Y, 1e-9)

	back := m.ToInset(world)
	assert.InDelta(t, 75, back.X, 1e-9)
	assert.InDelta(t, 37.5, back.Y, 1e-9)
}

func TestMinimapIndicatorAtScaleOne(t *testing.T) {
	bounds := graph.ContentBounds{MinX: 100, MinY: 50, MaxX: 1100, MaxY: 550}
	m := NewMinimap(graph.Size{Width: 200, Height: 100}, 0.75, bounds)
	s := m.Scale()
	vp := Viewport{Offset: graph.Point{X: -300, Y: -200}, Size: screen, Scale: 1}

	ind := m.Indicator(vp)
	assert.InDelta(t, (300-100)*s, ind.MinX, 1e-9)
	assert.InDelta(t, (200-50)*s, ind.MinY, 1e-9)
	assert.InDelta(t, 800*s, ind.Width(), 1e-9)
	assert.InDelta(t, 600*s, ind.Height(), 1e-9)
}

func TestMinimapClickRecentersCamera(t *testing.T) {
	bounds := graph.ContentBounds{MinX: -200, MinY: -100, MaxX: 1800, MaxY: 900}
	m := NewMinimap(graph.Size{Width: 240, Height: 160}, 0.75, bounds)

	cfg := DefaultCameraConfig(screen)
	cfg.RecenterDuration = 0
	cam := NewCamera(cfg)
	cam.Zoom(2, nil)

	p := graph.Point{X: 63.3, Y: 41.7}
	want, ok := m.ToWorld(p)
	require.True(t, ok)
	require.True(t, m.Click(cam, p))

	got := cam.Viewport().WorldCenter()
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
}

func TestMinimapEmptyBoundsIgnoresClicks(t *testing.T) {
	m := NewMinimap(graph.Size{Width: 200, Height: 100}, 0.75, graph.ContentBounds{})
	assert.Zero(t, m.Scale())
	assert.Equal(t, Rect{}, m.Indicator(Default(screen)))

	cam := NewCamera(DefaultCameraConfig(screen))
	before := cam.Viewport()
	assert.False(t, m.Click(cam, graph.Point{X: 10, Y: 10}))
	assert.Equal(t, before, cam.Viewport())
	assert.Equal(t, ModeIdle, cam.Mode())
}
