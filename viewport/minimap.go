package viewport

import (
	"math"

	"github.com/teranos/recipeviz/graph"
)

// DefaultMinimapShrink leaves a 25% margin so the indicator is not clipped at the inset edge
const DefaultMinimapShrink = 0.75

// Minimap maps between a fixed-size inset and the content bounds of the
// current search. It reads the camera and writes only recenter requests.
type Minimap struct {
	Inset  graph.Size
	Shrink float64
	Bounds graph.ContentBounds
}

// NewMinimap creates a minimap over bounds
func NewMinimap(inset graph.Size, shrink float64, bounds graph.ContentBounds) Minimap {
	if shrink <= 0 {
		shrink = DefaultMinimapShrink
	}
	return Minimap{Inset: inset, Shrink: shrink, Bounds: bounds}
}

// Scale is min(Iw/bw, Ih/bh) * shrink, or 0 when the bounds are empty
func (m Minimap) Scale() float64 {
	if m.Bounds.Empty() || m.Inset.Width <= 0 || m.Inset.Height <= 0 {
		return 0
	}
	s := math.Min(m.Inset.Width/m.Bounds.Width(), m.Inset.Height/m.Bounds.Height())
	return s * m.Shrink
}

// Indicator is the inset rectangle showing vp. Zero when the scale is 0.
func (m Minimap) Indicator(vp Viewport) Rect {
	s := m.Scale()
	if s == 0 {
		return Rect{}
	}
	world := vp.WorldRect()
	x := (world.MinX - m.Bounds.MinX) * s
	y := (world.MinY - m.Bounds.MinY) * s
	return Rect{
		MinX: x,
		MinY: y,
		MaxX: x + world.Width()*s,
		MaxY: y + world.Height()*s,
	}
}

// ToInset maps a world point into inset coordinates
func (m Minimap) ToInset(p graph.Point) graph.Point {
	s := m.Scale()
	return graph.Point{X: (p.X - m.Bounds.MinX) * s, Y: (p.Y - m.Bounds.MinY) * s}
}

// ToWorld inverts the inset transform. ok is false when the scale is 0.
func (m Minimap) ToWorld(p graph.Point) (graph.Point, bool) {
	s := m.Scale()
	if s == 0 {
		return graph.Point{}, false
	}
	return graph.Point{X: p.X/s + m.Bounds.MinX, Y: p.Y/s + m.Bounds.MinY}, true
}

// Click recenters cam on the world point under inset point p.
// Returns false (and leaves the camera alone) when the minimap has no scale.
func (m Minimap) Click(cam *Camera, p graph.Point) bool {
	target, ok := m.ToWorld(p)
	if !ok {
		return false
	}
	cam.Recenter(target)
	return true
}
