// Package viewport owns the camera over world space: pan offset, zoom,
// animated recentering, visibility culling and the minimap transform.
//
// Screen = World*Scale + Offset. World = (Screen - Offset) / Scale.
package viewport

import "github.com/teranos/recipeviz/graph"

// Viewport is the visible window onto world space
type Viewport struct {
	Offset graph.Point `json:"offset"`
	Size   graph.Size  `json:"size"`
	Scale  float64     `json:"scale"`
}

// Rect is an axis-aligned rectangle
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width of the rectangle
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height of the rectangle
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ScreenCenter is the centre of the viewport in screen coordinates
func (v Viewport) ScreenCenter() graph.Point {
	return graph.Point{X: v.Size.Width / 2, Y: v.Size.Height / 2}
}

// ToWorld converts a screen point to world space
func (v Viewport) ToWorld(p graph.Point) graph.Point {
	return p.Sub(v.Offset).Scale(1 / v.scale())
}

// ToScreen converts a world point to screen space
func (v Viewport) ToScreen(p graph.Point) graph.Point {
	return p.Scale(v.scale()).Add(v.Offset)
}

// WorldCenter is the world point under the viewport centre
func (v Viewport) WorldCenter() graph.Point {
	return v.ToWorld(v.ScreenCenter())
}

// WorldRect is the world-space region the viewport shows:
// [-ox/z, (-ox+w)/z] x [-oy/z, (-oy+h)/z]
func (v Viewport) WorldRect() Rect {
	z := v.scale()
	return Rect{
		MinX: -v.Offset.X / z,
		MinY: -v.Offset.Y / z,
		MaxX: (-v.Offset.X + v.Size.Width) / z,
		MaxY: (-v.Offset.Y + v.Size.Height) / z,
	}
}

// Default returns the initial viewport for size: scale 1 with the world
// origin at the viewport centre.
func Default(size graph.Size) Viewport {
	return Viewport{
		Offset: graph.Point{X: size.Width / 2, Y: size.Height / 2},
		Size:   size,
		Scale:  1,
	}
}
