package graph

import "math"

// ContentBounds is the bounding box of a dataset's node boxes in world space.
// It is static for a search result and only feeds the minimap scale.
type ContentBounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns MaxX - MinX
func (b ContentBounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY
func (b ContentBounds) Height() float64 { return b.MaxY - b.MinY }

// Empty reports whether the bounds enclose no area
func (b ContentBounds) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Center returns the midpoint of the bounds
func (b ContentBounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// ComputeBounds returns the bounds enclosing every node's size×size box.
// An empty node list yields the zero value.
func ComputeBounds(nodes []Node, size float64) ContentBounds {
	if len(nodes) == 0 {
		return ContentBounds{}
	}

	b := ContentBounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		b.MinX = math.Min(b.MinX, n.Pos.X)
		b.MinY = math.Min(b.MinY, n.Pos.Y)
		b.MaxX = math.Max(b.MaxX, n.Pos.X+size)
		b.MaxY = math.Max(b.MaxY, n.Pos.Y+size)
	}
	return b
}
