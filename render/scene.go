// Package render turns a visible set and camera state into drawable output:
// a screen-space Scene (sent to clients as JSON), SVG snapshots and PNG
// minimaps.
package render

import (
	"github.com/teranos/recipeviz/graph"
	"github.com/teranos/recipeviz/viewport"
)

// Status is the lifecycle state shown by a surface
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusRevealing Status = "revealing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// LoadingText is the overlay shown while a dataset is being fetched
const LoadingText = "Loading..."

// SceneNode is a node in screen coordinates
type SceneNode struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Href        string  `json:"href,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// SceneEdge is an edge segment in screen coordinates
type SceneEdge struct {
	FromID int     `json:"from_id"`
	ToID   int     `json:"to_id"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// MinimapScene is the inset overview in inset coordinates
type MinimapScene struct {
	Enabled   bool            `json:"enabled"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Scale     float64         `json:"scale"`
	Bounds    viewport.Rect   `json:"bounds"`
	Nodes     []viewport.Rect `json:"nodes"`
	Indicator viewport.Rect   `json:"indicator"`
}

// Scene is one frame: everything a client needs to draw the canvas
type Scene struct {
	Generation uint64            `json:"generation"`
	Status     Status            `json:"status"`
	Message    string            `json:"message,omitempty"`
	Viewport   viewport.Viewport `json:"viewport"`
	Nodes      []SceneNode       `json:"nodes"`
	Edges      []SceneEdge       `json:"edges"`
	Revealed   int               `json:"revealed"`
	Total      int               `json:"total"`
	Minimap    MinimapScene      `json:"minimap"`
}

// Loading reports whether the loading overlay is shown
func (s Scene) Loading() bool { return s.Status == StatusLoading }

// ErrorText is the error overlay, empty unless the scene is in the error state
func (s Scene) ErrorText() string {
	if s.Status != StatusError {
		return ""
	}
	return s.Message
}

// Input collects what Compose needs
type Input struct {
	Generation uint64
	Status     Status
	Message    string
	Visible    viewport.Visible
	Viewport   viewport.Viewport
	NodeSize   float64

	// Revealed feeds the minimap dots; the minimap shows every revealed
	// node regardless of the main viewport.
	Revealed []graph.Node
	Total    int
	Minimap  viewport.Minimap
}

// Compose projects the visible set into screen space. Edges come first in
// draw order; nodes are drawn over them.
func Compose(in Input) Scene {
	size := in.NodeSize
	if size <= 0 {
		size = graph.DefaultNodeSize
	}
	vp := in.Viewport
	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}

	scene := Scene{
		Generation: in.Generation,
		Status:     in.Status,
		Message:    in.Message,
		Viewport:   vp,
		Nodes:      make([]SceneNode, 0, len(in.Visible.Nodes)),
		Edges:      make([]SceneEdge, 0, len(in.Visible.Edges)),
		Revealed:   len(in.Revealed),
		Total:      in.Total,
	}
	if scene.Status == StatusLoading && scene.Message == "" {
		scene.Message = LoadingText
	}

	for _, e := range in.Visible.Edges {
		from := vp.ToScreen(e.From)
		to := vp.ToScreen(e.To)
		scene.Edges = append(scene.Edges, SceneEdge{
			FromID: e.FromID, ToID: e.ToID,
			X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y,
		})
	}
	for _, n := range in.Visible.Nodes {
		p := vp.ToScreen(n.Pos)
		sn := SceneNode{
			ID:          n.ID,
			Name:        n.Name,
			X:           p.X,
			Y:           p.Y,
			Size:        size * scale,
			Placeholder: n.LoadError,
		}
		if !n.LoadError {
			sn.Href = n.ImageRef
		}
		scene.Nodes = append(scene.Nodes, sn)
	}

	scene.Minimap = ComposeMinimap(in.Minimap, vp, in.Revealed, size)
	return scene
}

// ComposeMinimap lays out the inset: content bounds, revealed node boxes and
// the live viewport indicator.
func ComposeMinimap(m viewport.Minimap, vp viewport.Viewport, revealed []graph.Node, nodeSize float64) MinimapScene {
	out := MinimapScene{
		Width:  m.Inset.Width,
		Height: m.Inset.Height,
		Scale:  m.Scale(),
		Nodes:  []viewport.Rect{},
	}
	if out.Scale == 0 {
		return out
	}
	out.Enabled = true
	s := out.Scale
	out.Bounds = viewport.Rect{
		MinX: 0, MinY: 0,
		MaxX: m.Bounds.Width() * s,
		MaxY: m.Bounds.Height() * s,
	}
	for _, n := range revealed {
		p := m.ToInset(n.Pos)
		out.Nodes = append(out.Nodes, viewport.Rect{
			MinX: p.X, MinY: p.Y,
			MaxX: p.X + nodeSize*s, MaxY: p.Y + nodeSize*s,
		})
	}
	out.Indicator = m.Indicator(vp)
	return out
}
