package graph

// Point is a position in world space (or screen space, depending on context)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p * s
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Size is a width/height pair
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one discovered element of a search result
type Node struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	ImageRef       string `json:"image_ref"`       // Absolute asset URL after link resolution
	Pos            Point  `json:"pos"`             // Top-left corner in world space
	DiscoveryOrder int    `json:"discovery_order"` // Index in the search's ordered output
	LoadError      bool   `json:"load_error,omitempty"`
	Asset          *Asset `json:"-"` // Resolved visual asset, nil until revealed or on failure
}

// Center returns the centre of the node's render box
func (n Node) Center(size float64) Point {
	return Point{X: n.Pos.X + size/2, Y: n.Pos.Y + size/2}
}

// Asset is the resolved visual for a node
type Asset struct {
	ContentType string
	Data        []byte
}

// Edge is one combination step (parent -> derived element)
type Edge struct {
	FromID int   `json:"from_id"`
	ToID   int   `json:"to_id"`
	From   Point `json:"from"` // Denormalized draw positions (endpoint centres)
	To     Point `json:"to"`
}

// Graph is a built, validated search result ready for revealing
type Graph struct {
	Nodes  []Node        `json:"nodes"` // In discovery order
	Edges  []Edge        `json:"edges"`
	Bounds ContentBounds `json:"bounds"`
	Stats  Stats         `json:"stats"`
}

// Stats summarises a built graph
type Stats struct {
	TotalNodes   int `json:"total_nodes"`
	TotalEdges   int `json:"total_edges"`
	DroppedLines int `json:"dropped_lines,omitempty"` // Legacy lines whose endpoints could not be paired
	NodesVisited int `json:"nodes_visited,omitempty"` // Reported by the search backend
	ExecutionMS  int `json:"execution_ms,omitempty"`  // Reported by the search backend
}

// Dataset is the wire format delivered by the external search backend.
// It is decoded from JSON (HTTP) or YAML (fixture files).
type Dataset struct {
	Images []ImageInfo `json:"images" yaml:"images"`
	Lines  []LineInfo  `json:"lines" yaml:"lines"`

	NodesVisited int `json:"nodes_visited,omitempty" yaml:"nodes_visited,omitempty"`
	ExecutionMS  int `json:"execution_ms,omitempty" yaml:"execution_ms,omitempty"`
}

// ImageInfo describes one node as sent by the search backend
type ImageInfo struct {
	ID   int    `json:"image_id" yaml:"image_id"`
	Name string `json:"image_name" yaml:"image_name"`
	Link string `json:"image_link" yaml:"image_link"`
	Row  int    `json:"image_pos_row" yaml:"image_pos_row"` // World Y
	Col  int    `json:"image_pos_col" yaml:"image_pos_col"` // World X
}

// LineInfo describes one edge. FromID/ToID are optional for legacy
// datasets that only carry coordinates.
type LineInfo struct {
	FromID *int `json:"from_id,omitempty" yaml:"from_id,omitempty"`
	ToID   *int `json:"to_id,omitempty" yaml:"to_id,omitempty"`
	FromX  int  `json:"from_x" yaml:"from_x"`
	FromY  int  `json:"from_y" yaml:"from_y"`
	ToX    int  `json:"to_x" yaml:"to_x"`
	ToY    int  `json:"to_y" yaml:"to_y"`
}
