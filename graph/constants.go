package graph

const (
	// DefaultNodeSize is the square render size of a node in world units
	DefaultNodeSize = 60.0
)
