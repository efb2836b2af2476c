package graph

import (
	grapherror "github.com/teranos/recipeviz/graph/error"
)

// BuildOptions controls how a wire Dataset becomes a Graph
type BuildOptions struct {
	NodeSize     float64 // Square render size; <= 0 uses DefaultNodeSize
	ImageBaseURL string  // Base for relative image links (empty = leave as-is)
}

// Build converts a wire dataset into a Graph. Node order is preserved
// exactly: DiscoveryOrder is the index in ds.Images. Edges are paired with
// their endpoint IDs (legacy coordinate-only lines are matched against node
// positions) and carry the endpoint centres as draw positions. Lines whose
// endpoints cannot be resolved are dropped and counted in Stats.DroppedLines.
func Build(ds *Dataset, opts BuildOptions) (*Graph, error) {
	size := opts.NodeSize
	if size <= 0 {
		size = DefaultNodeSize
	}

	g := &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}
	if ds == nil {
		return g, nil
	}

	byID := make(map[int]int, len(ds.Images))
	for i, img := range ds.Images {
		if _, dup := byID[img.ID]; dup {
			return nil, grapherror.Newf(grapherror.CategoryValidation,
				"The search result contained duplicate elements",
				"duplicate image_id %d at index %d", img.ID, i).
				WithSubcategory(grapherror.SubcategoryValidationDataset)
		}
		byID[img.ID] = i
		g.Nodes = append(g.Nodes, Node{
			ID:             img.ID,
			Name:           img.Name,
			ImageRef:       resolveLink(opts.ImageBaseURL, img.Link),
			Pos:            Point{X: float64(img.Col), Y: float64(img.Row)},
			DiscoveryOrder: i,
		})
	}

	var idx *positionIndex
	for _, line := range ds.Lines {
		fromID, toID, ok := pairLine(line, byID, func() *positionIndex {
			if idx == nil {
				idx = newPositionIndex(g.Nodes, size)
			}
			return idx
		})
		if !ok {
			g.Stats.DroppedLines++
			continue
		}
		g.Edges = append(g.Edges, Edge{
			FromID: fromID,
			ToID:   toID,
			From:   g.Nodes[byID[fromID]].Center(size),
			To:     g.Nodes[byID[toID]].Center(size),
		})
	}

	g.Bounds = ComputeBounds(g.Nodes, size)
	g.Stats.TotalNodes = len(g.Nodes)
	g.Stats.TotalEdges = len(g.Edges)
	g.Stats.NodesVisited = ds.NodesVisited
	g.Stats.ExecutionMS = ds.ExecutionMS
	return g, nil
}

// pairLine resolves a line's endpoint IDs. Explicit IDs win; otherwise the
// coordinates are looked up in the (lazily built) position index.
func pairLine(line LineInfo, byID map[int]int, index func() *positionIndex) (int, int, bool) {
	from, fromOK := endpoint(line.FromID, Point{X: float64(line.FromX), Y: float64(line.FromY)}, byID, index)
	to, toOK := endpoint(line.ToID, Point{X: float64(line.ToX), Y: float64(line.ToY)}, byID, index)
	return from, to, fromOK && toOK
}

func endpoint(id *int, p Point, byID map[int]int, index func() *positionIndex) (int, bool) {
	if id != nil {
		_, ok := byID[*id]
		return *id, ok
	}
	return index().lookup(p)
}
