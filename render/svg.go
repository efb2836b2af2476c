package render

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	grapherror "github.com/teranos/recipeviz/graph/error"
)

// minimapMargin is the gap between the minimap inset and the canvas corner
const minimapMargin = 10

// SVGOptions controls optional layers of an SVG snapshot
type SVGOptions struct {
	Minimap bool // Draw the minimap inset in the bottom-right corner
}

// errWriter records the first write error; svgo itself never reports one
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func px(v float64) int { return int(math.Round(v)) }

// WriteSVG renders scene as a standalone SVG document
func WriteSVG(w io.Writer, scene Scene, pal Palette, opts SVGOptions) error {
	ew := &errWriter{w: w}
	width := px(scene.Viewport.Size.Width)
	height := px(scene.Viewport.Size.Height)

	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Title("recipeviz")
	canvas.Rect(0, 0, width, height, "fill:"+pal.Background)

	canvas.Group(fmt.Sprintf("stroke:%s;stroke-width:2", pal.Edge))
	for _, e := range scene.Edges {
		canvas.Line(px(e.X1), px(e.Y1), px(e.X2), px(e.Y2))
	}
	canvas.Gend()

	for _, n := range scene.Nodes {
		x, y, s := px(n.X), px(n.Y), px(n.Size)
		if n.Placeholder {
			canvas.Rect(x, y, s, s, fmt.Sprintf("fill:%s;stroke:%s", pal.PlaceholderFill, pal.NodeBorder))
			canvas.Text(x+s/2, y+s/2, n.Name,
				fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif;text-anchor:middle;dominant-baseline:middle", pal.PlaceholderText))
			continue
		}
		canvas.Image(x, y, s, s, html.EscapeString(n.Href))
	}

	switch {
	case scene.Loading():
		canvas.Text(width/2, height/2, scene.Message,
			fmt.Sprintf("fill:%s;font-size:20px;font-family:sans-serif;text-anchor:middle", pal.Text))
	case scene.ErrorText() != "":
		canvas.Text(width/2, height/2, scene.ErrorText(),
			fmt.Sprintf("fill:%s;font-size:20px;font-family:sans-serif;text-anchor:middle", pal.ErrorText))
	}

	if opts.Minimap && scene.Minimap.Enabled {
		mm := scene.Minimap
		ox := width - px(mm.Width) - minimapMargin
		oy := height - px(mm.Height) - minimapMargin
		canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", ox, oy))
		writeMinimapSVG(canvas, mm, pal)
		canvas.Gend()
	}

	canvas.End()
	if ew.err != nil {
		return grapherror.New(grapherror.CategoryRender, ew.err, "")
	}
	return nil
}

func writeMinimapSVG(canvas *svg.SVG, mm MinimapScene, pal Palette) {
	canvas.Rect(0, 0, px(mm.Width), px(mm.Height),
		fmt.Sprintf("fill:%s;stroke:%s", pal.MinimapBackground, pal.MinimapBounds))
	canvas.Rect(px(mm.Bounds.MinX), px(mm.Bounds.MinY), px(mm.Bounds.Width()), px(mm.Bounds.Height()),
		fmt.Sprintf("fill:none;stroke:%s", pal.MinimapBounds))
	for _, r := range mm.Nodes {
		canvas.Rect(px(r.MinX), px(r.MinY), max(px(r.Width()), 1), max(px(r.Height()), 1), "fill:"+pal.MinimapNode)
	}
	ind := mm.Indicator
	canvas.Rect(px(ind.MinX), px(ind.MinY), px(ind.Width()), px(ind.Height()),
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", pal.MinimapIndicator))
}
