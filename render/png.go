package render

import (
	"io"

	"github.com/fogleman/gg"

	"github.com/teranos/recipeviz/errors"
	grapherror "github.com/teranos/recipeviz/graph/error"
)

// WriteMinimapPNG rasterises the minimap inset. A disabled minimap (empty
// content bounds) still produces a background-only image.
func WriteMinimapPNG(w io.Writer, mm MinimapScene, pal Palette) error {
	width, height := px(mm.Width), px(mm.Height)
	if width <= 0 || height <= 0 {
		return grapherror.New(grapherror.CategoryRender,
			errors.Newf("invalid minimap size %dx%d", width, height),
			"Minimap size must be positive")
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(rgba(pal.MinimapBackground))
	dc.Clear()

	if mm.Enabled {
		dc.SetLineWidth(1)
		dc.SetColor(rgba(pal.MinimapBounds))
		dc.DrawRectangle(mm.Bounds.MinX, mm.Bounds.MinY, mm.Bounds.Width(), mm.Bounds.Height())
		dc.Stroke()

		dc.SetColor(rgba(pal.MinimapNode))
		for _, r := range mm.Nodes {
			dc.DrawRectangle(r.MinX, r.MinY, max(r.Width(), 1), max(r.Height(), 1))
			dc.Fill()
		}

		ind := mm.Indicator
		dc.SetColor(rgba(pal.MinimapIndicator))
		dc.SetLineWidth(1.5)
		dc.DrawRectangle(ind.MinX, ind.MinY, ind.Width(), ind.Height())
		dc.Stroke()
	}

	if err := dc.EncodePNG(w); err != nil {
		return grapherror.New(grapherror.CategoryRender, errors.Wrap(err, "encode minimap png"), "")
	}
	return nil
}
