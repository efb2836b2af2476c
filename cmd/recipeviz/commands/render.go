package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/canvas"
	"github.com/teranos/recipeviz/display"
	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/search"
	"github.com/teranos/recipeviz/sym"
)

// RenderCmd renders one search to a file
var RenderCmd = &cobra.Command{
	Use:   "render",
	Short: sym.Render + " Render one search to SVG (or its minimap to PNG)",
	Long: `Run a search to completion and write the canvas, centred on the
content, as an SVG document. With --png the minimap inset is rasterised
instead.

The dataset comes from the search backend (search.backend_url) or, with
--dataset, from a JSON or YAML file in the backend's wire format.`,
	Example: `  recipeviz render --target Steam --method dfs --out steam.svg
  recipeviz render --dataset steam.yaml --minimap --out -
  recipeviz render --target Steam --png --out minimap.png`,
	RunE: runRender,
}

// renderOptions are the render command's flags
type renderOptions struct {
	Target  string
	Method  string
	Option  string
	Count   int
	Dataset string
	Out     string
	Minimap bool
	PNG     bool
	Width   float64
	Height  float64
	Palette string
}

// renderSummary is printed after a successful render
type renderSummary struct {
	Output   string `json:"output"`
	Format   string `json:"format"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Revealed int    `json:"revealed"`
	Status   string `json:"status"`
}

var renderOpts renderOptions

func init() {
	f := RenderCmd.Flags()
	f.StringVarP(&renderOpts.Target, "target", "t", "", "Element to search for")
	f.StringVarP(&renderOpts.Method, "method", "m", string(search.MethodBFS), "Search method: bfs, dfs, bidirectional")
	f.StringVar(&renderOpts.Option, "option", string(search.OptionShortest), "Result option: shortest, multiple")
	f.IntVar(&renderOpts.Count, "count", 0, "Recipe count for --option multiple")
	f.StringVarP(&renderOpts.Dataset, "dataset", "d", "", "Read the dataset from a JSON/YAML file instead of the backend")
	f.StringVarP(&renderOpts.Out, "out", "o", "recipeviz.svg", "Output file, - for stdout")
	f.BoolVar(&renderOpts.Minimap, "minimap", false, "Draw the minimap inset on the SVG")
	f.BoolVar(&renderOpts.PNG, "png", false, "Write the minimap as PNG instead of the canvas as SVG")
	f.Float64Var(&renderOpts.Width, "width", 0, "Canvas width (default canvas.viewport_width)")
	f.Float64Var(&renderOpts.Height, "height", 0, "Canvas height (default canvas.viewport_height)")
	f.StringVar(&renderOpts.Palette, "palette", "", "Built-in palette (default canvas.palette)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	w := io.Writer(os.Stdout)
	if renderOpts.Out != "-" {
		file, err := os.Create(renderOpts.Out)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", renderOpts.Out)
		}
		defer file.Close()
		w = file
	}

	start := time.Now()
	scene, err := renderSnapshot(ctx, cfg, renderOpts, w)
	if err != nil {
		if msg := grapherror.UIMessage(err); msg != "" {
			pterm.Error.Println(msg)
		}
		return err
	}

	summary := renderSummary{
		Output:   renderOpts.Out,
		Format:   "svg",
		Nodes:    len(scene.Nodes),
		Edges:    len(scene.Edges),
		Revealed: scene.Revealed,
		Status:   string(scene.Status),
	}
	if renderOpts.PNG {
		summary.Format = "png"
	}

	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(os.Stderr, summary)
	}
	if renderOpts.Out != "-" {
		pterm.Success.Printf("Wrote %s (%d nodes, %d edges) in %s\n",
			summary.Output, summary.Nodes, summary.Edges, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// renderSnapshot captures the search described by o and writes it to w
func renderSnapshot(ctx context.Context, cfg *am.Config, o renderOptions, w io.Writer) (render.Scene, error) {
	canvasCfg := canvas.ConfigFromAM(cfg)
	if o.Width > 0 && o.Height > 0 {
		canvasCfg.Viewport = graph.Size{Width: o.Width, Height: o.Height}
	}

	palName, palPath := cfg.Canvas.Palette, cfg.Canvas.PalettePath
	if o.Palette != "" {
		palName, palPath = o.Palette, ""
	}
	pal, err := render.ResolvePalette(palName, palPath)
	if err != nil {
		return render.Scene{}, err
	}

	req := search.Request{
		Target:  o.Target,
		Method:  search.Method(o.Method),
		Option:  search.Option(o.Option),
		Count:   o.Count,
		DelayMS: cfg.Reveal.DefaultDelayMS,
	}

	var src search.Source
	if o.Dataset != "" {
		src = search.FileSource{Path: o.Dataset}
		if req.Target == "" {
			req.Target = strings.TrimSuffix(filepath.Base(o.Dataset), filepath.Ext(o.Dataset))
		}
	} else {
		src = search.NewClient(search.ClientConfig{
			BackendURL: cfg.Search.BackendURL,
			Timeout:    time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
		}, nil)
	}

	scene, err := canvas.Capture(ctx, canvasCfg, canvas.Deps{
		Source: src,
		Logger: logger.Logger.Named("render"),
	}, req)
	if err != nil {
		return render.Scene{}, err
	}

	if o.PNG {
		if !scene.Minimap.Enabled {
			return scene, errors.WithHint(
				errors.New("minimap is disabled or the dataset is empty"),
				"set minimap.enabled = true in am.toml")
		}
		return scene, render.WriteMinimapPNG(w, scene.Minimap, pal)
	}
	return scene, render.WriteSVG(w, scene, pal, render.SVGOptions{Minimap: o.Minimap})
}
