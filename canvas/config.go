package canvas

import (
	"time"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/graph"
	"github.com/teranos/recipeviz/search"
	"github.com/teranos/recipeviz/viewport"
)

// Config holds per-session engine settings
type Config struct {
	NodeSize         float64
	Viewport         graph.Size
	ClipEdges        bool
	FollowFirst      bool // Recenter on the first node when a dataset arrives
	RecenterDuration time.Duration
	ZoomBase         float64
	MinZoomLevel     int
	MaxZoomLevel     int
	MinimapSize      graph.Size
	MinimapShrink    float64
	ImageBaseURL     string
	DefaultDelayMS   int
	InstantReveal    bool             // Ignore request delays (snapshot rendering)
	Now              func() time.Time // nil = time.Now
}

// DefaultConfig matches the defaults in am
func DefaultConfig() Config {
	return Config{
		NodeSize:         graph.DefaultNodeSize,
		Viewport:         graph.Size{Width: 1280, Height: 800},
		ClipEdges:        true,
		FollowFirst:      true,
		RecenterDuration: 300 * time.Millisecond,
		ZoomBase:         1.2,
		MinZoomLevel:     -10,
		MaxZoomLevel:     10,
		MinimapSize:      graph.Size{Width: 200, Height: 150},
		MinimapShrink:    viewport.DefaultMinimapShrink,
		DefaultDelayMS:   search.DefaultDelayMS,
	}
}

// ConfigFromAM maps the loaded configuration onto engine settings
func ConfigFromAM(c *am.Config) Config {
	cfg := Config{
		NodeSize:         c.Canvas.NodeSize,
		Viewport:         graph.Size{Width: c.Canvas.ViewportWidth, Height: c.Canvas.ViewportHeight},
		ClipEdges:        c.Canvas.ClipEdges,
		FollowFirst:      c.Canvas.FollowFirst,
		RecenterDuration: time.Duration(c.Canvas.RecenterDurationMS) * time.Millisecond,
		ZoomBase:         c.Canvas.ZoomBase,
		MinZoomLevel:     c.Canvas.MinZoomLevel,
		MaxZoomLevel:     c.Canvas.MaxZoomLevel,
		MinimapShrink:    c.Minimap.Shrink,
		ImageBaseURL:     c.Search.ImageBaseURL,
		DefaultDelayMS:   c.Reveal.DefaultDelayMS,
	}
	if c.Minimap.Enabled {
		cfg.MinimapSize = graph.Size{Width: c.Minimap.Width, Height: c.Minimap.Height}
	}
	return cfg
}

// withDefaults fills zero fields from DefaultConfig. A zero MinimapSize
// stays zero (minimap disabled).
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NodeSize <= 0 {
		c.NodeSize = d.NodeSize
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = d.Viewport
	}
	if c.ZoomBase <= 1 {
		c.ZoomBase = d.ZoomBase
	}
	if c.MinZoomLevel == 0 && c.MaxZoomLevel == 0 {
		c.MinZoomLevel, c.MaxZoomLevel = d.MinZoomLevel, d.MaxZoomLevel
	}
	if c.MinimapShrink <= 0 {
		c.MinimapShrink = d.MinimapShrink
	}
	if c.DefaultDelayMS <= 0 {
		c.DefaultDelayMS = d.DefaultDelayMS
	}
	return c
}

func (c Config) cameraConfig() viewport.CameraConfig {
	return viewport.CameraConfig{
		Size:             c.Viewport,
		RecenterDuration: c.RecenterDuration,
		ZoomBase:         c.ZoomBase,
		MinZoomLevel:     c.MinZoomLevel,
		MaxZoomLevel:     c.MaxZoomLevel,
		Now:              c.Now,
	}
}
