package viewport

import (
	"math"
	"sync"
	"time"

	"github.com/teranos/recipeviz/graph"
)

// Mode is the camera's interaction state
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeAnimating
)

func (m Mode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeAnimating:
		return "animating"
	default:
		return "idle"
	}
}

// CameraConfig configures a Camera
type CameraConfig struct {
	Size             graph.Size
	RecenterDuration time.Duration // <= 0 recenters instantly
	ZoomBase         float64       // Scale = ZoomBase^level
	MinZoomLevel     int
	MaxZoomLevel     int
	Now              func() time.Time // nil = time.Now
}

// DefaultCameraConfig matches the interactive canvas: 300ms recenter,
// zoom buttons multiplying by 1.2.
func DefaultCameraConfig(size graph.Size) CameraConfig {
	return CameraConfig{
		Size:             size,
		RecenterDuration: 300 * time.Millisecond,
		ZoomBase:         1.2,
		MinZoomLevel:     -10,
		MaxZoomLevel:     10,
	}
}

type animation struct {
	from, to graph.Point
	start    time.Time
	duration time.Duration
}

// Camera is the only writer of the Viewport. All methods are safe for
// concurrent use.
type Camera struct {
	mu       sync.Mutex
	cfg      CameraConfig
	vp       Viewport
	level    int
	mode     Mode
	lastDrag graph.Point
	anim     *animation
}

// NewCamera creates a camera at the default centering
func NewCamera(cfg CameraConfig) *Camera {
	if cfg.ZoomBase <= 1 {
		cfg.ZoomBase = 1.2
	}
	if cfg.MinZoomLevel > 0 {
		cfg.MinZoomLevel = 0
	}
	if cfg.MaxZoomLevel < 0 {
		cfg.MaxZoomLevel = 0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Camera{cfg: cfg, vp: Default(cfg.Size)}
}

// Viewport returns the current viewport
func (c *Camera) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp
}

// Mode returns the current interaction mode
func (c *Camera) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ZoomLevel returns the integer zoom level (0 = scale 1)
func (c *Camera) ZoomLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Animating reports whether a recenter animation is in progress
func (c *Camera) Animating() bool {
	return c.Mode() == ModeAnimating
}

// DragStart begins a drag at screen point p. A running animation is
// cancelled and the drag takes over from the current offset.
func (c *Camera) DragStart(p graph.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anim = nil
	c.mode = ModeDragging
	c.lastDrag = p
}

// DragMove pans by the pointer delta since the last drag event.
// Returns false when no drag is active (including during an animation).
func (c *Camera) DragMove(p graph.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeDragging {
		return false
	}
	c.vp.Offset = c.vp.Offset.Add(p.Sub(c.lastDrag))
	c.lastDrag = p
	return true
}

// DragEnd finishes a drag
func (c *Camera) DragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeDragging {
		c.mode = ModeIdle
	}
}

// RecenterOffset is the offset that puts world point target at the viewport centre
func RecenterOffset(vp Viewport, target graph.Point) graph.Point {
	return vp.ScreenCenter().Sub(target.Scale(vp.scale()))
}

// Recenter animates the viewport so target ends at the centre.
// A drag in progress is ended.
func (c *Camera) Recenter(target graph.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dest := RecenterOffset(c.vp, target)
	if c.cfg.RecenterDuration <= 0 {
		c.vp.Offset = dest
		c.anim = nil
		c.mode = ModeIdle
		return
	}
	c.anim = &animation{
		from:     c.vp.Offset,
		to:       dest,
		start:    c.cfg.Now(),
		duration: c.cfg.RecenterDuration,
	}
	c.mode = ModeAnimating
}

// Tick advances a running animation to now. Returns true if the offset changed.
func (c *Camera) Tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeAnimating || c.anim == nil {
		return false
	}

	t := float64(now.Sub(c.anim.start)) / float64(c.anim.duration)
	if t >= 1 {
		c.vp.Offset = c.anim.to
		c.anim = nil
		c.mode = ModeIdle
		return true
	}
	if t < 0 {
		t = 0
	}
	e := EaseInOutCubic(t)
	prev := c.vp.Offset
	c.vp.Offset = graph.Point{
		X: c.anim.from.X + (c.anim.to.X-c.anim.from.X)*e,
		Y: c.anim.from.Y + (c.anim.to.Y-c.anim.from.Y)*e,
	}
	return c.vp.Offset != prev
}

// Zoom changes the zoom level by steps around focal (screen space;
// nil = viewport centre). The world point under focal stays fixed.
// Returns false when the level is already at its limit.
func (c *Camera) Zoom(steps int, focal *graph.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLevel(c.level+steps, focal)
}

// SetZoomLevel jumps to an absolute zoom level around the viewport centre
func (c *Camera) SetZoomLevel(level int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLevel(level, nil)
}

func (c *Camera) setLevel(level int, focal *graph.Point) bool {
	if level < c.cfg.MinZoomLevel {
		level = c.cfg.MinZoomLevel
	}
	if level > c.cfg.MaxZoomLevel {
		level = c.cfg.MaxZoomLevel
	}
	if level == c.level {
		return false
	}

	f := c.vp.ScreenCenter()
	if focal != nil {
		f = *focal
	}
	world := c.vp.ToWorld(f)

	c.level = level
	c.vp.Scale = math.Pow(c.cfg.ZoomBase, float64(level))
	c.vp.Offset = f.Sub(world.Scale(c.vp.Scale))

	// Zooming ends any recenter in flight at the current position
	if c.mode == ModeAnimating {
		c.anim = nil
		c.mode = ModeIdle
	}
	return true
}

// Reset returns to scale 1 with the world origin at the viewport centre
func (c *Camera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vp = Default(c.vp.Size)
	c.level = 0
	c.anim = nil
	c.mode = ModeIdle
}

// Resize changes the viewport size, keeping the world point at the centre fixed
func (c *Camera) Resize(size graph.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size == c.vp.Size {
		return
	}
	prev := c.vp.Size
	center := c.vp.WorldCenter()
	c.vp.Size = size
	c.vp.Offset = RecenterOffset(c.vp, center)
	if c.anim != nil {
		// Keep the animation aimed at the same world point
		shift := graph.Point{X: (size.Width - prev.Width) / 2, Y: (size.Height - prev.Height) / 2}
		c.anim.from = c.anim.from.Add(shift)
		c.anim.to = c.anim.to.Add(shift)
	}
	c.cfg.Size = size
}

// EaseInOutCubic maps t in [0,1] onto an ease-in-out curve
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
