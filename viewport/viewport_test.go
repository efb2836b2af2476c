package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recipeviz/graph"
)

var screen = graph.Size{Width: 800, Height: 600}

// fakeClock is a manually advanced clock for animation tests
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCamera(clock *fakeClock) *Camera {
	cfg := DefaultCameraConfig(screen)
	cfg.Now = clock.Now
	return NewCamera(cfg)
}

func TestDefaultViewport(t *testing.T) {
	vp := Default(screen)
	assert.Equal(t, graph.Point{X: 400, Y: 300}, vp.Offset)
	assert.Equal(t, Rect{MinX: -400, MinY: -300, MaxX: 400, MaxY: 300}, vp.WorldRect())
	assert.Equal(t, graph.Point{}, vp.WorldCenter())
}

func TestScreenWorldRoundTrip(t *testing.T) {
	vp := Viewport{Offset: graph.Point{X: -120, Y: 35}, Size: screen, Scale: 1.44}
	p := graph.Point{X: 321, Y: -17}
	back := vp.ToWorld(vp.ToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestDragPansOneToOne(t *testing.T) {
	cam := newTestCamera(&fakeClock{now: time.Unix(0, 0)})

	assert.False(t, cam.DragMove(graph.Point{X: 10, Y: 10}), "move without start is ignored")

	cam.DragStart(graph.Point{X: 100, Y: 100})
	assert.Equal(t, ModeDragging, cam.Mode())
	require.True(t, cam.DragMove(graph.Point{X: 130, Y: 90}))
	require.True(t, cam.DragMove(graph.Point{X: 140, Y: 95}))
	cam.DragEnd()

	assert.Equal(t, ModeIdle, cam.Mode())
	assert.Equal(t, graph.Point{X: 440, Y: 295}, cam.Viewport().Offset)
}

func TestRecenterAnimates(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cam := newTestCamera(clock)

	cam.Recenter(graph.Point{X: 1000, Y: 500})
	assert.Equal(t, ModeAnimating, cam.Mode())
	assert.Equal(t, graph.Point{X: 400, Y: 300}, cam.Viewport().Offset, "offset moves only on tick")

	clock.Advance(150 * time.Millisecond)
	require.True(t, cam.Tick(clock.Now()))
	mid := cam.Viewport().Offset
	assert.InDelta(t, -100, mid.X, 1e-9)
	assert.InDelta(t, 50, mid.Y, 1e-9)

	clock.Advance(150 * time.Millisecond)
	require.True(t, cam.Tick(clock.Now()))
	assert.Equal(t, graph.Point{X: -600, Y: -200}, cam.Viewport().Offset)
	assert.Equal(t, ModeIdle, cam.Mode())
	assert.False(t, cam.Tick(clock.Now()))

	wc := cam.Viewport().WorldCenter()
	assert.InDelta(t, 1000, wc.X, 1e-9)
	assert.InDelta(t, 500, wc.Y, 1e-9)
}

func TestDragDuringAnimation(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cam := newTestCamera(clock)

	cam.Recenter(graph.Point{X: 1000, Y: 500})
	clock.Advance(100 * time.Millisecond)
	cam.Tick(clock.Now())
	assert.False(t, cam.DragMove(graph.Point{X: 5, Y: 5}), "viewport is read-only to stray moves while animating")

	at := cam.Viewport().Offset
	cam.DragStart(graph.Point{X: 0, Y: 0})
	assert.Equal(t, ModeDragging, cam.Mode())
	require.True(t, cam.DragMove(graph.Point{X: 10, Y: 0}))
	assert.Equal(t, at.Add(graph.Point{X: 10}), cam.Viewport().Offset)

	clock.Advance(time.Second)
	assert.False(t, cam.Tick(clock.Now()), "cancelled animation must not resume")
}

func TestRecenterInstantWhenNoDuration(t *testing.T) {
	cfg := DefaultCameraConfig(screen)
	cfg.RecenterDuration = 0
	cam := NewCamera(cfg)

	cam.Recenter(graph.Point{X: 30, Y: 30})
	assert.Equal(t, ModeIdle, cam.Mode())
	assert.Equal(t, graph.Point{X: 370, Y: 270}, cam.Viewport().Offset)
}

func TestZoomKeepsFocalPointFixed(t *testing.T) {
	cam := newTestCamera(&fakeClock{})
	focal := graph.Point{X: 200, Y: 150}
	before := cam.Viewport().ToWorld(focal)

	require.True(t, cam.Zoom(2, &focal))
	vp := cam.Viewport()
	assert.InDelta(t, 1.44, vp.Scale, 1e-12)
	after := vp.ToWorld(focal)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomDoesNotDrift(t *testing.T) {
	cam := newTestCamera(&fakeClock{})
	start := cam.Viewport()

	for i := 0; i < 50; i++ {
		cam.Zoom(1, nil)
		cam.Zoom(-1, nil)
	}
	for i := 0; i < 5; i++ {
		cam.Zoom(1, nil)
	}
	for i := 0; i < 5; i++ {
		cam.Zoom(-1, nil)
	}

	vp := cam.Viewport()
	assert.Equal(t, 1.0, vp.Scale)
	assert.Equal(t, 0, cam.ZoomLevel())
	assert.InDelta(t, start.Offset.X, vp.Offset.X, 1e-9)
	assert.InDelta(t, start.Offset.Y, vp.Offset.Y, 1e-9)
}

func TestZoomClampsLevel(t *testing.T) {
	cfg := DefaultCameraConfig(screen)
	cfg.MaxZoomLevel = 2
	cam := NewCamera(cfg)

	assert.True(t, cam.Zoom(5, nil))
	assert.Equal(t, 2, cam.ZoomLevel())
	assert.False(t, cam.Zoom(1, nil))
}

func TestSetZoomLevel(t *testing.T) {
	cfg := DefaultCameraConfig(screen)
	cfg.MaxZoomLevel = 4
	cam := NewCamera(cfg)
	before := cam.Viewport().WorldCenter()

	assert.True(t, cam.SetZoomLevel(2))
	assert.Equal(t, 2, cam.ZoomLevel())
	assert.InDelta(t, 1.44, cam.Viewport().Scale, 1e-9)
	after := cam.Viewport().WorldCenter()
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	assert.False(t, cam.SetZoomLevel(2), "same level is a no-op")
	assert.True(t, cam.SetZoomLevel(99))
	assert.Equal(t, 4, cam.ZoomLevel())
}

func TestResetAndResize(t *testing.T) {
	cam := newTestCamera(&fakeClock{})
	cam.Zoom(3, nil)
	cam.DragStart(graph.Point{})
	cam.DragMove(graph.Point{X: 50, Y: 50})
	cam.DragEnd()

	center := cam.Viewport().WorldCenter()
	cam.Resize(graph.Size{Width: 1000, Height: 400})
	after := cam.Viewport().WorldCenter()
	assert.InDelta(t, center.X, after.X, 1e-9)
	assert.InDelta(t, center.Y, after.Y, 1e-9)

	cam.Reset()
	vp := cam.Viewport()
	assert.Equal(t, 1.0, vp.Scale)
	assert.Equal(t, graph.Point{X: 500, Y: 200}, vp.Offset)
	assert.Equal(t, 0, cam.ZoomLevel())
}

func TestEaseInOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseInOutCubic(0))
	assert.Equal(t, 0.5, EaseInOutCubic(0.5))
	assert.Equal(t, 1.0, EaseInOutCubic(1))
	assert.Less(t, EaseInOutCubic(0.25), 0.25)
	assert.Greater(t, EaseInOutCubic(0.75), 0.75)
}
