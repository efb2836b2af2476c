package canvas

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recipeviz/events"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/internal/httpclient"
	rvtest "github.com/teranos/recipeviz/internal/testing"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/reveal"
	"github.com/teranos/recipeviz/search"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RecenterDuration = 0
	return cfg
}

func newBackendEngine(t *testing.T, backend *rvtest.FakeBackend, deps Deps) *Engine {
	t.Helper()
	cfg := testConfig()
	cfg.ImageBaseURL = backend.ImageBaseURL()
	deps.Source = search.NewClient(search.ClientConfig{BackendURL: backend.URL}, httpclient.Wrap(backend.Client()))
	e := New(cfg, deps)
	t.Cleanup(e.Close)
	return e
}

func kinds(evs []events.Event) []events.Kind {
	out := make([]events.Kind, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

// gatedSource returns datasets keyed by target, blocking targets listed in gates
type gatedSource struct {
	mu       sync.Mutex
	datasets map[string]*graph.Dataset
	gates    map[string]chan struct{}
	started  chan string
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		datasets: make(map[string]*graph.Dataset),
		gates:    make(map[string]chan struct{}),
		started:  make(chan string, 8),
	}
}

func (s *gatedSource) Fetch(ctx context.Context, req search.Request) (*graph.Dataset, error) {
	s.mu.Lock()
	ds, gate := s.datasets[req.Target], s.gates[req.Target]
	s.mu.Unlock()
	s.started <- req.Target
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return ds, nil
}

func singleNode(id int, name string) *graph.Dataset {
	return &graph.Dataset{Images: []graph.ImageInfo{{ID: id, Name: name, Link: name + ".svg"}}}
}

func TestEngineRevealsChainInOrder(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())
	e := newBackendEngine(t, backend, Deps{})

	res, err := e.Run(context.Background(), search.Request{Target: "Steam", DelayMS: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Revealed)
	assert.False(t, res.Stale)

	snap := e.Snapshot()
	assert.Equal(t, []int{1, 2, 3}, snap.RevealedIDs)
	assert.Equal(t, backend.ImageBaseURL()+"Water_2.svg", snap.Nodes[0].ImageRef)

	status, _ := e.Status()
	assert.Equal(t, render.StatusComplete, status)

	frame := e.Frame()
	assert.Len(t, frame.Nodes, 3)
	assert.Len(t, frame.Edges, 2)
	assert.Equal(t, 3, frame.Total)
	assert.True(t, frame.Minimap.Enabled)

	// Follow-first centres the camera on Water
	center := e.Viewport().WorldCenter()
	assert.InDelta(t, 30, center.X, 1e-9)
	assert.InDelta(t, 30, center.Y, 1e-9)

	assert.Equal(t,
		[]events.Kind{events.KindSearchStarted, events.KindDatasetReceived, events.KindRevealComplete},
		kinds(e.Events().History()))
	require.Len(t, backend.Requests(), 1)
	assert.Equal(t, "bfs", backend.Requests()[0].Method)
}

func TestEngineValidationLeavesStateAlone(t *testing.T) {
	src := newGatedSource()
	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	gen := e.Generation()
	err := e.Start(context.Background(), search.Request{Target: "Steam", DelayMS: -1})
	require.Error(t, err)
	assert.True(t, grapherror.IsCategory(err, grapherror.CategoryValidation))

	assert.Equal(t, gen, e.Generation())
	status, _ := e.Status()
	assert.Equal(t, render.StatusIdle, status)
	assert.Empty(t, e.Events().History())
	assert.Empty(t, src.started)
}

func TestEngineFetchFailureIsFatal(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())
	backend.SetStatus(http.StatusBadGateway)
	e := newBackendEngine(t, backend, Deps{})

	_, err := e.Run(context.Background(), search.Request{Target: "Steam"})
	require.Error(t, err)

	status, msg := e.Status()
	assert.Equal(t, render.StatusError, status)
	assert.NotEmpty(t, msg)
	assert.Zero(t, e.Snapshot().Len())

	frame := e.Frame()
	assert.Empty(t, frame.Nodes)
	assert.Equal(t, msg, frame.Message)

	history := e.Events().History()
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, events.KindError, last.Kind)
	assert.Equal(t, "fetch", last.Fields["category"])
}

func TestEngineEmptyDatasetCompletes(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, &graph.Dataset{})
	e := newBackendEngine(t, backend, Deps{})

	res, err := e.Run(context.Background(), search.Request{Target: "Nothing"})
	require.NoError(t, err)
	assert.Zero(t, res.Revealed)

	status, _ := e.Status()
	assert.Equal(t, render.StatusComplete, status)
	assert.False(t, e.Frame().Minimap.Enabled)
	assert.False(t, e.MinimapClick(graph.Point{X: 10, Y: 10}))
	assert.False(t, e.JumpToFirst())
}

func TestEngineNewSearchSupersedesOld(t *testing.T) {
	src := newGatedSource()
	src.datasets["Old"] = singleNode(10, "Old")
	src.datasets["New"] = singleNode(20, "New")
	gate := make(chan struct{})
	src.gates["Old"] = gate

	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	require.NoError(t, e.Start(context.Background(), search.Request{Target: "Old", DelayMS: 1}))
	assert.Equal(t, "Old", <-src.started)
	oldGen := e.Generation()

	require.NoError(t, e.Start(context.Background(), search.Request{Target: "New", DelayMS: 1}))
	assert.Equal(t, "New", <-src.started)
	e.Wait()

	assert.Greater(t, e.Generation(), oldGen)
	assert.Equal(t, []int{20}, e.Snapshot().RevealedIDs)
	status, _ := e.Status()
	assert.Equal(t, render.StatusComplete, status)
	close(gate)
}

func TestEngineStaleFetchNeverInstalls(t *testing.T) {
	src := newGatedSource()
	src.datasets["Old"] = singleNode(10, "Old")
	gate := make(chan struct{})
	src.gates["Old"] = gate

	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	done := make(chan reveal.Result, 1)
	go func() {
		// Background context: only the generation check can stop this run
		res, _ := e.Run(context.Background(), search.Request{Target: "Old", DelayMS: 1})
		done <- res
	}()
	<-src.started

	e.Cancel()
	close(gate)

	res := <-done
	assert.True(t, res.Stale)
	assert.Zero(t, e.Snapshot().Len())
	status, _ := e.Status()
	assert.Equal(t, render.StatusIdle, status)
}

func TestEngineCancelStopsReveal(t *testing.T) {
	src := newGatedSource()
	src.datasets["Chain"] = rvtest.ChainDataset()
	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	require.NoError(t, e.Start(context.Background(), search.Request{Target: "Chain", DelayMS: 10_000}))
	<-src.started
	require.Eventually(t, func() bool { return e.Snapshot().Len() == 1 }, time.Second, 5*time.Millisecond)

	e.Cancel()
	e.Wait()
	assert.Equal(t, 1, e.Snapshot().Len(), "revealed nodes stay after cancel")
	status, _ := e.Status()
	assert.Equal(t, render.StatusIdle, status)
}

func TestEngineRunReturnsCallerCancellation(t *testing.T) {
	src := newGatedSource()
	src.datasets["Chain"] = rvtest.ChainDataset()
	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res, err := e.Run(ctx, search.Request{Target: "Chain", DelayMS: 1000})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, res.Stale)
	assert.Equal(t, 1, res.Revealed)

	status, msg := e.Status()
	assert.Equal(t, render.StatusIdle, status)
	assert.Empty(t, msg)
	assert.Equal(t, []int{1}, e.Snapshot().RevealedIDs, "revealed nodes stay")
	assert.Equal(t,
		[]events.Kind{events.KindSearchStarted, events.KindDatasetReceived},
		kinds(e.Events().History()))
}

func TestEngineRunCancelledDuringFetch(t *testing.T) {
	src := newGatedSource()
	src.datasets["Slow"] = rvtest.ChainDataset()
	src.gates["Slow"] = make(chan struct{})
	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-src.started
		cancel()
	}()
	res, err := e.Run(ctx, search.Request{Target: "Slow", DelayMS: 1})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.Stale)

	status, _ := e.Status()
	assert.Equal(t, render.StatusIdle, status)
	assert.Equal(t, []events.Kind{events.KindSearchStarted}, kinds(e.Events().History()),
		"caller cancellation is not a fetch failure")
}

// sourceFunc adapts a function to search.Source
type sourceFunc func(ctx context.Context, req search.Request) (*graph.Dataset, error)

func (f sourceFunc) Fetch(ctx context.Context, req search.Request) (*graph.Dataset, error) {
	return f(ctx, req)
}

func TestEngineCloseWaitsForConcurrentStart(t *testing.T) {
	for i := 0; i < 50; i++ {
		var finished atomic.Bool
		src := sourceFunc(func(ctx context.Context, req search.Request) (*graph.Dataset, error) {
			<-ctx.Done()
			finished.Store(true)
			return nil, ctx.Err()
		})
		e := New(testConfig(), Deps{Source: src})

		startErr := make(chan error, 1)
		go func() {
			startErr <- e.Start(context.Background(), search.Request{Target: "x", DelayMS: 1})
		}()
		e.Close()

		if err := <-startErr; err != nil {
			assert.True(t, grapherror.IsCategory(err, grapherror.CategoryInternal))
			continue
		}
		// Start won the race, so Close waited for its run
		assert.True(t, finished.Load())
	}
}

func TestEngineAssetFailureFlagsNode(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())
	backend.MissingImage("Fire_2.svg")
	resolver := reveal.NewHTTPResolver(httpclient.Wrap(backend.Client()), reveal.HTTPResolverConfig{})
	e := newBackendEngine(t, backend, Deps{Resolver: resolver})

	res, err := e.Run(context.Background(), search.Request{Target: "Steam", DelayMS: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Revealed)
	assert.Equal(t, 1, res.Failed)

	fire, ok := e.store.Node(2)
	require.True(t, ok)
	assert.True(t, fire.LoadError)

	var failed []events.Event
	for _, ev := range e.Events().History() {
		if ev.Kind == events.KindNodeFailed {
			failed = append(failed, ev)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "Fire", failed[0].Fields["name"])

	for _, n := range e.Frame().Nodes {
		assert.Equal(t, n.ID == 2, n.Placeholder)
	}
}

func TestEngineMinimapClickAndCamera(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())
	e := newBackendEngine(t, backend, Deps{})
	_, err := e.Run(context.Background(), search.Request{Target: "Steam", DelayMS: 1})
	require.NoError(t, err)

	mm := e.Frame().Minimap
	require.True(t, mm.Enabled)

	// Click the centre of the drawn bounds: the camera centres on the content centre
	click := graph.Point{X: mm.Bounds.MaxX / 2, Y: mm.Bounds.MaxY / 2}
	require.True(t, e.MinimapClick(click))
	center := e.Viewport().WorldCenter()
	want := e.Bounds().Center()
	assert.InDelta(t, want.X, center.X, 1e-6)
	assert.InDelta(t, want.Y, center.Y, 1e-6)

	e.Frame()
	culls := e.Culls()
	e.Frame()
	assert.Equal(t, culls, e.Culls(), "unchanged inputs reuse the visible set")

	e.DragStart(graph.Point{X: 0, Y: 0})
	e.DragMove(graph.Point{X: 5000, Y: 0})
	e.DragEnd()
	assert.Empty(t, e.Frame().Nodes, "content dragged out of view")
	assert.Greater(t, e.Culls(), culls)

	e.ResetView()
	assert.Len(t, e.Frame().Nodes, 3)

	require.True(t, e.JumpToFirst())
	assert.InDelta(t, 30, e.Viewport().WorldCenter().X, 1e-9)
}

func TestEngineSignalsChanges(t *testing.T) {
	src := newGatedSource()
	src.datasets["One"] = singleNode(1, "One")
	e := New(testConfig(), Deps{Source: src})
	t.Cleanup(e.Close)

	require.NoError(t, e.Start(context.Background(), search.Request{Target: "One", DelayMS: 1}))
	select {
	case <-e.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signalled for a new search")
	}
	e.Wait()
}

func TestEngineClosedRejectsSearch(t *testing.T) {
	e := New(testConfig(), Deps{Source: newGatedSource()})
	e.Close()
	e.Close()

	err := e.Start(context.Background(), search.Request{Target: "x", DelayMS: 1})
	assert.True(t, grapherror.IsCategory(err, grapherror.CategoryInternal))
}

func TestConfigFromDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, graph.DefaultNodeSize, cfg.NodeSize)
	assert.Equal(t, 1.2, cfg.ZoomBase)
	assert.Equal(t, search.DefaultDelayMS, cfg.DefaultDelayMS)
	assert.Zero(t, cfg.MinimapSize.Width, "zero minimap size stays disabled")
}

func TestCaptureCentresContent(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())
	src := search.NewClient(search.ClientConfig{BackendURL: backend.URL}, httpclient.Wrap(backend.Client()))

	cfg := DefaultConfig()
	cfg.ImageBaseURL = backend.ImageBaseURL()
	scene, err := Capture(context.Background(), cfg, Deps{Source: src}, search.Request{Target: "Steam", DelayMS: 5000})
	require.NoError(t, err)

	assert.Equal(t, render.StatusComplete, scene.Status)
	assert.Equal(t, 3, scene.Revealed)
	assert.Len(t, scene.Nodes, 3)
	center := scene.Viewport.WorldCenter()
	assert.InDelta(t, 80, center.X, 1e-9)
	assert.InDelta(t, 80, center.Y, 1e-9)

	backend.SetStatus(http.StatusInternalServerError)
	_, err = Capture(context.Background(), cfg, Deps{Source: src}, search.Request{Target: "Steam"})
	assert.True(t, grapherror.IsCategory(err, grapherror.CategoryFetch))
}
