// Package canvas hosts one visualization session: the reveal store and
// scheduler, the camera, the culler and the status stream for a single
// viewer. A new search supersedes the previous one by bumping the store's
// generation; nothing from an older search is ever shown again.
package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/events"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/metrics"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/reveal"
	"github.com/teranos/recipeviz/search"
	"github.com/teranos/recipeviz/viewport"
)

// historySize is how many status events a session keeps for late subscribers
const historySize = 128

// Deps are the engine's collaborators
type Deps struct {
	Source   search.Source     // Required
	Resolver reveal.Resolver   // nil = reveal.StaticResolver
	Events   *events.Transport // nil = a private transport
	Logger   *zap.SugaredLogger
}

// resettable is implemented by resolvers that cache per search
type resettable interface {
	Reset()
}

// Engine is one canvas session. All methods are safe for concurrent use.
type Engine struct {
	cfg    Config
	deps   Deps
	store  *reveal.Store
	camera *viewport.Camera
	culler *viewport.Culler
	events *events.Transport
	log    *zap.SugaredLogger

	mu       sync.Mutex
	graph    *graph.Graph
	minimap  viewport.Minimap
	status   render.Status
	message  string
	searchID string
	cancel   context.CancelFunc

	changes chan struct{}
	unsub   func()
	done    chan struct{}
	runs    sync.WaitGroup
	closed  bool
}

// New creates an idle engine
func New(cfg Config, deps Deps) *Engine {
	cfg = cfg.withDefaults()
	if deps.Resolver == nil {
		deps.Resolver = reveal.StaticResolver{}
	}
	if deps.Events == nil {
		deps.Events = events.NewTransport(historySize)
	}
	log := deps.Logger
	if log == nil {
		log = logger.ComponentLogger("canvas")
	}

	e := &Engine{
		cfg:     cfg,
		deps:    deps,
		store:   reveal.NewStore(),
		camera:  viewport.NewCamera(cfg.cameraConfig()),
		culler:  viewport.NewCuller(),
		events:  deps.Events,
		log:     log,
		graph:   &graph.Graph{},
		status:  render.StatusIdle,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	e.minimap = viewport.NewMinimap(cfg.MinimapSize, cfg.MinimapShrink, graph.ContentBounds{})

	storeCh, unsub := e.store.Subscribe()
	e.unsub = unsub
	go e.forwardCommits(storeCh)
	return e
}

func (e *Engine) forwardCommits(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
			e.markDirty()
		case <-e.done:
			return
		}
	}
}

func (e *Engine) markDirty() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

// Changes signals (coalesced) whenever the frame may have changed
func (e *Engine) Changes() <-chan struct{} { return e.changes }

// Events returns the session's status stream
func (e *Engine) Events() *events.Transport { return e.events }

// Start validates req and begins fetching and revealing in the background.
// Validation errors are returned synchronously and leave the session as it
// was. Any search already running is superseded.
func (e *Engine) Start(ctx context.Context, req search.Request) error {
	req, gen, id, runCtx, err := e.begin(ctx, req)
	if err != nil {
		return err
	}
	go func() {
		defer e.runs.Done()
		_, _ = e.run(runCtx, gen, id, req)
	}()
	return nil
}

// Run is Start without the goroutine: it returns once the reveal completes,
// fails, or is superseded. If ctx ends first the session goes back to idle
// with the nodes revealed so far and ctx's error is returned.
func (e *Engine) Run(ctx context.Context, req search.Request) (reveal.Result, error) {
	req, gen, id, runCtx, err := e.begin(ctx, req)
	if err != nil {
		return reveal.Result{}, err
	}
	defer e.runs.Done()
	return e.run(runCtx, gen, id, req)
}

// Wait blocks until every search has returned
func (e *Engine) Wait() { e.runs.Wait() }

// begin supersedes the current search. On success the caller owns one
// count on e.runs and must call Done when the run returns.
func (e *Engine) begin(ctx context.Context, req search.Request) (search.Request, uint64, string, context.Context, error) {
	req = req.Normalize(e.cfg.DefaultDelayMS)
	if err := req.Validate(); err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		logger.LoggerFromContext(ctx, e.log).Debugw("search rejected",
			logger.FieldTarget, req.Target,
			logger.FieldError, err.Error())
		return req, 0, "", nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return req, 0, "", nil, grapherror.New(grapherror.CategoryInternal, errors.ErrClosed, "")
	}
	e.runs.Add(1)
	if e.cancel != nil {
		e.cancel()
	}
	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(logger.WithSearchID(ctx, id))
	e.cancel = cancel

	gen := e.store.Reset()
	e.searchID = id
	e.graph = &graph.Graph{}
	e.minimap = viewport.NewMinimap(e.cfg.MinimapSize, e.cfg.MinimapShrink, graph.ContentBounds{})
	e.status = render.StatusLoading
	e.message = ""
	e.culler.Invalidate()
	e.mu.Unlock()

	metrics.SearchesTotal.WithLabelValues("started").Inc()
	e.events.Publish(events.SearchStarted(gen, id, req.Target, string(req.Method), string(req.Option), req.DelayMS))
	logger.LoggerFromContext(runCtx, e.log).Infow("search started",
		logger.FieldGeneration, gen,
		logger.FieldTarget, req.Target,
		logger.FieldMethod, req.Method,
		logger.FieldOption, req.Option,
		logger.FieldDelayMS, req.DelayMS)
	e.markDirty()
	return req, gen, id, runCtx, nil
}

func (e *Engine) run(ctx context.Context, gen uint64, id string, req search.Request) (reveal.Result, error) {
	started := time.Now()
	log := logger.LoggerFromContext(ctx, e.log)

	ds, err := e.deps.Source.Fetch(ctx, req)
	if e.store.Generation() != gen {
		metrics.SearchesTotal.WithLabelValues("superseded").Inc()
		return reveal.Result{Stale: true}, nil
	}
	if err != nil && ctx.Err() != nil {
		return e.interrupted(log, gen, reveal.Result{}, ctx.Err())
	}
	if err != nil {
		e.fail(log, gen, id, err)
		return reveal.Result{}, err
	}

	g, err := graph.Build(ds, graph.BuildOptions{NodeSize: e.cfg.NodeSize, ImageBaseURL: e.cfg.ImageBaseURL})
	if err != nil {
		e.fail(log, gen, id, err)
		return reveal.Result{}, err
	}

	if !e.install(gen, g) {
		metrics.SearchesTotal.WithLabelValues("superseded").Inc()
		return reveal.Result{Stale: true}, nil
	}
	e.events.Publish(events.DatasetReceived(gen, id,
		g.Stats.TotalNodes, g.Stats.TotalEdges, g.Stats.DroppedLines,
		g.Stats.NodesVisited, g.Stats.ExecutionMS, time.Since(started)))
	log.Infow("dataset received",
		logger.FieldNodes, g.Stats.TotalNodes,
		logger.FieldEdges, g.Stats.TotalEdges,
		logger.FieldDurationMS, time.Since(started).Milliseconds())

	if r, ok := e.deps.Resolver.(resettable); ok {
		r.Reset()
	}

	delay := time.Duration(req.DelayMS) * time.Millisecond
	if e.cfg.InstantReveal {
		delay = 0
	}
	sched := reveal.NewScheduler(e.store, reveal.Options{
		Delay:    delay,
		Resolver: e.deps.Resolver,
		Logger:   e.log,
		OnAssetFailure: func(n graph.Node, err error) {
			e.events.Publish(events.NodeFailed(gen, id, n.ID, n.Name, err.Error()))
		},
	})

	res, err := sched.Run(ctx, gen, g.Nodes)
	if res.Stale {
		metrics.SearchesTotal.WithLabelValues("superseded").Inc()
		return res, nil
	}
	if err != nil {
		return e.interrupted(log, gen, res, err)
	}

	if !e.setStatus(gen, render.StatusComplete, "") {
		return res, nil
	}
	metrics.SearchesTotal.WithLabelValues("complete").Inc()
	e.events.Publish(events.RevealComplete(gen, id, res.Revealed, res.Failed, time.Since(started)))
	log.Infow("visualization complete",
		logger.FieldRevealed, res.Revealed,
		logger.FieldDurationMS, time.Since(started).Milliseconds())
	return res, nil
}

// interrupted settles a run whose context ended early. If a newer search or
// Cancel already moved the generation on, the run is reported stale.
// Otherwise the caller cancelled: the session returns to idle, keeping the
// nodes revealed so far, and err is handed back.
func (e *Engine) interrupted(log *zap.SugaredLogger, gen uint64, res reveal.Result, err error) (reveal.Result, error) {
	if !e.setStatus(gen, render.StatusIdle, "") {
		metrics.SearchesTotal.WithLabelValues("superseded").Inc()
		res.Stale = true
		return res, nil
	}
	metrics.SearchesTotal.WithLabelValues("cancelled").Inc()
	log.Infow("search cancelled",
		logger.FieldGeneration, gen,
		logger.FieldRevealed, res.Revealed,
		logger.FieldError, err.Error())
	return res, err
}

// install makes g the current graph if gen is still current
func (e *Engine) install(gen uint64, g *graph.Graph) bool {
	e.mu.Lock()
	if e.store.Generation() != gen {
		e.mu.Unlock()
		return false
	}
	e.graph = g
	e.minimap = viewport.NewMinimap(e.cfg.MinimapSize, e.cfg.MinimapShrink, g.Bounds)
	if len(g.Nodes) == 0 {
		e.status = render.StatusComplete
	} else {
		e.status = render.StatusRevealing
	}
	e.camera.Reset()
	e.culler.Invalidate()
	e.mu.Unlock()

	if e.cfg.FollowFirst && len(g.Nodes) > 0 {
		e.camera.Recenter(g.Nodes[0].Center(e.cfg.NodeSize))
	}
	e.markDirty()
	return true
}

func (e *Engine) fail(log *zap.SugaredLogger, gen uint64, id string, err error) {
	msg := grapherror.UIMessage(err)
	if !e.setStatus(gen, render.StatusError, msg) {
		return
	}
	meta := map[string]string{}
	if ge, ok := grapherror.As(err); ok {
		meta = ge.ToMeta()
		metrics.SearchesTotal.WithLabelValues(string(ge.Category) + "_failed").Inc()
	} else {
		metrics.SearchesTotal.WithLabelValues("failed").Inc()
	}
	e.events.Publish(events.Error(gen, id, msg, meta))
	log.Warnw("search failed",
		logger.FieldGeneration, gen,
		logger.FieldError, err.Error())
}

func (e *Engine) setStatus(gen uint64, status render.Status, msg string) bool {
	e.mu.Lock()
	if e.store.Generation() != gen {
		e.mu.Unlock()
		return false
	}
	e.status = status
	e.message = msg
	e.mu.Unlock()
	e.markDirty()
	return true
}

// Cancel stops the running search. Nodes already revealed stay on screen.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.store.Invalidate()
	if e.status == render.StatusLoading || e.status == render.StatusRevealing {
		e.status = render.StatusIdle
		e.message = ""
		metrics.SearchesTotal.WithLabelValues("cancelled").Inc()
	}
	e.mu.Unlock()
	e.markDirty()
}

// Close cancels any search and releases the session
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	e.store.Invalidate()
	e.mu.Unlock()

	e.runs.Wait()
	e.unsub()
	close(e.done)
}

// Status returns the lifecycle state and its message
func (e *Engine) Status() (render.Status, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.message
}

// SearchID identifies the current search (empty before the first)
func (e *Engine) SearchID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchID
}

// Generation returns the store's current generation
func (e *Engine) Generation() uint64 { return e.store.Generation() }

// Snapshot returns the reveal state
func (e *Engine) Snapshot() reveal.Snapshot { return e.store.Snapshot() }

// Bounds returns the content bounds of the current search
func (e *Engine) Bounds() graph.ContentBounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Bounds
}

// Viewport returns the camera's viewport
func (e *Engine) Viewport() viewport.Viewport { return e.camera.Viewport() }

// Culls returns how many times the visible set has been recomputed
func (e *Engine) Culls() int { return e.culler.Recomputes() }

// Frame composes the current scene
func (e *Engine) Frame() render.Scene {
	e.mu.Lock()
	snap := e.store.Snapshot()
	g := e.graph
	mm := e.minimap
	status, msg := e.status, e.message
	e.mu.Unlock()

	vp := e.camera.Viewport()
	opts := viewport.CullOptions{NodeSize: e.cfg.NodeSize, ClipEdges: e.cfg.ClipEdges}
	visible := e.culler.Visible(snap.Generation, snap.Version, snap.Nodes, g.Edges, vp, opts)

	return render.Compose(render.Input{
		Generation: snap.Generation,
		Status:     status,
		Message:    msg,
		Visible:    visible,
		Viewport:   vp,
		NodeSize:   e.cfg.NodeSize,
		Revealed:   snap.Nodes,
		Total:      len(g.Nodes),
		Minimap:    mm,
	})
}

// DragStart begins a pan at screen point p
func (e *Engine) DragStart(p graph.Point) {
	e.camera.DragStart(p)
	e.markDirty()
}

// DragMove pans by the pointer delta
func (e *Engine) DragMove(p graph.Point) {
	if e.camera.DragMove(p) {
		e.markDirty()
	}
}

// DragEnd finishes a pan
func (e *Engine) DragEnd() { e.camera.DragEnd() }

// Zoom changes the zoom level by steps about the screen point focal
// (nil = viewport centre)
func (e *Engine) Zoom(steps int, focal *graph.Point) {
	if e.camera.Zoom(steps, focal) {
		e.markDirty()
	}
}

// ZoomTo jumps to an absolute zoom level about the viewport centre
func (e *Engine) ZoomTo(level int) {
	if e.camera.SetZoomLevel(level) {
		e.markDirty()
	}
}

// ResetView returns the camera to scale 1 at the default centering
func (e *Engine) ResetView() {
	e.camera.Reset()
	e.markDirty()
}

// Resize follows the client's canvas size
func (e *Engine) Resize(size graph.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	e.camera.Resize(size)
	e.markDirty()
}

// MinimapClick recenters on the world point under inset point p.
// Returns false when no content is loaded.
func (e *Engine) MinimapClick(p graph.Point) bool {
	e.mu.Lock()
	mm := e.minimap
	e.mu.Unlock()
	if !mm.Click(e.camera, p) {
		return false
	}
	e.markDirty()
	return true
}

// JumpToFirst recenters on the first node of the current search
func (e *Engine) JumpToFirst() bool {
	e.mu.Lock()
	g := e.graph
	e.mu.Unlock()
	if len(g.Nodes) == 0 {
		return false
	}
	e.camera.Recenter(g.Nodes[0].Center(e.cfg.NodeSize))
	e.markDirty()
	return true
}

// Tick advances a recenter animation. Returns true if the view moved.
func (e *Engine) Tick(now time.Time) bool {
	moved := e.camera.Tick(now)
	if moved {
		e.markDirty()
	}
	return moved
}

// Animating reports whether the camera is mid-animation
func (e *Engine) Animating() bool { return e.camera.Animating() }

// CenterContent recenters on the middle of the current content bounds
func (e *Engine) CenterContent() bool {
	b := e.Bounds()
	if b.Empty() {
		return false
	}
	e.camera.Recenter(b.Center())
	e.markDirty()
	return true
}
