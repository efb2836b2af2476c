package reveal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/recipeviz/graph"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/metrics"
)

// Options configures a Scheduler
type Options struct {
	// Delay between consecutive reveals. Zero reveals as fast as assets resolve.
	Delay    time.Duration
	Resolver Resolver // nil = StaticResolver
	Logger   *zap.SugaredLogger

	// OnAssetFailure is called (on the scheduler goroutine) for each node
	// revealed with LoadError set.
	OnAssetFailure func(node graph.Node, err error)
}

// Result summarises one scheduler run
type Result struct {
	Revealed int
	Failed   int  // Revealed with LoadError
	Stale    bool // Stopped because the generation moved on
}

// Scheduler reveals nodes into a Store one at a time
type Scheduler struct {
	store *Store
	opts  Options
	log   *zap.SugaredLogger
}

// NewScheduler creates a scheduler committing to store
func NewScheduler(store *Store, opts Options) *Scheduler {
	if opts.Resolver == nil {
		opts.Resolver = StaticResolver{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("reveal.scheduler")
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &Scheduler{store: store, opts: opts, log: log}
}

// Run reveals nodes in order for generation gen and blocks until every node
// is revealed, the generation goes stale, or ctx is cancelled.
//
// The generation is checked before each asset resolution, before each
// commit, and before each delay. A stale generation ends the run silently:
// nothing further is committed and no error is returned.
func (s *Scheduler) Run(ctx context.Context, gen uint64, nodes []graph.Node) (Result, error) {
	var res Result
	pending := make([]graph.Node, 0, 1)
	log := logger.LoggerFromContext(ctx, s.log)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for i, n := range nodes {
		if s.store.Generation() != gen {
			return s.stale(log, res, gen, i), nil
		}

		asset, err := s.opts.Resolver.Resolve(ctx, n)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err != nil {
			n.LoadError = true
			n.Asset = nil
			res.Failed++
			metrics.AssetFailures.Inc()
			log.Debugw("asset failed, revealing placeholder",
				logger.FieldNodeID, n.ID,
				logger.FieldGeneration, gen,
				logger.FieldError, err.Error())
			if s.opts.OnAssetFailure != nil {
				s.opts.OnAssetFailure(n, err)
			}
		} else {
			n.Asset = asset
		}
		pending = append(pending, n)

		if !s.store.Commit(gen, pending) {
			return s.stale(log, res, gen, i), nil
		}
		res.Revealed += len(pending)
		metrics.NodesRevealed.Add(float64(len(pending)))
		pending = pending[:0]

		if i == len(nodes)-1 || s.opts.Delay == 0 {
			continue
		}
		if s.store.Generation() != gen {
			return s.stale(log, res, gen, i+1), nil
		}
		if timer == nil {
			timer = time.NewTimer(s.opts.Delay)
		} else {
			timer.Reset(s.opts.Delay)
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-timer.C:
		}
	}

	log.Debugw("reveal finished",
		logger.FieldGeneration, gen,
		logger.FieldRevealed, res.Revealed)
	return res, nil
}

func (s *Scheduler) stale(log *zap.SugaredLogger, res Result, gen uint64, at int) Result {
	res.Stale = true
	metrics.StaleAborts.Inc()
	log.Debugw("generation superseded, stopping reveal",
		logger.FieldGeneration, gen,
		logger.FieldRevealed, res.Revealed,
		"next_index", at)
	return res
}
