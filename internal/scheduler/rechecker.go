package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/probe"
	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/repo"
)

// Rechecker probes every target on a fixed interval and appends the outcome
// to the check log.
type Rechecker struct {
	Logger      *zap.Logger
	Targets     registry.Lister
	Checks      repo.CheckStore
	Checker     probe.Checker
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int

	// Pruner, when set, drops checks older than Retention after each pass.
	Pruner    repo.Pruner
	Retention time.Duration

	now func() time.Time
}

func NewRechecker(
	logger *zap.Logger,
	targets registry.Lister,
	checks repo.CheckStore,
	checker probe.Checker,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Rechecker {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Rechecker{
		Logger:      logger,
		Targets:     targets,
		Checks:      checks,
		Checker:     checker,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
		now:         time.Now,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.pass(ctx)
		}
	}
}

func (r *Rechecker) pass(ctx context.Context) {
	r.runOnce(ctx)
	r.prune(ctx)
}

// prune drops checks that fell out of the retention window.
func (r *Rechecker) prune(ctx context.Context) int64 {
	if r.Pruner == nil || r.Retention <= 0 {
		return 0
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	cutoff := now().Add(-r.Retention)
	n, err := r.Pruner.Prune(ctx, cutoff)
	if err != nil {
		r.Logger.Warn("rechecker_prune_error", zap.Error(err))
		return 0
	}
	if n > 0 {
		r.Logger.Info("rechecker_pruned", zap.Int64("rows", n), zap.Time("before", cutoff))
	}
	return n
}

// runOnce probes all targets once and reports how many were up.
func (r *Rechecker) runOnce(ctx context.Context) (up, down int) {
	ts, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("rechecker_list_error", zap.Error(err))
		return 0, 0
	}
	if len(ts) == 0 {
		return 0, 0
	}

	var mu sync.Mutex
	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup
	for _, tgt := range ts {
		sem <- struct{}{}
		wg.Add(1)
		go func(t domain.Target) {
			defer func() { <-sem }()
			defer wg.Done()
			ok := r.checkOne(ctx, t)
			mu.Lock()
			if ok {
				up++
			} else {
				down++
			}
			mu.Unlock()
		}(tgt)
	}
	wg.Wait()

	r.Logger.Info("recheck_done", zap.Int("up", up), zap.Int("down", down))
	return up, down
}

func (r *Rechecker) checkOne(ctx context.Context, t domain.Target) bool {
	cctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	out := r.Checker.Check(cctx, t.URL)
	rec := out.Record()
	log := r.Logger.With(zap.String("target", string(t.Key)), zap.String("url", t.URL))
	if err := r.Checks.Append(ctx, t.Key, rec); err != nil {
		log.Warn("rechecker_append_error", zap.Error(err))
		return out.Success
	}
	log.Debug("rechecker_checked",
		zap.String("line", rec.Line()),
		zap.Int("status", out.StatusCode),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Message),
	)
	return out.Success
}
