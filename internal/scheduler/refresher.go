package scheduler

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/report"
	"github.com/hamed0406/uptimereport/internal/repo"
)

// Refresher rebuilds every target's report on a fixed interval and caches
// the results.
type Refresher struct {
	Logger   *zap.Logger
	Targets  registry.Lister
	Service  *report.Service
	Reports  repo.ReportStore
	Interval time.Duration

	// OnRefresh, if set, runs after each pass.
	OnRefresh func(ctx context.Context)
}

func (r *Refresher) Run(ctx context.Context) {
	if r.Interval <= 0 {
		r.Logger.Info("refresher_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	_ = r.RefreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("refresher_stopped")
			return
		case <-t.C:
			_ = r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce builds and stores all reports. Targets that fail keep their
// previous cached report.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	start := time.Now()
	ts, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("refresh_list_error", zap.Error(err))
		return err
	}

	reps, buildErr := r.Service.BuildAll(ctx, ts)
	var putErr error
	for i := range reps {
		rep := reps[i]
		putErr = multierr.Append(putErr, r.Reports.Put(ctx, &rep))
	}

	err = multierr.Combine(buildErr, putErr)
	if err != nil {
		r.Logger.Warn("refresh_failed",
			zap.Int("targets", len(ts)),
			zap.Int("built", len(reps)),
			zap.Error(err),
		)
	} else {
		r.Logger.Info("refresh_done",
			zap.Int("targets", len(ts)),
			zap.Duration("took", time.Since(start)),
		)
	}

	if r.OnRefresh != nil {
		r.OnRefresh(ctx)
	}
	return err
}
