// Package report joins log sources and the uptime engine into per-target
// reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

// ErrUnknownTarget is returned when a key is not in the registry.
var ErrUnknownTarget = errors.New("unknown target")

type Service struct {
	Logger      *zap.Logger
	Source      repo.LogSource
	Engine      *uptime.Engine
	Concurrency int
}

func NewService(logger *zap.Logger, src repo.LogSource, eng *uptime.Engine, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{Logger: logger, Source: src, Engine: eng, Concurrency: concurrency}
}

// Build fetches the target's log and summarizes it. A missing log yields an
// empty report flagged NoLog.
func (s *Service) Build(ctx context.Context, t domain.Target) (domain.Report, error) {
	rep := domain.Report{Target: t}

	raw, err := s.Source.Fetch(ctx, t.Key)
	switch {
	case errors.Is(err, repo.ErrNoLog):
		s.Logger.Warn("report_no_log", zap.String("target", string(t.Key)))
		rep.NoLog = true
		raw = ""
	case err != nil:
		return rep, fmt.Errorf("fetch %s: %w", t.Key, err)
	}

	p, err := s.Engine.Parse(raw)
	if err != nil {
		return rep, fmt.Errorf("parse %s: %w", t.Key, err)
	}
	rep.GeneratedAt = s.Engine.Now()
	rep.Summary = s.Engine.Summarize(p)

	s.Logger.Debug("report_built",
		zap.String("target", string(t.Key)),
		zap.Int("checks", p.Checks),
		zap.Int("days", len(p.Days)),
		zap.Bool("truncated", p.Truncated),
		zap.String("uptime", rep.Summary.UpTime),
	)
	return rep, nil
}

// BuildKey looks key up in targets and builds its report.
func (s *Service) BuildKey(ctx context.Context, targets []domain.Target, key domain.TargetKey) (domain.Report, error) {
	t, ok := registry.Find(targets, key)
	if !ok {
		return domain.Report{}, fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	return s.Build(ctx, t)
}

// BuildAll builds every target with bounded concurrency. One failing target
// doesn't stop the others; the returned slice holds the successful reports
// in key order and the error combines every failure.
func (s *Service) BuildAll(ctx context.Context, targets []domain.Target) ([]domain.Report, error) {
	sem := make(chan struct{}, s.Concurrency)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		out  = make([]domain.Report, 0, len(targets))
		errs error
	)

	for _, tgt := range targets {
		t := tgt
		select {
		case <-ctx.Done():
			wg.Wait()
			return out, multierr.Append(errs, ctx.Err())
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			rep, err := s.Build(ctx, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.Logger.Warn("report_failed", zap.String("target", string(t.Key)), zap.Error(err))
				errs = multierr.Append(errs, err)
				return
			}
			out = append(out, rep)
		}()
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].Target.Key < out[j].Target.Key })
	return out, errs
}
