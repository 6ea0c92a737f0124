// Package backend opens the stores selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/config"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/repo/file"
	"github.com/hamed0406/uptimereport/internal/repo/httplog"
	"github.com/hamed0406/uptimereport/internal/repo/memory"
	pg "github.com/hamed0406/uptimereport/internal/repo/postgres"
	"github.com/hamed0406/uptimereport/internal/repo/sqlite"
)

// Backend bundles the stores a process needs. Checks is nil for read-only
// sources (file, http).
type Backend struct {
	Source  repo.LogSource
	Checks  repo.CheckStore
	Reports repo.ReportStore
	Alerts  repo.AlertStore

	// Pruner is set for stores that keep their own checks.
	Pruner repo.Pruner

	closers []func()
}

func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Open builds the log source named by cfg.LogSource. Reports are always
// cached in memory; alert state lives in Postgres when that is the source.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Backend, error) {
	mem := memory.New()
	b := &Backend{Reports: mem, Alerts: mem.Alerts()}

	switch cfg.LogSource {
	case config.SourceFile:
		b.Source = file.New(cfg.LogsDir)

	case config.SourceHTTP:
		b.Source = &repo.RetrySource{
			Inner:    httplog.New(cfg.LogsBaseURL, cfg.HTTPTimeout),
			Attempts: cfg.RetryAttempts,
			Backoff:  cfg.RetryBackoff,
		}

	case config.SourceSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = s.Close() })
		b.Source, b.Checks, b.Pruner = s, s, s

	case config.SourcePostgres:
		s, err := pg.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		b.Source, b.Checks, b.Alerts, b.Pruner = s, s, s, s

	case config.SourceMemory:
		b.Source, b.Checks, b.Pruner = mem, mem, mem

	default:
		return nil, fmt.Errorf("unknown log source %q", cfg.LogSource)
	}

	log.Info("backend_opened", zap.String("source", cfg.LogSource), zap.Bool("writable", b.Checks != nil))
	return b, nil
}
