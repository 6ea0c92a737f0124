// Command report prints uptime reports for the registry targets once and
// exits. It reads the same environment as the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/backend"
	"github.com/hamed0406/uptimereport/internal/config"
	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/logging"
	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/render"
	"github.com/hamed0406/uptimereport/internal/report"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

func main() {
	var (
		format  = flag.String("format", "terminal", "Output format: terminal, text, json")
		only    = flag.String("target", "", "Only report this target key")
		chartTo = flag.String("charts", "", "Also write <key>.png availability charts into this directory")
		timeout = flag.Duration("timeout", time.Minute, "Overall timeout")
	)
	flag.Parse()

	opts := options{format: *format, only: *only, chartDir: *chartTo, timeout: *timeout}
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}
}

type options struct {
	format   string
	only     string
	chartDir string
	timeout  time.Duration
}

// run writes the report to stdout; progress and warnings go to stderr so
// that json output stays parseable.
func run(opts options, stdout, stderr io.Writer) error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	be, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	eng, err := uptime.New(cfg.WindowDays, uptime.WithLocation(cfg.Location))
	if err != nil {
		return err
	}
	targets, err := registry.Load(cfg.TargetsFile)
	if err != nil {
		return err
	}
	svc := report.NewService(logger, be.Source, eng, cfg.MaxConcurrent)

	var (
		reps     []domain.Report
		buildErr error
	)
	if opts.only != "" {
		rep, err := svc.BuildKey(ctx, targets, domain.TargetKey(opts.only))
		if err != nil {
			return err
		}
		reps = []domain.Report{rep}
	} else {
		// on partial failure still print what we have
		reps, buildErr = svc.BuildAll(ctx, targets)
		if buildErr != nil {
			logger.Warn("report_partial", zap.Error(buildErr))
		}
	}

	cards := make([]render.Card, 0, len(reps))
	for _, r := range reps {
		cards = append(cards, render.NewCard(r, cfg.Location))
	}

	switch opts.format {
	case "terminal":
		err = render.WriteTerminal(stdout, cards)
	case "text":
		err = render.WriteText(stdout, cards)
	case "json":
		err = writeJSON(stdout, reps)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if err != nil {
		return err
	}

	if opts.chartDir != "" {
		if err := writeCharts(opts.chartDir, cards, stderr); err != nil {
			return err
		}
	}
	if buildErr != nil {
		return fmt.Errorf("some reports failed: %w", buildErr)
	}
	return nil
}

func writeCharts(dir string, cards []render.Card, progress io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, c := range cards {
		path := filepath.Join(dir, string(c.Key)+".png")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = render.Chart(f, c)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("chart %s: %w", c.Key, err)
		}
		fmt.Fprintln(progress, "✔ wrote", path)
	}
	return nil
}
