package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/backend"
	"github.com/hamed0406/uptimereport/internal/config"
	"github.com/hamed0406/uptimereport/internal/httpapi"
	apimw "github.com/hamed0406/uptimereport/internal/httpapi/middleware"
	"github.com/hamed0406/uptimereport/internal/logging"
	"github.com/hamed0406/uptimereport/internal/notify"
	"github.com/hamed0406/uptimereport/internal/probe"
	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/report"
	"github.com/hamed0406/uptimereport/internal/scheduler"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("backend_open_error", zap.Error(err))
	}
	defer be.Close()

	eng, err := uptime.New(cfg.WindowDays, uptime.WithLocation(cfg.Location))
	if err != nil {
		logger.Fatal("engine_error", zap.Error(err))
	}
	targets := registry.File{Path: cfg.TargetsFile}
	if _, err := targets.List(ctx); err != nil {
		logger.Fatal("targets_load_error", zap.String("path", cfg.TargetsFile), zap.Error(err))
	}

	svc := report.NewService(logger, be.Source, eng, cfg.MaxConcurrent)

	notifier := notify.Enabled(
		notify.NewSlack(cfg.SlackWebhook),
		notify.NewEmail(cfg.BrevoAPIKey, cfg.AlertEmailFrom, cfg.AlertEmailTo),
	)
	var alerter *scheduler.Alerter
	if len(notifier) > 0 {
		alerter = scheduler.NewAlerter(logger, be.Reports, be.Alerts, notifier, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
			Location:        cfg.Location,
		})
	}

	refresher := &scheduler.Refresher{
		Logger:   logger,
		Targets:  targets,
		Service:  svc,
		Reports:  be.Reports,
		Interval: cfg.RefreshInterval,
	}
	if alerter != nil {
		refresher.OnRefresh = func(ctx context.Context) { _ = alerter.ScanOnce(ctx) }
	}
	go refresher.Run(ctx)

	checker := &probe.RetryChecker{
		Inner: probe.NewMultiChecker(
			probe.NewDNSChecker(),
			probe.NewHTTPChecker(cfg.HTTPTimeout),
		),
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}
	if be.Checks != nil {
		rc := scheduler.NewRechecker(logger, targets, be.Checks, checker,
			cfg.CheckInterval, cfg.HTTPTimeout, cfg.MaxConcurrent)
		rc.Pruner = be.Pruner
		rc.Retention = time.Duration(cfg.WindowDays+1) * 24 * time.Hour
		go rc.Run(ctx)
	} else if cfg.CheckInterval > 0 {
		logger.Warn("rechecker_needs_writable_source", zap.String("source", cfg.LogSource))
	}

	api := httpapi.NewServer(logger, targets, be.Reports, svc, cfg.Location)
	api.Refresh = refresher.RefreshOnce
	if be.Checks != nil {
		api.Checker, api.Checks = checker, be.Checks
	}
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("source", cfg.LogSource),
		zap.Int("window_days", cfg.WindowDays),
		zap.String("tz", cfg.Location.String()),
		zap.Strings("notifiers", notifierNames(notifier)),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}

func notifierNames(m notify.Multi) []string {
	var out []string
	for _, n := range m {
		switch n.(type) {
		case *notify.Slack:
			out = append(out, "slack")
		case *notify.Email:
			out = append(out, "email")
		default:
			out = append(out, "other")
		}
	}
	return out
}
