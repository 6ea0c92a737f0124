package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/notify"
	"github.com/hamed0406/uptimereport/internal/render"
	"github.com/hamed0406/uptimereport/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
	Location        *time.Location
}

// Alerter watches today's status of every cached report and notifies when
// a target degrades or recovers.
type Alerter struct {
	log      *zap.Logger
	reports  repo.ReportStore
	alertDB  repo.AlertStore
	notifier notify.Notifier
	cfg      AlerterConfig
	now      func() time.Time
}

func NewAlerter(
	log *zap.Logger,
	reports repo.ReportStore,
	alertDB repo.AlertStore,
	notifier notify.Notifier,
	cfg AlerterConfig,
) *Alerter {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Alerter{
		log:      log,
		reports:  reports,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	if a.cfg.PollInterval <= 0 {
		a.log.Info("alerter_disabled")
		return nil
	}
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.ScanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.ScanOnce(ctx)
		}
	}
}

func degraded(s render.Status) bool { return s == render.Failure || s == render.Partial }

// ScanOnce checks every cached report once.
func (a *Alerter) ScanOnce(ctx context.Context) error {
	reps, err := a.reports.List(ctx)
	if err != nil {
		a.log.Warn("alerter_list_error", zap.Error(err))
		return err
	}

	now := a.now()
	for _, r := range reps {
		card := render.NewCard(*r, a.cfg.Location)
		status := card.Status
		if status == render.NoData {
			// nothing checked today yet; keep the last known state
			continue
		}

		rec, err := a.alertDB.Get(ctx, r.Target.Key)
		if err != nil {
			a.log.Warn("alerter_get_error", zap.String("target", string(r.Target.Key)), zap.Error(err))
			continue
		}

		prev := render.NoData
		if rec != nil {
			prev = render.Status(rec.LastStatus)
		}
		stateChanged := rec == nil || prev != status

		// Cooldown only matters for DOWN alerts (suppresses noisy repeats).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		downAlert := stateChanged && degraded(status) && cooled
		recoveryAlert := stateChanged && status == render.Success && degraded(prev) && a.cfg.AlertOnRecovery

		if downAlert || recoveryAlert {
			title, text := alertMessage(r, card)
			if err := a.notifier.Send(ctx, title, text); err != nil {
				a.log.Warn("alert_send_error", zap.String("target", string(r.Target.Key)), zap.Error(err))
			} else {
				a.log.Info("alert_sent",
					zap.String("target", string(r.Target.Key)),
					zap.String("from", string(prev)),
					zap.String("to", string(status)),
				)
			}
			_ = a.alertDB.Set(ctx, r.Target.Key, string(status), now)
			continue
		}

		// State changed without a send (cooldown, recovery alerts off, first
		// sighting of a healthy target): record it without a send time.
		if stateChanged {
			_ = a.alertDB.Set(ctx, r.Target.Key, string(status), time.Time{})
		}
	}

	return nil
}

func alertMessage(r *domain.Report, card render.Card) (string, string) {
	title := fmt.Sprintf("🔴 %s: %s", r.Target.Key, card.StatusText)
	if card.Status == render.Success {
		title = fmt.Sprintf("🟢 %s RECOVERED", r.Target.Key)
	}

	today := ""
	if n := len(card.Cells); n > 0 {
		today = card.Cells[n-1].Description
	}
	text := fmt.Sprintf(
		"URL: %s\nToday: %s\nUptime (%d days): %s\nIncidents: %d\nEstimated downtime: %s\nGenerated: %s",
		r.Target.URL, today, r.Summary.WindowDays, card.UpTime, card.IncidentCount, card.OutageTime,
		r.GeneratedAt.Format(time.RFC3339),
	)
	return title, text
}
