// Package probe runs live health checks against registry targets.
package probe

import (
	"context"
	"time"

	"github.com/hamed0406/uptimereport/internal/uptime"
)

// CheckResult is the unified result of a single probe.
//
// StatusCode is 0 for transport and DNS errors. Name labels the checker that
// produced the result ("HTTP", "DNS").
type CheckResult struct {
	Name       string    `json:"name"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMS  float64   `json:"latency_ms,omitempty"`
	Message    string    `json:"message"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Record turns the result into a check log entry. Log timestamps carry
// whole seconds only.
func (r CheckResult) Record() uptime.CheckRecord {
	at := r.CheckedAt
	if at.IsZero() {
		at = time.Now()
	}
	rec := uptime.CheckRecord{Timestamp: at.UTC().Truncate(time.Second), Outcome: uptime.Failure}
	if r.Success {
		rec.Outcome = uptime.Success
	}
	return rec
}

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
