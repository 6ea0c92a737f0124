package domain

import (
	"time"

	"github.com/hamed0406/uptimereport/internal/uptime"
)

// TargetKey is the short name a target is registered under. It also names
// the target's check log.
type TargetKey string

type Target struct {
	Key TargetKey `json:"key"`
	URL string    `json:"url"`
}

// Report is the latest summary built for a target.
type Report struct {
	Target      Target         `json:"target"`
	Summary     uptime.Summary `json:"summary"`
	NoLog       bool           `json:"no_log,omitempty"` // source had no log for the target
	GeneratedAt time.Time      `json:"generated_at"`
}
