package repo

import (
	"context"
	"time"

	"github.com/hamed0406/uptimereport/internal/domain"
)

// AlertRecord holds the last status we saw for a target and the last time we
// sent a notification for it (used for cooldown).
type AlertRecord struct {
	TargetKey  domain.TargetKey
	LastStatus string
	LastSentAt *time.Time
}

type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, key domain.TargetKey) (*AlertRecord, error)
	// Set upserts the record. A zero sentAt keeps no send time.
	Set(ctx context.Context, key domain.TargetKey, status string, sentAt time.Time) error
}
