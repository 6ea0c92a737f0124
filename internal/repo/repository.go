package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

// ErrNoLog means the source holds no log for the target. Reports treat it as
// an empty log.
var ErrNoLog = errors.New("no check log for target")

// LogSource yields the raw check log of a target, most recent record first.
type LogSource interface {
	Fetch(ctx context.Context, key domain.TargetKey) (string, error)
}

// CheckStore records probe outcomes.
type CheckStore interface {
	Append(ctx context.Context, key domain.TargetKey, rec uptime.CheckRecord) error
}

// Pruner drops checks recorded before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type ReportStore interface {
	Put(ctx context.Context, r *domain.Report) error
	// Get returns nil, nil if no report was built yet.
	Get(ctx context.Context, key domain.TargetKey) (*domain.Report, error)
	List(ctx context.Context) ([]*domain.Report, error)
}

// JoinLines renders records in log format, one per line, in the given order.
func JoinLines(recs []uptime.CheckRecord) string {
	var b strings.Builder
	for _, r := range recs {
		b.WriteString(r.Line())
		b.WriteByte('\n')
	}
	return b.String()
}
