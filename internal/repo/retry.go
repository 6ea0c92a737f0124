package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamed0406/uptimereport/internal/domain"
)

// RetrySource retries failed fetches. ErrNoLog is an answer, not a failure,
// and is returned at once.
type RetrySource struct {
	Inner    LogSource
	Attempts int
	Backoff  time.Duration
}

func (r *RetrySource) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		var raw string
		raw, err = r.Inner.Fetch(ctx, key)
		if err == nil || errors.Is(err, ErrNoLog) {
			return raw, err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.Backoff):
			}
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", attempts, err)
}
