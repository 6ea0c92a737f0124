package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
)

func (s *Store) Get(ctx context.Context, key domain.TargetKey) (*repo.AlertRecord, error) {
	const q = `SELECT last_status, last_sent_at FROM alert_state WHERE target_key=$1`
	r := repo.AlertRecord{TargetKey: key}
	err := s.pool.QueryRow(ctx, q, string(key)).Scan(&r.LastStatus, &r.LastSentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Set keeps the previous last_sent_at when sentAt is zero.
func (s *Store) Set(ctx context.Context, key domain.TargetKey, status string, sentAt time.Time) error {
	const q = `
		INSERT INTO alert_state (target_key, last_status, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (target_key)
		DO UPDATE SET last_status=EXCLUDED.last_status,
		              last_sent_at=COALESCE(EXCLUDED.last_sent_at, alert_state.last_sent_at)
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	_, err := s.pool.Exec(ctx, q, string(key), status, ts)
	return err
}
