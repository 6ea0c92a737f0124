package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

var (
	_ repo.LogSource  = (*Store)(nil)
	_ repo.CheckStore = (*Store)(nil)
	_ repo.AlertStore = (*Store)(nil)
)

// DefaultFetchLimit bounds the rows rendered by Fetch.
const DefaultFetchLimit = 50_000

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS checks (
  id         BIGSERIAL PRIMARY KEY,
  target_key TEXT NOT NULL,
  checked_at TIMESTAMPTZ NOT NULL,
  up         BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checks_target_time ON checks (target_key, checked_at DESC);

CREATE TABLE IF NOT EXISTS alert_state (
  target_key   TEXT PRIMARY KEY,
  last_status  TEXT NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

type Store struct {
	pool       *pgxpool.Pool
	log        *zap.Logger
	FetchLimit int
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log, FetchLimit: DefaultFetchLimit}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ---- CheckStore ----

func (s *Store) Append(ctx context.Context, key domain.TargetKey, rec uptime.CheckRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checks (target_key, checked_at, up)
		 VALUES ($1, $2, $3)`,
		string(key), rec.Timestamp.UTC(), rec.Outcome == uptime.Success,
	)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

// Prune deletes checks older than the cutoff.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM checks WHERE checked_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune checks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---- LogSource ----

func (s *Store) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	limit := s.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	rows, err := s.pool.Query(ctx, `
SELECT checked_at, up
  FROM checks
 WHERE target_key = $1
 ORDER BY checked_at DESC, id DESC
 LIMIT $2`, string(key), limit)
	if err != nil {
		return "", fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var recs []uptime.CheckRecord
	for rows.Next() {
		var (
			checkedAt time.Time
			up        bool
		)
		if err := rows.Scan(&checkedAt, &up); err != nil {
			return "", fmt.Errorf("scan check: %w", err)
		}
		rec := uptime.CheckRecord{Timestamp: checkedAt.UTC(), Outcome: uptime.Failure}
		if up {
			rec.Outcome = uptime.Success
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(recs) == 0 {
		s.log.Debug("pg_no_checks", zap.String("target", string(key)))
		return "", repo.ErrNoLog
	}
	return repo.JoinLines(recs), nil
}
