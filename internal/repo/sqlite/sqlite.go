// Package sqlite keeps probe outcomes in a local SQLite file and serves them
// back as check logs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

// DefaultFetchLimit bounds the rows rendered by Fetch.
const DefaultFetchLimit = 50_000

type Store struct {
	db         *sql.DB
	FetchLimit int
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA busy_timeout=5000")

	s := &Store{db: db, FetchLimit: DefaultFetchLimit}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS checks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        target_key TEXT NOT NULL,
        checked_at INTEGER NOT NULL, -- unix seconds, UTC
        up BOOLEAN NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_checks_target_time ON checks(target_key, checked_at);
    `
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, key domain.TargetKey, rec uptime.CheckRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checks (target_key, checked_at, up) VALUES (?, ?, ?)`,
		string(key), rec.Timestamp.Unix(), rec.Outcome == uptime.Success,
	)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (s *Store) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	limit := s.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT checked_at, up
        FROM checks
        WHERE target_key = ?
        ORDER BY checked_at DESC, id DESC
        LIMIT ?
    `, string(key), limit)
	if err != nil {
		return "", fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var recs []uptime.CheckRecord
	for rows.Next() {
		var (
			ts int64
			up bool
		)
		if err := rows.Scan(&ts, &up); err != nil {
			return "", fmt.Errorf("scan check: %w", err)
		}
		rec := uptime.CheckRecord{Timestamp: time.Unix(ts, 0).UTC(), Outcome: uptime.Failure}
		if up {
			rec.Outcome = uptime.Success
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", repo.ErrNoLog
	}
	return repo.JoinLines(recs), nil
}

// Prune deletes checks older than the cutoff and reports how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checks WHERE checked_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune checks: %w", err)
	}
	return res.RowsAffected()
}
