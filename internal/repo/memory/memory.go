package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

// DefaultMaxRecords bounds the checks kept per target.
const DefaultMaxRecords = 50_000

type Store struct {
	MaxRecords int

	mu      sync.RWMutex
	checks  map[domain.TargetKey][]uptime.CheckRecord // newest first
	reports map[domain.TargetKey]*domain.Report
	alerts  map[domain.TargetKey]repo.AlertRecord
}

func New() *Store {
	return &Store{
		MaxRecords: DefaultMaxRecords,
		checks:     make(map[domain.TargetKey][]uptime.CheckRecord),
		reports:    make(map[domain.TargetKey]*domain.Report),
		alerts:     make(map[domain.TargetKey]repo.AlertRecord),
	}
}

// ---- CheckStore / LogSource ----

func (m *Store) Append(ctx context.Context, key domain.TargetKey, rec uptime.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.checks[key]
	// first position not newer than rec keeps the slice newest-first
	i := sort.Search(len(recs), func(i int) bool { return !recs[i].Timestamp.After(rec.Timestamp) })
	recs = append(recs, uptime.CheckRecord{})
	copy(recs[i+1:], recs[i:])
	recs[i] = rec

	if m.MaxRecords > 0 && len(recs) > m.MaxRecords {
		recs = recs[:m.MaxRecords]
	}
	m.checks[key] = recs
	return nil
}

func (m *Store) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, ok := m.checks[key]
	if !ok {
		return "", repo.ErrNoLog
	}
	return repo.JoinLines(recs), nil
}

func (m *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, recs := range m.checks {
		i := sort.Search(len(recs), func(i int) bool { return recs[i].Timestamp.Before(before) })
		n += int64(len(recs) - i)
		if i == 0 {
			delete(m.checks, key)
			continue
		}
		m.checks[key] = recs[:i]
	}
	return n, nil
}

// ---- ReportStore ----

func (m *Store) Put(ctx context.Context, r *domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	m.reports[r.Target.Key] = r
	return nil
}

func (m *Store) Get(ctx context.Context, key domain.TargetKey) (*domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reports[key], nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target.Key < out[j].Target.Key })
	return out, nil
}

// ---- AlertStore (exposed through Alerts to avoid clashing with Get) ----

type alertStore struct{ s *Store }

// Alerts returns the alert state view of the store.
func (m *Store) Alerts() repo.AlertStore { return alertStore{m} }

func (a alertStore) Get(ctx context.Context, key domain.TargetKey) (*repo.AlertRecord, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	r, ok := a.s.alerts[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (a alertStore) Set(ctx context.Context, key domain.TargetKey, status string, sentAt time.Time) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	rec := repo.AlertRecord{TargetKey: key, LastStatus: status}
	if !sentAt.IsZero() {
		ts := sentAt
		rec.LastSentAt = &ts
	} else if prev, ok := a.s.alerts[key]; ok {
		rec.LastSentAt = prev.LastSentAt
	}
	a.s.alerts[key] = rec
	return nil
}
