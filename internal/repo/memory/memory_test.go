package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

func at(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }

func TestMemoryStore_FetchIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	// out of order on purpose
	for _, r := range []uptime.CheckRecord{
		{Timestamp: at(10), Outcome: uptime.Success},
		{Timestamp: at(12), Outcome: uptime.Failure},
		{Timestamp: at(11), Outcome: uptime.Success},
	} {
		if err := s.Append(ctx, "web", r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	raw, err := s.Fetch(ctx, "web")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := "2024-01-01 12:00:00,failure\n2024-01-01 11:00:00,success\n2024-01-01 10:00:00,success\n"
	if raw != want {
		t.Fatalf("got:\n%s\nwant:\n%s", raw, want)
	}
}

func TestMemoryStore_MaxRecordsDropsOldest(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.MaxRecords = 2
	for h := 1; h <= 4; h++ {
		_ = s.Append(ctx, "web", uptime.CheckRecord{Timestamp: at(h), Outcome: uptime.Success})
	}
	raw, _ := s.Fetch(ctx, "web")
	if raw != "2024-01-01 04:00:00,success\n2024-01-01 03:00:00,success\n" {
		t.Fatalf("unexpected log: %q", raw)
	}
}

func TestMemoryStore_FetchUnknownTarget(t *testing.T) {
	if _, err := New().Fetch(context.Background(), "nope"); !errors.Is(err, repo.ErrNoLog) {
		t.Fatalf("want ErrNoLog, got %v", err)
	}
}

func TestMemoryStore_Reports(t *testing.T) {
	ctx := context.Background()
	s := New()

	if r, err := s.Get(ctx, "web"); err != nil || r != nil {
		t.Fatalf("want nil,nil got %v %v", r, err)
	}
	_ = s.Put(ctx, &domain.Report{Target: domain.Target{Key: "web"}})
	_ = s.Put(ctx, &domain.Report{Target: domain.Target{Key: "api"}})

	got, err := s.Get(ctx, "web")
	if err != nil || got == nil || got.GeneratedAt.IsZero() {
		t.Fatalf("Get: %+v %v", got, err)
	}
	all, _ := s.List(ctx)
	if len(all) != 2 || all[0].Target.Key != "api" {
		t.Fatalf("List must be sorted by key: %+v", all)
	}
}

func TestMemoryStore_Alerts(t *testing.T) {
	ctx := context.Background()
	a := New().Alerts()

	if rec, err := a.Get(ctx, "web"); err != nil || rec != nil {
		t.Fatalf("want nil, got %+v %v", rec, err)
	}
	sent := time.Now()
	_ = a.Set(ctx, "web", "failure", sent)
	_ = a.Set(ctx, "web", "success", time.Time{})

	rec, _ := a.Get(ctx, "web")
	if rec == nil || rec.LastStatus != "success" || rec.LastSentAt == nil || !rec.LastSentAt.Equal(sent) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = s.Append(ctx, "web", uptime.CheckRecord{Timestamp: day.AddDate(0, 0, -i), Outcome: uptime.Success})
	}
	_ = s.Append(ctx, "stale", uptime.CheckRecord{Timestamp: day.AddDate(0, 0, -30), Outcome: uptime.Failure})

	n, err := s.Prune(ctx, day.AddDate(0, 0, -2))
	if err != nil || n != 3 {
		t.Fatalf("Prune: n=%d err=%v", n, err)
	}
	raw, _ := s.Fetch(ctx, "web")
	if strings.Count(raw, "\n") != 3 {
		t.Fatalf("want 3 checks left, got %q", raw)
	}
	if _, err := s.Fetch(ctx, "stale"); !errors.Is(err, repo.ErrNoLog) {
		t.Fatalf("fully pruned target should have no log, got %v", err)
	}
}
