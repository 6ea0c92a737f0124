package report

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

// --- fakes ---

type mapSource struct {
	mu       sync.Mutex
	logs     map[domain.TargetKey]string
	errs     map[domain.TargetKey]error
	inflight int32
	peak     int32
}

func (m *mapSource) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	n := atomic.AddInt32(&m.inflight, 1)
	defer atomic.AddInt32(&m.inflight, -1)
	m.mu.Lock()
	if n > m.peak {
		m.peak = n
	}
	raw, ok := m.logs[key]
	err := m.errs[key]
	m.mu.Unlock()

	time.Sleep(2 * time.Millisecond)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", repo.ErrNoLog
	}
	return raw, nil
}

var now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) *uptime.Engine {
	t.Helper()
	eng, err := uptime.New(30, uptime.WithLocation(time.UTC), uptime.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

// --- tests ---

func TestBuild_Summarizes(t *testing.T) {
	src := &mapSource{logs: map[domain.TargetKey]string{
		"web": "2024-01-15 10:00:00,success\n2024-01-15 09:00:00,failure\n",
	}}
	svc := NewService(zap.NewNop(), src, newEngine(t), 1)

	rep, err := svc.Build(context.Background(), domain.Target{Key: "web", URL: "https://web"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rep.NoLog {
		t.Fatalf("NoLog should be false")
	}
	if rep.Summary.UpTime != "50.00%" || rep.Summary.IncidentCount != 1 {
		t.Fatalf("unexpected summary %+v", rep.Summary)
	}
	if !rep.GeneratedAt.Equal(now) {
		t.Fatalf("GeneratedAt should come from engine clock, got %v", rep.GeneratedAt)
	}
}

func TestBuild_MissingLogIsEmptyReport(t *testing.T) {
	svc := NewService(zap.NewNop(), &mapSource{}, newEngine(t), 1)

	rep, err := svc.Build(context.Background(), domain.Target{Key: "gone"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !rep.NoLog || rep.Summary.UpTime != "--%" || len(rep.Summary.DailyAverages) != 0 {
		t.Fatalf("want empty NoLog report, got %+v", rep)
	}
}

func TestBuild_ParseErrorSurfaces(t *testing.T) {
	src := &mapSource{logs: map[domain.TargetKey]string{"bad": "not a record\n"}}
	svc := NewService(zap.NewNop(), src, newEngine(t), 1)

	_, err := svc.Build(context.Background(), domain.Target{Key: "bad"})
	var pe *uptime.ParseError
	if !errors.As(err, &pe) || pe.Line != 1 {
		t.Fatalf("want ParseError at line 1, got %v", err)
	}
}

func TestBuildKey_Unknown(t *testing.T) {
	svc := NewService(zap.NewNop(), &mapSource{}, newEngine(t), 1)
	_, err := svc.BuildKey(context.Background(), []domain.Target{{Key: "a"}}, "b")
	if !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("want ErrUnknownTarget, got %v", err)
	}
}

func TestBuildAll_CollectsErrorsAndBoundsConcurrency(t *testing.T) {
	src := &mapSource{
		logs: map[domain.TargetKey]string{
			"a": "2024-01-15 10:00:00,success\n",
			"c": "2024-01-14 10:00:00,failure\n",
			"d": "2024-01-15 10:00:00,success\n",
			"e": "2024-01-15 10:00:00,success\n",
		},
		errs: map[domain.TargetKey]error{
			"b": errors.New("connection refused"),
		},
	}
	svc := NewService(zap.NewNop(), src, newEngine(t), 2)

	targets := []domain.Target{{Key: "e"}, {Key: "d"}, {Key: "c"}, {Key: "b"}, {Key: "a"}}
	reps, err := svc.BuildAll(context.Background(), targets)
	if err == nil || len(multierr.Errors(err)) != 1 {
		t.Fatalf("want exactly one error, got %v", err)
	}
	if len(reps) != 4 {
		t.Fatalf("want 4 reports, got %d", len(reps))
	}
	for i, want := range []domain.TargetKey{"a", "c", "d", "e"} {
		if reps[i].Target.Key != want {
			t.Fatalf("reports not in key order: %v", reps)
		}
	}
	if src.peak > 2 {
		t.Fatalf("concurrency limit exceeded: %d", src.peak)
	}
}
