package uptime

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestParseRecord_Outcome(t *testing.T) {
	cases := []struct {
		line string
		want Outcome
	}{
		{"2024-01-01 10:00:00,success", Success},
		{"2024-01-01 10:00:00,  success  ", Success},
		{"2024-01-01 10:00:00,success,extra", Success},
		{"2024-01-01 10:00:00,Success", Failure},
		{"2024-01-01 10:00:00,failed", Failure},
		{"2024-01-01 10:00:00,", Failure},
		{"2024-01-01 10:00:00,successful", Failure},
	}
	for _, c := range cases {
		rec, err := ParseRecord(c.line)
		if err != nil {
			t.Fatalf("ParseRecord(%q): %v", c.line, err)
		}
		if rec.Outcome != c.want {
			t.Fatalf("ParseRecord(%q) outcome=%v want %v", c.line, rec.Outcome, c.want)
		}
	}
}

func TestParseRecord_TimestampIsUTC(t *testing.T) {
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-01-01 10:00:00",
		"2024/01/01 10:00:00",
		"2024.01.01 10:00:00",
		"2024-1-1 10:00:00",
		"2024-01-01T10:00:00",
		" 2024-01-01 10:00 ",
	} {
		rec, err := ParseRecord(in + ",success")
		if err != nil {
			t.Fatalf("ParseRecord(%q): %v", in, err)
		}
		if !rec.Timestamp.Equal(want) || rec.Timestamp.Location() != time.UTC {
			t.Fatalf("ParseRecord(%q) ts=%v want %v", in, rec.Timestamp, want)
		}
	}
}

func TestCheckRecord_Line(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	rec := CheckRecord{Timestamp: time.Date(2024, 1, 1, 20, 30, 0, 0, est), Outcome: Failure}
	if got := rec.Line(); got != "2024-01-02 01:30:00,failure" {
		t.Fatalf("Line()=%q", got)
	}
	back, err := ParseRecord(rec.Line())
	if err != nil || !back.Timestamp.Equal(rec.Timestamp) || back.Outcome != Failure {
		t.Fatalf("re-parse mismatch: %+v err=%v", back, err)
	}
}

func TestParse_EmptyLog(t *testing.T) {
	for _, raw := range []string{"", "\n", "\n  \n\r\n"} {
		p, err := parse(raw, DefaultWindowDays, time.UTC)
		if err != nil {
			t.Fatalf("parse(%q): %v", raw, err)
		}
		if p.UpTime != "--%" || p.IncidentCount != 0 || len(p.Days) != 0 || p.Checks != 0 {
			t.Fatalf("parse(%q) = %+v", raw, p)
		}
	}
}

func TestParse_NoFailures(t *testing.T) {
	raw := "2024-01-03 10:00:00,success\n2024-01-02 10:00:00,success\n\n2024-01-01 10:00:00,success\n"
	p, err := parse(raw, DefaultWindowDays, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.UpTime != "100.00%" || p.IncidentCount != 0 || p.TotalDowntimeMinutes != 0 {
		t.Fatalf("unexpected: up=%s incidents=%d downtime=%d", p.UpTime, p.IncidentCount, p.TotalDowntimeMinutes)
	}
	if len(p.Days) != 3 {
		t.Fatalf("want 3 buckets, got %d", len(p.Days))
	}
	if p.Days[0].Day != (Day{2024, time.January, 3}) {
		t.Fatalf("buckets must keep encounter order, first=%v", p.Days[0].Day)
	}
}

func TestParse_FailureWindowAndCounters(t *testing.T) {
	raw := strings.Join([]string{
		"2024-01-02 09:15:00,failure",
		"2024-01-02 08:00:00,success",
		"2024-01-02 07:45:00,timeout",
		"2024-01-02 06:00:00,success",
		"2024-01-01 23:00:00,success",
	}, "\n")
	p, err := parse(raw, DefaultWindowDays, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	b, ok := p.Bucket(Day{2024, time.January, 2})
	if !ok {
		t.Fatalf("missing bucket for 2024-01-02")
	}
	if got := fmt.Sprint(b.Results); got != "[0 1 0 1]" {
		t.Fatalf("results=%s", got)
	}
	// encounter order, not chronological order
	if b.FirstFailureTime.String != "09:15" || b.LastFailureTime.String != "07:45" {
		t.Fatalf("failure window %v - %v", b.FirstFailureTime, b.LastFailureTime)
	}
	if b.DowntimeMinutes() != 720 {
		t.Fatalf("downtime=%d want 720", b.DowntimeMinutes())
	}

	quiet, _ := p.Bucket(Day{2024, time.January, 1})
	if quiet.FirstFailureTime.Valid || quiet.LastFailureTime.Valid {
		t.Fatalf("day without failures must have no failure window")
	}

	if p.UpTime != "60.00%" || p.IncidentCount != 1 || p.TotalDowntimeMinutes != 720 {
		t.Fatalf("up=%s incidents=%d downtime=%d", p.UpTime, p.IncidentCount, p.TotalDowntimeMinutes)
	}
}

func TestParse_DayKeyUsesRenderingZone(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	p, err := parse("2024-01-02 03:00:00,failure", DefaultWindowDays, est)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Days) != 1 || p.Days[0].Day != (Day{2024, time.January, 1}) {
		t.Fatalf("want local day 2024-01-01, got %+v", p.Days)
	}
	if p.Days[0].FirstFailureTime.String != "22:00" {
		t.Fatalf("failure time %q want 22:00", p.Days[0].FirstFailureTime.String)
	}
}

func TestParse_WindowCutoffStopsScanning(t *testing.T) {
	raw := strings.Join([]string{
		"2024-01-03 10:00:00,success",
		"2024-01-02 10:00:00,success",
		"2024-01-01 10:00:00,failure", // third day: scanning stops here
		"2024-01-02 09:00:00,failure",
		"this line is never examined",
	}, "\n")
	p, err := parse(raw, 2, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Days) != 2 || !p.Truncated {
		t.Fatalf("want 2 truncated buckets, got %d truncated=%v", len(p.Days), p.Truncated)
	}
	if _, ok := p.Bucket(Day{2024, time.January, 1}); ok {
		t.Fatalf("third day must not be retained")
	}
	if p.Checks != 2 || p.IncidentCount != 0 || p.UpTime != "100.00%" {
		t.Fatalf("records after the cutoff were counted: checks=%d incidents=%d up=%s",
			p.Checks, p.IncidentCount, p.UpTime)
	}
}

func TestParse_BucketCountNeverExceedsWindow(t *testing.T) {
	var b strings.Builder
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		ts := start.AddDate(0, 0, -i)
		fmt.Fprintf(&b, "%s,failure\n%s,success\n", ts.Format(LogLayout), ts.Add(-time.Hour).Format(LogLayout))
	}
	for _, window := range []int{1, 7, 30, 100, 365} {
		p, err := parse(b.String(), window, time.UTC)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		want := window
		if want > 100 {
			want = 100
		}
		if len(p.Days) != want {
			t.Fatalf("window=%d buckets=%d want %d", window, len(p.Days), want)
		}
		if p.IncidentCount != len(p.Days) {
			t.Fatalf("window=%d incidents=%d buckets=%d", window, p.IncidentCount, len(p.Days))
		}
	}
}

func TestParse_MalformedLineFailsWholeCall(t *testing.T) {
	cases := []struct {
		raw      string
		line     int
		sentinel error
	}{
		{"2024-01-01 10:00:00,success\n\nno comma here", 3, ErrMissingSeparator},
		{"yesterday,success", 1, ErrBadTimestamp},
		{"2024-01-01 10:00:00,success\n2024-13-45 99:00:00,success", 2, ErrBadTimestamp},
	}
	for _, c := range cases {
		p, err := parse(c.raw, DefaultWindowDays, time.UTC)
		if err == nil {
			t.Fatalf("parse(%q) want error, got %+v", c.raw, p)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("want *ParseError, got %T", err)
		}
		if pe.Line != c.line || pe.Raw == "" || pe.Reason == "" {
			t.Fatalf("unexpected parse error: %+v", pe)
		}
		if !errors.Is(err, c.sentinel) {
			t.Fatalf("want %v in chain, got %v", c.sentinel, err)
		}
	}
}

func TestParse_InvalidWindow(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := Parse("2024-01-01 10:00:00,success", n); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("Parse with window %d: want ErrInvalidWindow, got %v", n, err)
		}
	}
}

func TestFormatUpTime_RoundsTiesUp(t *testing.T) {
	cases := []struct {
		successes, total int
		want             string
	}{
		{5, 32, "15.63%"},
		{31, 32, "96.88%"},
		{1, 32, "3.13%"},
		{1, 8, "12.50%"},
		{1, 3, "33.33%"},
		{2, 3, "66.67%"},
		{1, 1, "100.00%"},
		{0, 4, "0.00%"},
		{0, 0, "--%"},
	}
	for _, tc := range cases {
		if got := FormatUpTime(tc.successes, tc.total); got != tc.want {
			t.Errorf("FormatUpTime(%d, %d) = %q, want %q", tc.successes, tc.total, got, tc.want)
		}
	}
}

func TestParse_UpTimeTieRoundsUp(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 32; i++ {
		outcome := "failure"
		if i < 5 {
			outcome = "success"
		}
		fmt.Fprintf(&b, "2024-01-15 %02d:%02d:00,%s\n", 23-i/60, 59-i%60, outcome)
	}
	p, err := parse(b.String(), 30, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if p.UpTime != "15.63%" {
		t.Fatalf("UpTime = %q, want 15.63%%", p.UpTime)
	}
}
