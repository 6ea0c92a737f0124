package render

import (
	"testing"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimereport/internal/uptime"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		avg  null.Float
		want Status
	}{
		{null.Float{}, NoData},
		{null.FloatFrom(1), Success},
		{null.FloatFrom(0.999), Partial},
		{null.FloatFrom(0.3), Partial},
		{null.FloatFrom(0.29), Failure},
		{null.FloatFrom(0), Failure},
	}
	for _, tc := range cases {
		if got := Classify(tc.avg); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.avg, got, tc.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	want := map[Status]string{
		NoData:         "No Data Available",
		Success:        "Fully Operational",
		Failure:        "Major Outage",
		Partial:        "Partial Outage",
		Status("what"): "Unknown",
	}
	for s, w := range want {
		if got := s.Text(); got != w {
			t.Errorf("%s.Text() = %q, want %q", s, got, w)
		}
	}
}

func TestDescription(t *testing.T) {
	withFailures := &uptime.DailyStat{
		TotalChecks:       10,
		FailedChecks:      2,
		EstimatedDowntime: "4h 48m",
		FirstFailureTime:  null.StringFrom("09:00"),
		LastFailureTime:   null.StringFrom("13:15"),
	}
	clean := &uptime.DailyStat{TotalChecks: 4, EstimatedDowntime: "0m"}

	cases := []struct {
		name string
		s    Status
		st   *uptime.DailyStat
		want string
	}{
		{"nodata", NoData, nil, "No Data Available: Health check was not performed."},
		{"success", Success, clean, "No downtime recorded on this day. 4 checks ran."},
		{"partial", Partial, withFailures, "2 failed checks out of 10. Estimated downtime: 4h 48m. Outage window: 09:00 - 13:15."},
		{"no stat", Failure, nil, "0 failed checks out of 0. Estimated downtime: 0m. No failed checks in this period."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Description(tc.s, tc.st); got != tc.want {
				t.Fatalf("got %q\nwant %q", got, tc.want)
			}
		})
	}
}
