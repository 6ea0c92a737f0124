package uptime

import (
	"fmt"
	"time"

	"github.com/guregu/null/v5"
)

// DailyStat describes one day of the window.
type DailyStat struct {
	Day                      Day         `json:"day"`
	TotalChecks              int         `json:"totalChecks"`
	FailedChecks             int         `json:"failedChecks"`
	EstimatedDowntime        string      `json:"estimatedDowntime"`
	EstimatedDowntimeMinutes int         `json:"estimatedDowntimeMinutes"`
	FirstFailureTime         null.String `json:"firstFailureTime"`
	LastFailureTime          null.String `json:"lastFailureTime"`
}

// Summary is the report for one target. Both maps are keyed by the number
// of days before now; a missing key means no data for that day.
type Summary struct {
	DailyAverages          map[int]null.Float `json:"dailyAverages"`
	DailyStats             map[int]DailyStat  `json:"dailyStats"`
	UpTime                 string             `json:"upTime"`
	IncidentCount          int                `json:"incidentCount"`
	TotalEstimatedDowntime string             `json:"totalEstimatedDowntime"`
	WindowDays             int                `json:"windowDays"`
}

// Average returns the availability of the day offset days ago. It is null
// both for days without a bucket and for empty buckets.
func (s Summary) Average(offset int) null.Float {
	return s.DailyAverages[offset]
}

func (s Summary) Stat(offset int) (DailyStat, bool) {
	st, ok := s.DailyStats[offset]
	return st, ok
}

// Summarize re-keys the buckets of p by their distance from now. When two
// days land on the same offset the one encountered later wins.
func Summarize(p *Parsed, now time.Time, maxDays int) (Summary, error) {
	if err := checkWindow(maxDays); err != nil {
		return Summary{}, err
	}
	if p == nil {
		p = &Parsed{UpTime: FormatUpTime(0, 0)}
	}

	s := Summary{
		DailyAverages:          make(map[int]null.Float, len(p.Days)),
		DailyStats:             make(map[int]DailyStat, len(p.Days)),
		UpTime:                 p.UpTime,
		IncidentCount:          p.IncidentCount,
		TotalEstimatedDowntime: FormatMinutes(p.TotalDowntimeMinutes),
		WindowDays:             maxDays,
	}

	loc := p.Location()
	for _, b := range p.Days {
		offset := RelativeDays(now, b.Day.Midnight(loc))
		s.DailyAverages[offset] = DayAverage(b.Results)
		s.DailyStats[offset] = statOf(b)
	}
	return s, nil
}

func statOf(b *DayBucket) DailyStat {
	minutes := b.DowntimeMinutes()
	return DailyStat{
		Day:                      b.Day,
		TotalChecks:              b.TotalChecks(),
		FailedChecks:             b.FailedChecks(),
		EstimatedDowntime:        FormatMinutes(minutes),
		EstimatedDowntimeMinutes: minutes,
		FirstFailureTime:         b.FirstFailureTime,
		LastFailureTime:          b.LastFailureTime,
	}
}

// DayAverage is the mean of a day's results, or null when it has none.
func DayAverage(results []int) null.Float {
	if len(results) == 0 {
		return null.Float{}
	}
	sum := 0
	for _, r := range results {
		sum += r
	}
	return null.FloatFrom(float64(sum) / float64(len(results)))
}

// FormatMinutes renders a duration as "1h 30m", "1h" or "45m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
