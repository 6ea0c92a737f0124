package uptime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v5"
)

const (
	// DefaultWindowDays is the number of distinct days a report keeps.
	DefaultWindowDays = 30

	minutesPerDay = 24 * 60

	// failureTimeLayout renders the time of day of a failed check.
	failureTimeLayout = "15:04"
)

// DayBucket collects the checks recorded on one calendar day.
type DayBucket struct {
	Day              Day
	Results          []int // 1 success, 0 failure, in log order
	FirstFailureTime null.String
	LastFailureTime  null.String
}

func (b *DayBucket) TotalChecks() int { return len(b.Results) }

func (b *DayBucket) FailedChecks() int {
	n := 0
	for _, r := range b.Results {
		if r == 0 {
			n++
		}
	}
	return n
}

// DowntimeMinutes extrapolates the failure ratio of the day onto 24 hours.
func (b *DayBucket) DowntimeMinutes() int {
	total := b.TotalChecks()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(b.FailedChecks()) / float64(total) * minutesPerDay))
}

func (b *DayBucket) add(rec CheckRecord, loc *time.Location) {
	if rec.Outcome == Success {
		b.Results = append(b.Results, 1)
		return
	}
	b.Results = append(b.Results, 0)

	at := null.StringFrom(rec.Timestamp.In(loc).Format(failureTimeLayout))
	if !b.FirstFailureTime.Valid {
		b.FirstFailureTime = at
	}
	b.LastFailureTime = at
}

// Parsed is the outcome of one pass over a check log. Buckets are kept in
// the order their day was first encountered.
type Parsed struct {
	Days                 []*DayBucket
	Checks               int
	Successes            int
	UpTime               string
	IncidentCount        int
	TotalDowntimeMinutes int
	// Truncated is set when the window filled up before the log ended.
	Truncated bool

	loc   *time.Location
	index map[Day]*DayBucket
}

// Bucket looks up the bucket of day d.
func (p *Parsed) Bucket(d Day) (*DayBucket, bool) {
	b, ok := p.index[d]
	return b, ok
}

// Location is the zone the day keys were computed in.
func (p *Parsed) Location() *time.Location {
	if p == nil || p.loc == nil {
		return time.Local
	}
	return p.loc
}

// Parse buckets raw log text by local calendar day. The log must list its
// most recent days first: scanning stops for good at the first record whose
// day would exceed maxDays distinct days.
func Parse(raw string, maxDays int) (*Parsed, error) {
	return parse(raw, maxDays, time.Local)
}

func parse(raw string, maxDays int, loc *time.Location) (*Parsed, error) {
	if err := checkWindow(maxDays); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}

	p := &Parsed{loc: loc, index: make(map[Day]*DayBucket)}
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Raw: line, Reason: err.Error(), Err: err}
		}

		day := DayOf(rec.Timestamp, loc)
		b, ok := p.index[day]
		if !ok {
			if len(p.Days) == maxDays {
				p.Truncated = true
				break
			}
			b = &DayBucket{Day: day}
			p.index[day] = b
			p.Days = append(p.Days, b)
		}

		b.add(rec, loc)
		p.Checks++
		if rec.Outcome == Success {
			p.Successes++
		}
	}

	for _, b := range p.Days {
		if b.FailedChecks() > 0 {
			p.IncidentCount++
		}
		p.TotalDowntimeMinutes += b.DowntimeMinutes()
	}
	p.UpTime = FormatUpTime(p.Successes, p.Checks)
	return p, nil
}

// FormatUpTime renders successes/total as a percentage with two decimals,
// or "--%" when nothing was checked. Exact ties round half-up.
func FormatUpTime(successes, total int) string {
	if total == 0 {
		return "--%"
	}
	return formatHundredths(float64(successes)/float64(total)*100) + "%"
}

// formatHundredths is %.2f except that a value whose exact binary expansion
// ends at a third decimal digit of 5 rounds away from zero instead of to
// even.
func formatHundredths(v float64) string {
	exact := strconv.FormatFloat(math.Abs(v), 'f', 80, 64)
	dot := strings.IndexByte(exact, '.')
	if tail := exact[dot+3:]; tail[0] == '5' && strings.TrimRight(tail[1:], "0") == "" {
		// v*100 is exactly representable here, so Ceil lands on the next hundredth.
		up := math.Ceil(math.Abs(v)*100) / 100
		return fmt.Sprintf("%.2f", math.Copysign(up, v))
	}
	return fmt.Sprintf("%.2f", v)
}
