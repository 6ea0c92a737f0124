package render

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

// dateLayout matches the browser's Date.toDateString output.
const dateLayout = "Mon Jan 02 2006"

// Cell is one day of a status stream.
type Cell struct {
	Offset      int               `json:"offset"`
	Date        uptime.Day        `json:"date"`
	Status      Status            `json:"status"`
	StatusText  string            `json:"statusText"`
	Average     null.Float        `json:"average"`
	Stat        *uptime.DailyStat `json:"stat,omitempty"`
	Description string            `json:"description"`
}

// Label is the tooltip title of the cell.
func (c Cell) Label(key domain.TargetKey) string {
	return string(key) + " • " + c.Date.Midnight(time.UTC).Format(dateLayout)
}

// Stream lays out the summary window oldest day first, ending with today.
// Dates count back from now in loc.
func Stream(s uptime.Summary, now time.Time, loc *time.Location) []Cell {
	if loc == nil {
		loc = time.Local
	}
	n := s.WindowDays
	if n < 1 {
		n = uptime.DefaultWindowDays
	}
	today := now.In(loc)

	cells := make([]Cell, 0, n)
	for off := n - 1; off >= 0; off-- {
		avg := s.Average(off)
		st := Classify(avg)
		c := Cell{
			Offset:     off,
			Date:       uptime.DayOf(today.AddDate(0, 0, -off), loc),
			Status:     st,
			StatusText: st.Text(),
			Average:    avg,
		}
		if stat, ok := s.Stat(off); ok {
			c.Stat = &stat
			c.Date = stat.Day
		}
		c.Description = Description(st, c.Stat)
		cells = append(cells, c)
	}
	return cells
}

// Card is everything shown for one target.
type Card struct {
	Key           domain.TargetKey `json:"key"`
	URL           string           `json:"url"`
	Status        Status           `json:"status"`
	StatusText    string           `json:"statusText"`
	UpTime        string           `json:"upTime"`
	IncidentCount int              `json:"incidentCount"`
	OutageTime    string           `json:"outageTime"`
	NoLog         bool             `json:"noLog,omitempty"`
	Cells         []Cell           `json:"cells"`
}

// NewCard builds the card of a report. The headline status is today's.
func NewCard(r domain.Report, loc *time.Location) Card {
	now := r.GeneratedAt
	if now.IsZero() {
		now = time.Now()
	}
	st := Classify(r.Summary.Average(0))
	return Card{
		Key:           r.Target.Key,
		URL:           r.Target.URL,
		Status:        st,
		StatusText:    st.Text(),
		UpTime:        r.Summary.UpTime,
		IncidentCount: r.Summary.IncidentCount,
		OutageTime:    r.Summary.TotalEstimatedDowntime,
		NoLog:         r.NoLog,
		Cells:         Stream(r.Summary, now, loc),
	}
}
