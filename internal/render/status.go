// Package render turns summaries into status streams and presents them as
// terminal output, plain text or a PNG chart.
package render

import (
	"fmt"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimereport/internal/uptime"
)

type Status string

const (
	NoData  Status = "nodata"
	Success Status = "success"
	Failure Status = "failure"
	Partial Status = "partial"
)

// failureBelow is the availability under which a day counts as a major outage.
const failureBelow = 0.3

// Classify maps a daily average to a status. A null average means the day
// was not checked.
func Classify(avg null.Float) Status {
	switch {
	case !avg.Valid:
		return NoData
	case avg.Float64 == 1:
		return Success
	case avg.Float64 < failureBelow:
		return Failure
	default:
		return Partial
	}
}

func (s Status) Text() string {
	switch s {
	case NoData:
		return "No Data Available"
	case Success:
		return "Fully Operational"
	case Failure:
		return "Major Outage"
	case Partial:
		return "Partial Outage"
	default:
		return "Unknown"
	}
}

// Description is the one-line explanation shown next to a day. st may be nil.
func Description(s Status, st *uptime.DailyStat) string {
	if s == NoData {
		return "No Data Available: Health check was not performed."
	}

	failed, total, downtime := 0, 0, "0m"
	window := "No failed checks in this period."
	if st != nil {
		failed, total, downtime = st.FailedChecks, st.TotalChecks, st.EstimatedDowntime
		if st.FirstFailureTime.Valid {
			window = fmt.Sprintf("Outage window: %s - %s.", st.FirstFailureTime.String, st.LastFailureTime.String)
		}
	}

	if s == Success {
		return fmt.Sprintf("No downtime recorded on this day. %d checks ran.", total)
	}
	return fmt.Sprintf("%d failed checks out of %d. Estimated downtime: %s. %s", failed, total, downtime, window)
}
