package uptime

import (
	"fmt"
	"strings"
	"time"
)

// Outcome of a single health check.
type Outcome int

const (
	Failure Outcome = iota
	Success
)

// successToken is the only outcome text counted as a success.
const successToken = "success"

func (o Outcome) String() string {
	if o == Success {
		return successToken
	}
	return "failure"
}

// CheckRecord is one line of a check log.
type CheckRecord struct {
	Timestamp time.Time
	Outcome   Outcome
}

// LogLayout is the canonical timestamp shape of a log line. Timestamps carry
// no zone and are always read as UTC.
const LogLayout = "2006-01-02 15:04:05"

// Line renders r in the log line format.
func (r CheckRecord) Line() string {
	return r.Timestamp.UTC().Format(LogLayout) + "," + r.Outcome.String()
}

var timestampLayouts = []string{
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
}

var dateSeparators = strings.NewReplacer("/", "-", ".", "-")

// normalizeTimestamp rewrites the date separators of s to '-' and leaves the
// time of day untouched.
func normalizeTimestamp(s string) string {
	s = strings.TrimSpace(s)
	end := strings.IndexAny(s, " T")
	if end < 0 {
		end = len(s)
	}
	return dateSeparators.Replace(s[:end]) + s[end:]
}

func parseTimestamp(field string) (time.Time, error) {
	norm := normalizeTimestamp(field)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, norm, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrBadTimestamp, strings.TrimSpace(field))
}

// ParseRecord parses a single "<timestamp>,<outcome>" line. Anything after a
// second comma is ignored.
func ParseRecord(line string) (CheckRecord, error) {
	dateField, rest, ok := strings.Cut(line, ",")
	if !ok {
		return CheckRecord{}, ErrMissingSeparator
	}
	outcomeField, _, _ := strings.Cut(rest, ",")

	ts, err := parseTimestamp(dateField)
	if err != nil {
		return CheckRecord{}, err
	}

	rec := CheckRecord{Timestamp: ts, Outcome: Failure}
	if strings.TrimSpace(outcomeField) == successToken {
		rec.Outcome = Success
	}
	return rec, nil
}
