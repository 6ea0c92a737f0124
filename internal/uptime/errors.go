package uptime

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned when the day window is not positive.
	ErrInvalidWindow = errors.New("uptime: window must be at least one day")

	ErrMissingSeparator = errors.New("missing comma between timestamp and outcome")
	ErrBadTimestamp     = errors.New("unparseable timestamp")
)

// ParseError reports the log line that aborted a parse. Logs are machine
// generated, so one bad line fails the whole report.
type ParseError struct {
	Line   int // 1-based
	Raw    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("uptime: line %d: %s: %q", e.Line, e.Reason, e.Raw)
}

func (e *ParseError) Unwrap() error { return e.Err }

func checkWindow(maxDays int) error {
	if maxDays <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidWindow, maxDays)
	}
	return nil
}
