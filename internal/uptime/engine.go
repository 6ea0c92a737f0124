package uptime

import "time"

// Engine turns raw check logs into summaries. It holds no mutable state and
// may be shared between goroutines.
type Engine struct {
	maxDays int
	loc     *time.Location
	now     func() time.Time
}

type Option func(*Engine)

// WithLocation sets the zone used for day keys and failure times.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now as the reference point for day offsets.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(maxDays int, opts ...Option) (*Engine, error) {
	if err := checkWindow(maxDays); err != nil {
		return nil, err
	}
	e := &Engine{maxDays: maxDays, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) MaxDays() int { return e.maxDays }
func (e *Engine) Location() *time.Location { return e.loc }
func (e *Engine) Now() time.Time { return e.now() }

func (e *Engine) Parse(raw string) (*Parsed, error) {
	return parse(raw, e.maxDays, e.loc)
}

func (e *Engine) Summarize(p *Parsed) Summary {
	// maxDays was validated by New.
	s, _ := Summarize(p, e.now(), e.maxDays)
	return s
}

// Report parses raw and summarizes it against the engine clock.
func (e *Engine) Report(raw string) (Summary, error) {
	p, err := e.Parse(raw)
	if err != nil {
		return Summary{}, err
	}
	return e.Summarize(p), nil
}
