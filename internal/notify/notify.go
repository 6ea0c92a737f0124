// Package notify delivers alert messages to chat and email.
package notify

import (
	"context"

	"go.uber.org/multierr"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to every notifier. All of them are tried; the
// error combines every failure.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.Send(ctx, title, text))
	}
	return errs
}

// Enabled drops nil notifiers, so constructors returning nil for missing
// config can be passed straight in.
func Enabled(ns ...Notifier) Multi {
	var out Multi
	for _, n := range ns {
		if n == nil || isNilPtr(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isNilPtr(n Notifier) bool {
	switch v := n.(type) {
	case *Slack:
		return v == nil
	case *Email:
		return v == nil
	}
	return false
}
