package internal

import (
	"errors"
	"fmt"
	"strings"
)

// Options is the validated, immutable set of resolved action flags. It is
// constructed once at startup and never mutated.
type Options struct {
	Update      bool
	Suspend     bool
	Resume      bool
	Cancel      bool
	ResetStatus bool
	Follow      bool

	PayloadURI string
	Headers    []string
}

// SplitHeaders turns the raw --headers value, one "key: value" pair per line,
// into the list ApplyPayload expects. Empty lines are discarded; whitespace
// inside a line is kept as-is.
func SplitHeaders(raw string) []string {
	var headers []string
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		headers = append(headers, line)
	}
	return headers
}

// Validate rejects invocations that must not reach the update service:
// positional arguments, invocations with nothing to do, and an update without
// a payload URI.
func (o Options) Validate(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q, pass values to flags as --flag=value", args[0])
	}
	if !o.Update && !o.Suspend && !o.Resume && !o.Cancel && !o.ResetStatus && !o.Follow {
		return errors.New("nothing to do, run with --help for help")
	}
	if o.Update && o.PayloadURI == "" {
		return errors.New("--update requires a payload URI")
	}
	return nil
}
