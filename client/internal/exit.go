package internal

import (
	log "github.com/sirupsen/logrus"
)

// Process exit codes. Everything that goes wrong, from bad flags to a failed
// payload, is the same exit code 1; callers scripting against it cannot tell
// the causes apart.
const (
	exitOK      = 0
	exitFailure = 1
)

// ExitCoordinator owns the single exit outcome of the process. The first
// RequestExit wins; every later call is a no-op, which also makes duplicate
// terminal notifications harmless.
type ExitCoordinator struct {
	loop  *Loop
	fired bool
}

func NewExitCoordinator(loop *Loop) *ExitCoordinator {
	return &ExitCoordinator{loop: loop}
}

// RequestExit converts err into the process exit code (nil is success,
// anything else exit code 1) and schedules loop shutdown. Shutdown is queued
// as a task rather than performed inline so a reply still in flight on the
// bus gets delivered before the loop tears down.
func (e *ExitCoordinator) RequestExit(err error) {
	if e.fired {
		return
	}
	e.fired = true

	code := exitOK
	if err != nil {
		log.Error(err)
		code = exitFailure
	}

	if !e.loop.Quit(code) {
		log.Error("failed to schedule deferred exit")
		e.loop.stop(exitFailure)
	}
}
