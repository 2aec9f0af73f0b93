package internal

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/updatectl/updatectl/client/updateengine"
)

// statusListener reports progress and turns the terminal notification into
// the process exit outcome.
type statusListener struct {
	exit *ExitCoordinator
}

func (l *statusListener) OnStatusUpdate(status updateengine.UpdateStatus, progress float64) {
	log.Infof("update status: %s (%.1f%%)", status, progress*100)
}

func (l *statusListener) OnPayloadApplicationComplete(code updateengine.ErrorCode) {
	log.Infof("payload application complete: %s", code)
	if code.IsSuccess() {
		l.exit.RequestExit(nil)
		return
	}
	l.exit.RequestExit(fmt.Errorf("payload application failed: %s", code))
}
