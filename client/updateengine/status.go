package updateengine

import "fmt"

// UpdateStatus is the progress state the update service reports through
// StatusUpdate signals. Values match the wire encoding and must not be
// reordered.
type UpdateStatus int32

const (
	StatusIdle UpdateStatus = iota
	StatusCheckingForUpdate
	StatusUpdateAvailable
	StatusDownloading
	StatusVerifying
	StatusFinalizing
	StatusUpdatedNeedReboot
	StatusReportingErrorEvent
	StatusAttemptingRollback
	StatusDisabled
)

func (s UpdateStatus) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusCheckingForUpdate:
		return "CHECKING_FOR_UPDATE"
	case StatusUpdateAvailable:
		return "UPDATE_AVAILABLE"
	case StatusDownloading:
		return "DOWNLOADING"
	case StatusVerifying:
		return "VERIFYING"
	case StatusFinalizing:
		return "FINALIZING"
	case StatusUpdatedNeedReboot:
		return "UPDATED_NEED_REBOOT"
	case StatusReportingErrorEvent:
		return "REPORTING_ERROR_EVENT"
	case StatusAttemptingRollback:
		return "ATTEMPTING_ROLLBACK"
	case StatusDisabled:
		return "DISABLED"
	}
	return fmt.Sprintf("UNKNOWN_STATUS(%d)", int32(s))
}
