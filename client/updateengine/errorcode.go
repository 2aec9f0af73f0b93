package updateengine

import "fmt"

// ErrorCode is the terminal result of a payload application, delivered either
// as a call result or through the PayloadApplicationComplete signal. Zero
// means success; every other value is a named failure. Values match the wire
// encoding and must not be reordered.
type ErrorCode int32

const (
	CodeSuccess ErrorCode = iota
	CodeError
	CodeOmahaRequestError
	CodeDownloadTransferError
	CodePayloadHashMismatch
	CodePayloadSizeMismatch
	CodeFilesystemCopierError
	CodePostinstallRunnerError
	CodeFilesystemVerifierError
	CodeDownloadWriteError
	CodeCorruptedPayload
	CodeUpdatedButNotActive
)

// IsSuccess reports whether the code signals a successfully applied payload.
func (c ErrorCode) IsSuccess() bool {
	return c == CodeSuccess
}

func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeError:
		return "ERROR"
	case CodeOmahaRequestError:
		return "OMAHA_REQUEST_ERROR"
	case CodeDownloadTransferError:
		return "DOWNLOAD_TRANSFER_ERROR"
	case CodePayloadHashMismatch:
		return "PAYLOAD_HASH_MISMATCH"
	case CodePayloadSizeMismatch:
		return "PAYLOAD_SIZE_MISMATCH"
	case CodeFilesystemCopierError:
		return "FILESYSTEM_COPIER_ERROR"
	case CodePostinstallRunnerError:
		return "POSTINSTALL_RUNNER_ERROR"
	case CodeFilesystemVerifierError:
		return "FILESYSTEM_VERIFIER_ERROR"
	case CodeDownloadWriteError:
		return "DOWNLOAD_WRITE_ERROR"
	case CodeCorruptedPayload:
		return "CORRUPTED_PAYLOAD"
	case CodeUpdatedButNotActive:
		return "UPDATED_BUT_NOT_ACTIVE"
	}
	return fmt.Sprintf("UNKNOWN_ERROR_CODE(%d)", int32(c))
}
