package updateengine

import "context"

// StatusListener receives the notifications the update service pushes to a
// bound client. Both methods are invoked on the client's task queue, so
// implementations never run concurrently with each other or with scheduled
// work.
type StatusListener interface {
	// OnStatusUpdate reports a progress change. It is purely informational
	// and may fire any number of times.
	OnStatusUpdate(status UpdateStatus, progress float64)

	// OnPayloadApplicationComplete reports the terminal result of a payload
	// application started with ApplyPayload.
	OnPayloadApplicationComplete(code ErrorCode)
}

// Service is the call surface of the update daemon. All calls are synchronous
// and are never retried; a failure surfaces immediately as an error.
type Service interface {
	// Suspend pauses an ongoing update.
	Suspend(ctx context.Context) error

	// Resume continues a previously suspended update.
	Resume(ctx context.Context) error

	// Cancel aborts the ongoing update.
	Cancel(ctx context.Context) error

	// ResetStatus clears a pending UPDATED_NEED_REBOOT state.
	ResetStatus(ctx context.Context) error

	// ApplyPayload starts applying the payload at uri. Headers are
	// "key: value" lines forwarded verbatim to the service.
	ApplyPayload(ctx context.Context, uri string, headers []string) error

	// Bind registers listener for status and completion notifications. The
	// returned boolean is the service's own accept/reject answer; false with
	// a nil error means the service refused the binding. The binding lasts
	// for the lifetime of the connection.
	Bind(ctx context.Context, listener StatusListener) (bool, error)

	// Close releases the connection to the service.
	Close() error
}

// TaskQueue is where the proxy schedules listener invocations so they run
// interleaved with the caller's own work instead of on transport goroutines.
type TaskQueue interface {
	// Post schedules task and reports whether it was accepted.
	Post(task func()) bool
}
