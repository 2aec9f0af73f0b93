package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/updatectl/updatectl/client/updateengine"
)

type statusEvent struct {
	status   updateengine.UpdateStatus
	progress float64
}

// fakeService implements updateengine.Service and replays configured
// notifications through the task queue, the same way the real proxy's signal
// pump does.
type fakeService struct {
	queue    updateengine.TaskQueue
	listener updateengine.StatusListener

	suspendErr error
	resumeErr  error
	cancelErr  error
	resetErr   error
	applyErr   error
	bindErr    error
	bound      bool

	// notifications delivered after a successful ApplyPayload, or straight
	// after Bind when deliverOnBind is set
	statuses      []statusEvent
	completions   []updateengine.ErrorCode
	deliverOnBind bool

	calls          []string
	appliedURI     string
	appliedHeaders []string
	closed         bool
}

func (f *fakeService) Suspend(context.Context) error {
	f.calls = append(f.calls, "suspend")
	return f.suspendErr
}

func (f *fakeService) Resume(context.Context) error {
	f.calls = append(f.calls, "resume")
	return f.resumeErr
}

func (f *fakeService) Cancel(context.Context) error {
	f.calls = append(f.calls, "cancel")
	return f.cancelErr
}

func (f *fakeService) ResetStatus(context.Context) error {
	f.calls = append(f.calls, "reset_status")
	return f.resetErr
}

func (f *fakeService) ApplyPayload(_ context.Context, uri string, headers []string) error {
	f.calls = append(f.calls, "apply_payload")
	f.appliedURI = uri
	f.appliedHeaders = headers
	if f.applyErr != nil {
		return f.applyErr
	}
	if f.listener != nil && !f.deliverOnBind {
		f.scheduleNotifications()
	}
	return nil
}

func (f *fakeService) Bind(_ context.Context, listener updateengine.StatusListener) (bool, error) {
	f.calls = append(f.calls, "bind")
	if f.bindErr != nil {
		return false, f.bindErr
	}
	if !f.bound {
		return false, nil
	}
	f.listener = listener
	if f.deliverOnBind {
		f.scheduleNotifications()
	}
	return true, nil
}

func (f *fakeService) Close() error {
	f.closed = true
	return nil
}

func (f *fakeService) scheduleNotifications() {
	listener := f.listener
	for _, evt := range f.statuses {
		evt := evt
		f.queue.Post(func() { listener.OnStatusUpdate(evt.status, evt.progress) })
	}
	for _, code := range f.completions {
		code := code
		f.queue.Post(func() { listener.OnPayloadApplicationComplete(code) })
	}
}

func (f *fakeService) dial(queue updateengine.TaskQueue) (updateengine.Service, error) {
	f.queue = queue
	return f, nil
}

func run(t *testing.T, opts Options, svc *fakeService, args ...string) int {
	t.Helper()
	return NewClient(opts, svc.dial).Run(context.Background(), args)
}

func TestRunNoFlagsIsUsageError(t *testing.T) {
	dialed := false
	client := NewClient(Options{}, func(updateengine.TaskQueue) (updateengine.Service, error) {
		dialed = true
		return nil, errors.New("unexpected dial")
	})

	assert.Equal(t, 1, client.Run(context.Background(), nil))
	assert.False(t, dialed, "a usage error must not reach the service")
}

func TestRunPositionalArgumentIsUsageError(t *testing.T) {
	svc := &fakeService{}
	code := run(t, Options{Suspend: true}, svc, "stray")

	assert.Equal(t, 1, code)
	assert.Empty(t, svc.calls)
}

func TestRunSingleActions(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		call string
	}{
		{"suspend", Options{Suspend: true}, "suspend"},
		{"resume", Options{Resume: true}, "resume"},
		{"cancel", Options{Cancel: true}, "cancel"},
		{"reset status", Options{ResetStatus: true}, "reset_status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			code := run(t, tc.opts, svc)

			assert.Equal(t, 0, code)
			assert.Equal(t, []string{tc.call}, svc.calls)
			assert.True(t, svc.closed)
		})
	}
}

func TestRunSuspendCallFailure(t *testing.T) {
	svc := &fakeService{suspendErr: errors.New("update engine is busy")}
	assert.Equal(t, 1, run(t, Options{Suspend: true}, svc))
}

func TestRunActionPrecedence(t *testing.T) {
	svc := &fakeService{bound: true}
	opts := Options{
		Suspend: true, Resume: true, Cancel: true, ResetStatus: true,
		Update: true, Follow: true, PayloadURI: "http://example.com/p",
	}

	assert.Equal(t, 0, run(t, opts, svc))
	assert.Equal(t, []string{"suspend"}, svc.calls, "only the first matching action runs")
}

func TestRunConnectionFailure(t *testing.T) {
	client := NewClient(Options{Suspend: true}, func(updateengine.TaskQueue) (updateengine.Service, error) {
		return nil, errors.New("bus unavailable")
	})

	assert.Equal(t, 1, client.Run(context.Background(), nil))
}

func TestRunUpdateWithoutFollow(t *testing.T) {
	svc := &fakeService{}
	opts := Options{
		Update:     true,
		PayloadURI: "http://example.com/payload.bin",
		Headers:    []string{"a: 1", "b: 2"},
	}

	assert.Equal(t, 0, run(t, opts, svc))
	assert.Equal(t, []string{"apply_payload"}, svc.calls)
	assert.Equal(t, "http://example.com/payload.bin", svc.appliedURI)
	assert.Equal(t, []string{"a: 1", "b: 2"}, svc.appliedHeaders)
}

func TestRunUpdateCallFailure(t *testing.T) {
	svc := &fakeService{applyErr: errors.New("payload rejected")}
	opts := Options{Update: true, PayloadURI: "http://example.com/p"}

	assert.Equal(t, 1, run(t, opts, svc))
}

func TestRunFollowBindRefused(t *testing.T) {
	svc := &fakeService{bound: false}
	opts := Options{Update: true, Follow: true, PayloadURI: "http://example.com/p"}

	assert.Equal(t, 1, run(t, opts, svc))
	assert.Contains(t, svc.calls, "bind")
	assert.NotContains(t, svc.calls, "apply_payload", "a failed bind is fatal before the update is issued")
}

func TestRunFollowBindError(t *testing.T) {
	svc := &fakeService{bindErr: errors.New("transport failure")}
	assert.Equal(t, 1, run(t, Options{Follow: true}, svc))
}

func TestRunUpdateFollowCompletionSuccess(t *testing.T) {
	svc := &fakeService{
		bound: true,
		statuses: []statusEvent{
			{updateengine.StatusDownloading, 0.25},
			{updateengine.StatusFinalizing, 0.95},
		},
		completions: []updateengine.ErrorCode{updateengine.CodeSuccess},
	}
	opts := Options{Update: true, Follow: true, PayloadURI: "http://example.com/p"}

	assert.Equal(t, 0, run(t, opts, svc))
	assert.Equal(t, []string{"bind", "apply_payload"}, svc.calls)
}

func TestRunUpdateFollowCompletionFailure(t *testing.T) {
	svc := &fakeService{
		bound:       true,
		completions: []updateengine.ErrorCode{updateengine.CodeDownloadTransferError},
	}
	opts := Options{Update: true, Follow: true, PayloadURI: "http://example.com/p"}

	assert.Equal(t, 1, run(t, opts, svc))
}

func TestRunUpdateFollowApplyFailure(t *testing.T) {
	svc := &fakeService{bound: true, applyErr: errors.New("no space left")}
	opts := Options{Update: true, Follow: true, PayloadURI: "http://example.com/p"}

	assert.Equal(t, 1, run(t, opts, svc))
}

func TestRunDuplicateCompletionKeepsFirstOutcome(t *testing.T) {
	cases := []struct {
		name        string
		completions []updateengine.ErrorCode
		expected    int
	}{
		{"success then failure", []updateengine.ErrorCode{updateengine.CodeSuccess, updateengine.CodeError}, 0},
		{"failure then success", []updateengine.ErrorCode{updateengine.CodeError, updateengine.CodeSuccess}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{bound: true, completions: tc.completions}
			opts := Options{Update: true, Follow: true, PayloadURI: "http://example.com/p"}

			assert.Equal(t, tc.expected, run(t, opts, svc))
		})
	}
}

func TestRunFollowOnlyWaitsForTerminalNotification(t *testing.T) {
	svc := &fakeService{
		bound:         true,
		deliverOnBind: true,
		statuses:      []statusEvent{{updateengine.StatusAttemptingRollback, 0.5}},
		completions:   []updateengine.ErrorCode{updateengine.CodeSuccess},
	}

	code := run(t, Options{Follow: true}, svc)

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"bind"}, svc.calls)
}
