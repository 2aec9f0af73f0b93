package internal

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/updatectl/updatectl/client/updateengine"
)

// DialFunc connects to the update service. The loop is handed over so the
// proxy can schedule signal deliveries onto it.
type DialFunc func(queue updateengine.TaskQueue) (updateengine.Service, error)

// Client dispatches exactly one primary action against the update service and
// coordinates the process exit code. At most the combination --update
// --follow keeps it running past its initial calls, waiting for the terminal
// notification.
type Client struct {
	opts Options
	dial DialFunc

	loop *Loop
	exit *ExitCoordinator
}

func NewClient(opts Options, dial DialFunc) *Client {
	loop := NewLoop()
	return &Client{
		opts: opts,
		dial: dial,
		loop: loop,
		exit: NewExitCoordinator(loop),
	}
}

// Run performs the requested action and blocks until the exit outcome is
// known, returning the process exit code. Positional arguments left over
// after flag parsing are passed in args and rejected.
func (c *Client) Run(ctx context.Context, args []string) int {
	if err := c.opts.Validate(args); err != nil {
		c.exit.RequestExit(err)
		return c.loop.Run()
	}

	svc, dialErr := c.dial(c.loop)
	if dialErr != nil {
		// Not fatal yet: only actions that actually reach for the service
		// turn this into a failure.
		log.Errorf("failed to connect to the update service: %v", dialErr)
	} else {
		defer func() {
			if err := svc.Close(); err != nil {
				log.Warnf("closing service connection: %v", err)
			}
		}()
	}

	call := func(name string, fn func(updateengine.Service) error) error {
		if svc == nil {
			return fmt.Errorf("%s: update service unavailable: %w", name, dialErr)
		}
		if err := fn(svc); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	// The first matching action wins; the flags are a priority list, not a
	// batch.
	switch {
	case c.opts.Suspend:
		c.exit.RequestExit(call("suspend", func(s updateengine.Service) error { return s.Suspend(ctx) }))
		return c.loop.Run()
	case c.opts.Resume:
		c.exit.RequestExit(call("resume", func(s updateengine.Service) error { return s.Resume(ctx) }))
		return c.loop.Run()
	case c.opts.Cancel:
		c.exit.RequestExit(call("cancel", func(s updateengine.Service) error { return s.Cancel(ctx) }))
		return c.loop.Run()
	case c.opts.ResetStatus:
		c.exit.RequestExit(call("reset status", func(s updateengine.Service) error { return s.ResetStatus(ctx) }))
		return c.loop.Run()
	}

	keepRunning := false
	if c.opts.Follow {
		if err := c.bindListener(ctx, svc, dialErr); err != nil {
			c.exit.RequestExit(err)
			return c.loop.Run()
		}
		keepRunning = true
	}

	if c.opts.Update {
		err := call("apply payload", func(s updateengine.Service) error {
			return s.ApplyPayload(ctx, c.opts.PayloadURI, c.opts.Headers)
		})
		if err != nil {
			c.exit.RequestExit(err)
			return c.loop.Run()
		}
		log.Infof("applying payload %s", c.opts.PayloadURI)
	}

	if !keepRunning {
		c.exit.RequestExit(nil)
	}
	return c.loop.Run()
}

// bindListener registers the status listener with the service. A refused
// binding is indistinguishable from a transport failure for our purposes.
func (c *Client) bindListener(ctx context.Context, svc updateengine.Service, dialErr error) error {
	if svc == nil {
		return fmt.Errorf("bind: update service unavailable: %w", dialErr)
	}
	bound, err := svc.Bind(ctx, &statusListener{exit: c.exit})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	if !bound {
		return errors.New("bind: update service refused the callback binding")
	}
	return nil
}
