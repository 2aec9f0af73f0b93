package updateengine

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"
)

const (
	dbusDest          = "io.updatectl.UpdateEngine1"
	dbusInterface     = "io.updatectl.UpdateEngine1"
	dbusObjectPath    = dbus.ObjectPath("/io/updatectl/UpdateEngine1")
	dbusDefaultFlag   = 0
	signalChannelSize = 16

	suspendMethod      = dbusInterface + ".Suspend"
	resumeMethod       = dbusInterface + ".Resume"
	cancelMethod       = dbusInterface + ".Cancel"
	resetStatusMethod  = dbusInterface + ".ResetStatus"
	applyPayloadMethod = dbusInterface + ".ApplyPayload"
	bindMethod         = dbusInterface + ".Bind"

	statusUpdateSignal               = dbusInterface + ".StatusUpdate"
	payloadApplicationCompleteSignal = dbusInterface + ".PayloadApplicationComplete"
)

// Client talks to the update service over D-Bus. It implements Service.
type Client struct {
	conn  *dbus.Conn
	obj   dbus.BusObject
	queue TaskQueue
}

// Dial connects to the update service on the given bus. Accepted values for
// bus are "system", "session" or a raw D-Bus address. Signal deliveries are
// scheduled onto queue.
func Dial(bus string, queue TaskQueue) (*Client, error) {
	conn, err := connect(bus)
	if err != nil {
		return nil, fmt.Errorf("connect to %s bus: %w", bus, err)
	}

	return &Client{
		conn:  conn,
		obj:   conn.Object(dbusDest, dbusObjectPath),
		queue: queue,
	}, nil
}

func connect(bus string) (*dbus.Conn, error) {
	switch bus {
	case "", "system":
		return dbus.SystemBus()
	case "session":
		return dbus.SessionBus()
	default:
		return dbus.Connect(bus)
	}
}

func (c *Client) Suspend(ctx context.Context) error {
	return c.call(ctx, suspendMethod)
}

func (c *Client) Resume(ctx context.Context) error {
	return c.call(ctx, resumeMethod)
}

func (c *Client) Cancel(ctx context.Context) error {
	return c.call(ctx, cancelMethod)
}

func (c *Client) ResetStatus(ctx context.Context) error {
	return c.call(ctx, resetStatusMethod)
}

func (c *Client) ApplyPayload(ctx context.Context, uri string, headers []string) error {
	return c.call(ctx, applyPayloadMethod, uri, headers)
}

// Bind subscribes to the service's signals, starts the delivery pump and
// registers this client with the service. The service answers with a boolean
// accepting or refusing the binding.
func (c *Client) Bind(ctx context.Context, listener StatusListener) (bool, error) {
	err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusObjectPath),
		dbus.WithMatchInterface(dbusInterface),
	)
	if err != nil {
		return false, fmt.Errorf("subscribe to update signals: %w", err)
	}

	signals := make(chan *dbus.Signal, signalChannelSize)
	c.conn.Signal(signals)
	go c.pump(signals, listener)

	call := c.obj.CallWithContext(ctx, bindMethod, dbusDefaultFlag)
	if call.Err != nil {
		return false, fmt.Errorf("call %s: %w", bindMethod, call.Err)
	}

	var bound bool
	if err := call.Store(&bound); err != nil {
		return false, fmt.Errorf("read %s reply: %w", bindMethod, err)
	}
	return bound, nil
}

// Close tears down the bus connection. The signal channel is closed by the
// bus library, which ends the pump.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) error {
	if call := c.obj.CallWithContext(ctx, method, dbusDefaultFlag, args...); call.Err != nil {
		return fmt.Errorf("call %s: %w", method, call.Err)
	}
	return nil
}

// pump forwards bus signals to the listener via the task queue, preserving
// delivery order.
func (c *Client) pump(signals <-chan *dbus.Signal, listener StatusListener) {
	for sig := range signals {
		switch sig.Name {
		case statusUpdateSignal:
			status, progress, err := parseStatusUpdate(sig.Body)
			if err != nil {
				log.Warnf("dropping malformed status signal: %v", err)
				continue
			}
			if !c.queue.Post(func() { listener.OnStatusUpdate(status, progress) }) {
				log.Warnf("task queue rejected status update %s", status)
			}
		case payloadApplicationCompleteSignal:
			code, err := parsePayloadApplicationComplete(sig.Body)
			if err != nil {
				log.Warnf("dropping malformed completion signal: %v", err)
				continue
			}
			if !c.queue.Post(func() { listener.OnPayloadApplicationComplete(code) }) {
				log.Warnf("task queue rejected completion %s", code)
			}
		}
	}
}

func parseStatusUpdate(body []interface{}) (UpdateStatus, float64, error) {
	if len(body) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(body))
	}
	status, ok := body[0].(int32)
	if !ok {
		return 0, 0, fmt.Errorf("status argument has type %T", body[0])
	}
	progress, ok := body[1].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("progress argument has type %T", body[1])
	}
	return UpdateStatus(status), progress, nil
}

func parsePayloadApplicationComplete(body []interface{}) (ErrorCode, error) {
	if len(body) != 1 {
		return 0, fmt.Errorf("expected 1 argument, got %d", len(body))
	}
	code, ok := body[0].(int32)
	if !ok {
		return 0, fmt.Errorf("error code argument has type %T", body[0])
	}
	return ErrorCode(code), nil
}
