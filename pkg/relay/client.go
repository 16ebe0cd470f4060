package relay

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/comm"
	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/msgs"
	"github.com/robotalks/motor.go/pkg/transport"
)

// ProtocolVersion is exchanged in the handshake.
const ProtocolVersion = "1"

// RoundTripSlack is added to the timeout of an operation to wait for
// the reply of the relay.
const RoundTripSlack = time.Second

// DefaultHelloTimeout bounds the handshake.
const DefaultHelloTimeout = 3 * time.Second

// ClientLoopInterval is the period of the client loop expiring commands.
const ClientLoopInterval = 10 * time.Millisecond

// Client is a transport.Handle forwarding bulk transfers to a relay.
// Calls block the caller while a private loop serves the connection.
// Failed round trips are never retried.
type Client struct {
	// OnChange is invoked when the relay reports the device
	// attaching or detaching.
	OnChange func(present bool)

	conn    comm.Connection
	cancel  context.CancelFunc
	done    chan struct{}
	present atomic.Bool

	infoLock sync.RWMutex
	info     msgs.HelloReply
}

// NewClient starts serving conn. The handshake is not performed.
func NewClient(conn comm.Connection) *Client {
	c := &Client{conn: conn, done: make(chan struct{})}
	c.present.Store(true)
	loop := fx.NewLoop()
	loop.Interval = ClientLoopInterval
	loop.Add(conn)
	loop.AddController(fx.PrLvControl, fx.ControlFunc(c.handleEvents))
	var ctx context.Context
	ctx, c.cancel = context.WithCancel(context.Background())
	go func() {
		defer close(c.done)
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			glog.Warningf("relay client stopped: %v", err)
		}
	}()
	return c
}

// Hello performs the handshake and records the information of the relay.
func (c *Client) Hello(ctx context.Context) (*msgs.HelloReply, error) {
	timeout := DefaultHelloTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	reply, err := c.call(ctx, "hello", &msgs.HelloQuery{Version: ProtocolVersion}, timeout)
	if err != nil {
		return nil, err
	}
	hello, ok := reply.(*msgs.HelloReply)
	if !ok {
		return nil, unexpectedReply("hello", reply)
	}
	c.infoLock.Lock()
	c.info = *hello
	c.infoLock.Unlock()
	c.setPresent(hello.Present)
	return hello, nil
}

// Info returns the information of the relay from the handshake.
func (c *Client) Info() msgs.HelloReply {
	c.infoLock.RLock()
	defer c.infoLock.RUnlock()
	return c.info
}

// Present indicates whether the relay last reported its device attached.
func (c *Client) Present() bool {
	return c.present.Load()
}

// WriteBulk implements transport.Transport.
func (c *Client) WriteBulk(frame []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("write", timeout); err != nil {
		return 0, err
	}
	reply, err := c.call(context.Background(), "write", msgs.NewWriteRequest(frame, timeout), timeout)
	if err != nil {
		return 0, err
	}
	wr, ok := reply.(*msgs.WriteReply)
	if !ok {
		return 0, unexpectedReply("write", reply)
	}
	if wr.NotAvailable {
		return 0, transport.ErrNotAvailable
	}
	return int(wr.Written), nil
}

// ReadBulk implements transport.Transport.
// The reply must fill buf exactly, otherwise buf is left untouched.
func (c *Client) ReadBulk(buf []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("read", timeout); err != nil {
		return 0, err
	}
	reply, err := c.call(context.Background(), "read", msgs.NewReadRequest(len(buf), timeout), timeout)
	if err != nil {
		return 0, err
	}
	rr, ok := reply.(*msgs.ReadReply)
	if !ok {
		return 0, unexpectedReply("read", reply)
	}
	if rr.NotAvailable {
		return 0, transport.ErrNotAvailable
	}
	if len(rr.Data) != len(buf) {
		return 0, &transport.IOError{
			Op:  "read",
			Err: fmt.Errorf("%w: got %d bytes, expect %d", transport.ErrLengthMismatch, len(rr.Data), len(buf)),
		}
	}
	return copy(buf, rr.Data), nil
}

// Close stops the loop and closes the connection.
func (c *Client) Close() error {
	c.cancel()
	<-c.done
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, op string, msg fx.Message, timeout time.Duration) (fx.Message, error) {
	expiration := timeout + RoundTripSlack
	glog.V(2).Infof("relay %s %s", op, msg)
	f := c.conn.DoCommand(msg, expiration)
	// the loop expires the command, the timer covers a stalled loop.
	timer := time.NewTimer(expiration + RoundTripSlack)
	defer timer.Stop()
	select {
	case r := <-f.ResultChan():
		if r.Err != nil {
			return nil, &transport.RemoteCallError{Op: op, Err: r.Err}
		}
		return r.Msg, nil
	case <-timer.C:
		return nil, &transport.RemoteCallError{Op: op, Err: context.DeadlineExceeded}
	case <-ctx.Done():
		return nil, &transport.RemoteCallError{Op: op, Err: ctx.Err()}
	case <-c.done:
		return nil, &transport.RemoteCallError{Op: op, Err: comm.ErrConnClosed}
	}
}

func (c *Client) handleEvents(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if status, ok := mc.CurrentMessage().(*msgs.DeviceStatus); ok {
			mc.MessageTaken()
			c.setPresent(status.Present)
		}
	}))
	return nil
}

func (c *Client) setPresent(present bool) {
	if c.present.Swap(present) == present {
		return
	}
	glog.Infof("relay device present: %v", present)
	if fn := c.OnChange; fn != nil {
		fn(present)
	}
}

func unexpectedReply(op string, msg fx.Message) error {
	return &transport.RemoteCallError{Op: op, Err: fmt.Errorf("unexpected reply %T", msg)}
}
