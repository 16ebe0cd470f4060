package comm

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/msgs"
)

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// ErrConnClosed fails the commands pending when the connection ends.
var ErrConnClosed = errors.New("connection closed")

// Conn provides base implementation of Connection using Pipe.
// Events received are posted to the loop.
type Conn struct {
	Expiration time.Duration

	pipe    Pipe
	seq     uint32
	pending *xsync.MapOf[uint32, *commandFuture]
}

// NewConn creates a Conn over rw.
func NewConn(rw PacketReadWriter) *Conn {
	c := &Conn{}
	c.Init(rw)
	return c
}

// Init initializes Conn with defaults.
func (c *Conn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = xsync.NewMapOf[uint32, *commandFuture]()
}

// DoCommand implements Connection.
func (c *Conn) DoCommand(msg fx.Message, expiration time.Duration) CommandFuture {
	if expiration <= 0 {
		expiration = c.Expiration
	}
	seq := atomic.AddUint32(&c.seq, 1)
	if seq == 0 {
		seq = atomic.AddUint32(&c.seq, 1)
	}
	f := &commandFuture{
		seq:      seq,
		expireAt: time.Now().Add(expiration),
		result:   make(chan Result, 1),
	}
	c.pending.Store(seq, f)
	if err := c.pipe.SendCommandMsg(msg, seq); err != nil {
		c.resolve(seq, Result{Err: err})
	}
	return f
}

// Pending returns the count of commands waiting for results.
func (c *Conn) Pending() int {
	return c.pending.Size()
}

// AddToLoop implements LoopAdder.
func (c *Conn) AddToLoop(l *fx.Loop) {
	c.pipe.addReadWriter(l)
	l.AddRunnable(fx.RunnableFunc(c.run))
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	err := c.pipe.Close()
	c.failAll(ErrConnClosed)
	return err
}

func (c *Conn) run(ctx context.Context) error {
	err := c.pipe.Run(ctx)
	switch err {
	case nil, io.EOF, context.Canceled:
		c.failAll(ErrConnClosed)
	default:
		c.failAll(err)
	}
	return err
}

func (c *Conn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	result := Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	c.resolve(typed.Sequence, result)
	return nil
}

// resolve delivers the result once, the first caller wins.
func (c *Conn) resolve(seq uint32, result Result) {
	if f, ok := c.pending.LoadAndDelete(seq); ok {
		f.result <- result
		close(f.result)
	}
}

func (c *Conn) purgeExpired(cc fx.ControlContext) error {
	now := cc.Time()
	c.pending.Range(func(seq uint32, f *commandFuture) bool {
		if !f.expireAt.After(now) {
			c.resolve(seq, Result{Err: context.DeadlineExceeded})
		}
		return true
	})
	return nil
}

func (c *Conn) failAll(err error) {
	c.pending.Range(func(seq uint32, _ *commandFuture) bool {
		c.resolve(seq, Result{Err: err})
		return true
	})
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan Result
}

func (c *commandFuture) ResultChan() <-chan Result {
	return c.result
}
