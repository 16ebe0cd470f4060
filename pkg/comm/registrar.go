package comm

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/msgs"
)

// PipeRegistrar implements Registrar with Pipe and integrated with Loop.
type PipeRegistrar struct {
	pipe Pipe
}

// NewRegistrar creates a PipeRegistrar over rw.
func NewRegistrar(rw PacketReadWriter) *PipeRegistrar {
	r := &PipeRegistrar{}
	r.Init(rw)
	return r
}

// Init initializes the PipeRegistrar with defaults.
func (r *PipeRegistrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(func(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
		loopCtl := fx.LoopCtlFrom(ctx)
		switch {
		case typed.IsReply():
			glog.V(2).Infof("unexpected reply %s", msgs.TypeName(typed.TypeId))
			return nil
		case typed.IsCommand():
			loopCtl.PostMessage(&CommandMsg{Command: &command{seq: typed.Sequence, msg: msg, pipe: &r.pipe}})
		default:
			loopCtl.PostMessage(msg)
		}
		loopCtl.TriggerNext()
		return nil
	})
}

// SendEvent implements Registrar.
func (r *PipeRegistrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// AddToLoop implements LoopAdder.
func (r *PipeRegistrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

// Run serves the commands until the packets end or ctx is done.
// ctx must be derived from the context of a running loop.
func (r *PipeRegistrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

// Close implements io.Closer.
func (r *PipeRegistrar) Close() error {
	return r.pipe.Close()
}

type command struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
}

func (c *command) Msg() fx.Message {
	return c.msg
}

func (c *command) Done(msg fx.Message) error {
	return c.pipe.SendCommandMsg(msg, c.seq)
}

// RegistrarMux registers the relay with multiple Registrars.
type RegistrarMux struct {
	Registrars []Registrar
}

// SendEvent implements Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// UnsupportedCommands replies left-over commands as unsupported.
type UnsupportedCommands struct {
}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if cmdMsg, ok := mctx.CurrentMessage().(*CommandMsg); ok {
			mctx.MessageTaken()
			if err := cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)); err != nil {
				glog.Warningf("reply unsupported command error: %v", err)
			}
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
