// Package control runs the closed-loop velocity control of a brushless
// driver in a framework Loop.
package control

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/device/blmd"
	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/pid"
	"github.com/robotalks/motor.go/pkg/transport"
)

// TargetMsg changes the target velocity when posted to the loop.
type TargetMsg struct {
	Velocity int16
}

// NewMessage implements Message.
func (m *TargetMsg) NewMessage() fx.Message { return &TargetMsg{} }

// Velocity is a Controller running one velocity step of a brushless
// driver per loop iteration. The PID state is owned by the controller.
type Velocity struct {
	Transport transport.Transport
	ID        byte
	PID       *pid.VelPID
	Policy    ErrorPolicy
	// Interval is passed as the period of each step.
	Interval time.Duration
	// OnStatus receives the status after each successful step.
	OnStatus func(*blmd.Status)

	target   atomic.Int32
	status   atomic.Pointer[blmd.Status]
	failures atomic.Int64
}

// NewVelocity creates a Velocity from conf.
func NewVelocity(t transport.Transport, conf Config) (*Velocity, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	policy, _ := ParseErrorPolicy(conf.OnError)
	v := &Velocity{
		Transport: t,
		ID:        conf.ID,
		PID:       pid.New(conf.PID),
		Policy:    policy,
		Interval:  conf.Interval,
	}
	v.SetTarget(conf.Target)
	return v, nil
}

// AddToLoop implements LoopAdder. The loop runs at the control period.
func (v *Velocity) AddToLoop(l *fx.Loop) {
	l.Interval = v.interval()
	l.AddController(fx.PrLvControl, v)
}

// SetTarget sets the target velocity.
func (v *Velocity) SetTarget(velocity int16) {
	v.target.Store(int32(velocity))
}

// Target returns the target velocity.
func (v *Velocity) Target() int16 {
	return int16(v.target.Load())
}

// Status returns the status from the last successful step.
func (v *Velocity) Status() *blmd.Status {
	return v.status.Load()
}

// Failures returns the count of failed steps.
func (v *Velocity) Failures() int64 {
	return v.failures.Load()
}

// Step runs one control step with period dt.
// The failure of the status read is returned without retry.
func (v *Velocity) Step(dt time.Duration) (*blmd.Status, error) {
	status, err := blmd.SendVelocity(v.Transport, v.PID, v.ID, v.Target(), dt)
	if err != nil {
		v.failures.Add(1)
		return nil, err
	}
	v.status.Store(status)
	if fn := v.OnStatus; fn != nil {
		fn(status)
	}
	return status, nil
}

// Control implements Controller.
func (v *Velocity) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if msg, ok := mc.CurrentMessage().(*TargetMsg); ok {
			mc.MessageTaken()
			v.SetTarget(msg.Velocity)
		}
	}))
	_, err := v.Step(v.interval())
	if err == nil {
		return nil
	}
	switch v.Policy {
	case Stop:
		cc.Stop(err)
		return err
	default:
		glog.Warningf("velocity step skipped: %v", err)
		return nil
	}
}

func (v *Velocity) interval() time.Duration {
	if v.Interval > 0 {
		return v.Interval
	}
	return DefaultInterval
}
