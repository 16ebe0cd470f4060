package blmd

import (
	"sync"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/cli/sh"
	"github.com/robotalks/motor.go/pkg/control"
	"github.com/robotalks/motor.go/pkg/device/blmd"
	"github.com/robotalks/motor.go/pkg/pid"
)

var (
	pidLock sync.Mutex
	pids    = make(map[byte]*pid.VelPID)
)

// controllerOf keeps the PID state of id across velocity commands.
func controllerOf(id byte) *pid.VelPID {
	pidLock.Lock()
	defer pidLock.Unlock()
	ctl := pids[id]
	if ctl == nil {
		ctl = pid.New(control.DefaultConfig().PID)
		pids[id] = ctl
	}
	return ctl
}

var (
	// CurrentCmd sets the drive current.
	CurrentCmd = ishell.Cmd{
		Name: "blmd.current",
		Help: "ID CURRENT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 2, 2)
			id, current := args.Byte(0), args.Int16(1)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := blmd.SendCurrent(sh.Transport(c), id, current)
			sh.Print(c, status, err)
		}),
	}

	// VelocityCmd runs one velocity control step.
	VelocityCmd = ishell.Cmd{
		Name: "blmd.velocity",
		Help: "ID VELOCITY",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 2, 2)
			id, velocity := args.Byte(0), args.Int16(1)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := blmd.SendVelocity(sh.Transport(c), controllerOf(id), id, velocity, control.DefaultInterval)
			sh.Print(c, status, err)
		}),
	}

	// StatusCmd waits for the next status.
	StatusCmd = ishell.Cmd{
		Name: "blmd.status",
		Help: "ID",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 1, 1)
			id := args.Byte(0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := blmd.ReceiveStatus(sh.Transport(c), id)
			sh.Print(c, status, err)
		}),
	}
)

func init() {
	sh.AddCmds(&CurrentCmd, &VelocityCmd, &StatusCmd)
}
