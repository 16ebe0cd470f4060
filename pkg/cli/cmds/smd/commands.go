package smd

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/cli/sh"
	"github.com/robotalks/motor.go/pkg/device/smd"
)

var (
	// AngleCmd sets the angle of one servo.
	AngleCmd = ishell.Cmd{
		Name: "smd.angle",
		Help: "ADDR PORT ANGLE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 3, 3)
			addr, port, angle := args.Byte(0), args.Byte(1), args.Uint16(2)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := smd.SendAngle(sh.Transport(c), addr, port, angle)
			sh.Print(c, status, err)
		}),
	}

	// AnglesCmd sets the angles of both servos.
	AnglesCmd = ishell.Cmd{
		Name: "smd.angles",
		Help: "ADDR ANGLE0 ANGLE1",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 3, 3)
			addr, angle0, angle1 := args.Byte(0), args.Uint16(1), args.Uint16(2)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := smd.SendAngles(sh.Transport(c), addr, angle0, angle1)
			sh.Print(c, status, err)
		}),
	}

	// StatusCmd queries the status.
	StatusCmd = ishell.Cmd{
		Name: "smd.status",
		Help: "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 1, 1)
			addr := args.Byte(0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := smd.RequestStatus(sh.Transport(c), addr)
			sh.Print(c, status, err)
		}),
	}
)

func init() {
	sh.AddCmds(&AngleCmd, &AnglesCmd, &StatusCmd)
}
