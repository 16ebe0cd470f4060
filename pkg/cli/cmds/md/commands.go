package md

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/cli/sh"
	"github.com/robotalks/motor.go/pkg/device/md"
)

var (
	// PWMCmd sets the PWM duty.
	PWMCmd = ishell.Cmd{
		Name: "md.pwm",
		Help: "ADDR POWER",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 2, 2)
			addr, power := args.Byte(0), args.Int16(1)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := md.SendPWM(sh.Transport(c), addr, power)
			sh.Print(c, status, err)
		}),
	}

	// SpeedCmd sets the speed in rpm.
	SpeedCmd = ishell.Cmd{
		Name: "md.speed",
		Help: "ADDR RPM",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 2, 2)
			addr, rpm := args.Byte(0), args.Int16(1)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := md.SendSpeed(sh.Transport(c), addr, rpm)
			sh.Print(c, status, err)
		}),
	}

	// AngleCmd sets the target angle.
	AngleCmd = ishell.Cmd{
		Name: "md.angle",
		Help: "ADDR ANGLE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 2, 2)
			addr, angle := args.Byte(0), args.Int16(1)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := md.SendAngle(sh.Transport(c), addr, angle)
			sh.Print(c, status, err)
		}),
	}

	// LimitSwitchCmd drives until the limit switch of port triggers.
	LimitSwitchCmd = ishell.Cmd{
		Name:    "md.limit",
		Aliases: []string{"md.ls"},
		Help:    "ADDR PORT POWER [AFTER_POWER]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 3, 4)
			addr, port, power, afterPower := args.Byte(0), args.Byte(1), args.Int16(2), args.Int16(3)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := md.SendLimitSwitch(sh.Transport(c), addr, port, power, afterPower)
			sh.Print(c, status, err)
		}),
	}

	// InitCmd initializes the driver.
	InitCmd = ishell.Cmd{
		Name: "md.init",
		Help: "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 1, 1)
			addr := args.Byte(0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := md.SendInit(sh.Transport(c), addr)
			sh.Print(c, status, err)
		}),
	}

	// StatusCmd queries the status.
	StatusCmd = ishell.Cmd{
		Name: "md.status",
		Help: "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 1, 1)
			addr := args.Byte(0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := md.RequestStatus(sh.Transport(c), addr)
			sh.Print(c, status, err)
		}),
	}
)

func init() {
	sh.AddCmds(
		&PWMCmd,
		&SpeedCmd,
		&AngleCmd,
		&LimitSwitchCmd,
		&InitCmd,
		&StatusCmd,
	)
}
