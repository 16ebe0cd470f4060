package sd

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/cli/sh"
	"github.com/robotalks/motor.go/pkg/device/sd"
)

var (
	// PowerCmd sets the power of one port.
	PowerCmd = ishell.Cmd{
		Name: "sd.power",
		Help: "ADDR PORT POWER",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 3, 3)
			addr, port, power := args.Byte(0), args.Byte(1), args.Int16(2)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := sd.SendPower(sh.Transport(c), addr, port, power)
			sh.Print(c, status, err)
		}),
	}

	// PowersCmd sets the power of both ports.
	PowersCmd = ishell.Cmd{
		Name: "sd.powers",
		Help: "ADDR POWER0 POWER1",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 3, 3)
			addr, power0, power1 := args.Byte(0), args.Int16(1), args.Int16(2)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := sd.SendPowers(sh.Transport(c), addr, power0, power1)
			sh.Print(c, status, err)
		}),
	}

	// LimitSwitchCmd drives a port until its limit switch triggers.
	LimitSwitchCmd = ishell.Cmd{
		Name:    "sd.limit",
		Aliases: []string{"sd.ls"},
		Help:    "ADDR PORT POWER [AFTER_POWER]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 3, 4)
			addr, port, power, afterPower := args.Byte(0), args.Byte(1), args.Int16(2), args.Int16(3)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := sd.SendLimitSwitch(sh.Transport(c), addr, port, power, afterPower)
			sh.Print(c, status, err)
		}),
	}

	// StatusCmd queries the status.
	StatusCmd = ishell.Cmd{
		Name: "sd.status",
		Help: "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 1, 1)
			addr := args.Byte(0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := sd.RequestStatus(sh.Transport(c), addr)
			sh.Print(c, status, err)
		}),
	}
)

func init() {
	sh.AddCmds(&PowerCmd, &PowersCmd, &LimitSwitchCmd, &StatusCmd)
}
