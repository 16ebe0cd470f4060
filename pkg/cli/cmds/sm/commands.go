package sm

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/cli/sh"
	"github.com/robotalks/motor.go/pkg/device/sm"
)

var (
	// DataCmd writes data bytes to the module.
	DataCmd = ishell.Cmd{
		Name: "sm.data",
		Help: "ADDR BYTE...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(sh.ArgCountError(1, 1+sm.MaxData))
				return
			}
			addr, err := strconv.ParseUint(c.Args[0], 0, 8)
			if err != nil {
				c.Err(fmt.Errorf("invalid address %q: %v", c.Args[0], err))
				return
			}
			data := make([]byte, 0, len(c.Args)-1)
			for _, arg := range c.Args[1:] {
				v, err := strconv.ParseUint(arg, 0, 8)
				if err != nil {
					c.Err(fmt.Errorf("invalid byte %q: %v", arg, err))
					return
				}
				data = append(data, byte(v))
			}
			n, err := sm.SendData(sh.Transport(c), byte(addr), data)
			sh.Print(c, n, err)
		}),
	}

	// StatusCmd queries the status.
	StatusCmd = ishell.Cmd{
		Name: "sm.status",
		Help: "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ParseArgs(c, 1, 1)
			addr := args.Byte(0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			status, err := sm.SendStatus(sh.Transport(c), addr)
			sh.Print(c, status, err)
		}),
	}
)

func init() {
	sh.AddCmds(&DataCmd, &StatusCmd)
}
