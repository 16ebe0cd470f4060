package sr

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/cli/sh"
	"github.com/robotalks/motor.go/pkg/device/sr"
)

var (
	// StartCmd starts the ring.
	StartCmd = ishell.Cmd{
		Name: "sr.start",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			n, err := sr.SendStart(sh.Transport(c))
			sh.Print(c, n, err)
		}),
	}

	// StopCmd stops the ring.
	StopCmd = ishell.Cmd{
		Name: "sr.stop",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			n, err := sr.SendStop(sh.Transport(c))
			sh.Print(c, n, err)
		}),
	}

	// ColorCmd sets the color and the blinking frequency.
	ColorCmd = ishell.Cmd{
		Name: "sr.color",
		Help: "RED GREEN BLUE [FREQ_HZ]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 3 || len(c.Args) > 4 {
				c.Err(sh.ArgCountError(3, 4))
				return
			}
			var rgb [3]uint8
			for i := range rgb {
				v, err := strconv.ParseUint(c.Args[i], 0, 8)
				if err != nil {
					c.Err(fmt.Errorf("invalid color %q: %v", c.Args[i], err))
					return
				}
				rgb[i] = uint8(v)
			}
			var freq float64
			if len(c.Args) > 3 {
				var err error
				if freq, err = strconv.ParseFloat(c.Args[3], 32); err != nil {
					c.Err(fmt.Errorf("invalid frequency %q: %v", c.Args[3], err))
					return
				}
			}
			n, err := sr.SendColor(sh.Transport(c), sr.Color{Red: rgb[0], Green: rgb[1], Blue: rgb[2]}, float32(freq))
			sh.Print(c, n, err)
		}),
	}
)

func init() {
	sh.AddCmds(&StartCmd, &StopCmd, &ColorCmd)
}
