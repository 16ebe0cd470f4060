package main

import (
	"github.com/robotalks/motor.go/pkg/cli/sh"
	env "github.com/robotalks/motor.go/pkg/env/transport"

	_ "github.com/robotalks/motor.go/pkg/cli/cmds/all"
)

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
