// Package all registers the shell commands of all device classes.
package all

import (
	_ "github.com/robotalks/motor.go/pkg/cli/cmds/blmd"
	_ "github.com/robotalks/motor.go/pkg/cli/cmds/md"
	_ "github.com/robotalks/motor.go/pkg/cli/cmds/sd"
	_ "github.com/robotalks/motor.go/pkg/cli/cmds/sm"
	_ "github.com/robotalks/motor.go/pkg/cli/cmds/smd"
	_ "github.com/robotalks/motor.go/pkg/cli/cmds/sr"
)
