package main

import (
	"fmt"
	"strings"

	"github.com/robotalks/motor.go/pkg/device"
	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/msgs"
)

// describe formats a relay message, frames carried by bulk transfers are
// decoded as device frames.
func describe(typed *msgs.Typed, msg fx.Message) string {
	var w strings.Builder
	fmt.Fprintf(&w, "#%d [%s]", typed.Sequence, msgs.TypeName(typed.TypeId))
	if m, ok := msg.(msgs.SerializableMessage); ok {
		if s := m.Serializable().String(); s != "" {
			fmt.Fprintf(&w, " %s", s)
		}
	}
	switch m := msg.(type) {
	case *msgs.WriteRequest:
		w.WriteString(frameOf(m.Data))
	case *msgs.ReadReply:
		w.WriteString(frameOf(m.Data))
	}
	return w.String()
}

func frameOf(data []byte) string {
	if len(data) != device.FrameSize {
		return ""
	}
	var f device.Frame
	copy(f[:], data)
	return fmt.Sprintf(" frame=%s class=%s", f, device.ClassName(device.ClassOf(f.Address())))
}
