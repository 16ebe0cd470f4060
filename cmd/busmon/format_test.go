package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/msgs"
)

func TestDescribeFrame(t *testing.T) {
	msg := &msgs.WriteRequest{Data: []byte{0x10, 0x60, 0x03, 0x00, 0x03, 0xe8, 0x00, 0x00}}
	typed, err := msgs.TypedFrom(msg)
	require.NoError(t, err)
	typed.Sequence = 7
	out := describe(typed, msg)
	require.Contains(t, out, "#7 [msgs.WriteRequest]")
	require.Contains(t, out, "frame=10 60 03 00 03 E8 00 00 class=sd")
}

func TestDescribeNoFrame(t *testing.T) {
	msg := &msgs.ReadReply{NotAvailable: true}
	typed, err := msgs.TypedFrom(msg)
	require.NoError(t, err)
	out := describe(typed, msg)
	require.Contains(t, out, "[msgs.ReadReply]")
	require.NotContains(t, out, "frame=")
}
