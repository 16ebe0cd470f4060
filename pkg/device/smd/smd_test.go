package smd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport"
	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func TestSendAngle(t *testing.T) {
	fake := transporttest.New().Inject([]byte{0x23, 0x00, 0x00, 0xb4, 0x00, 0x5a, 0, 0})
	status, err := SendAngle(fake, 0x03, 1, 180)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x23, 0x60, 0x01, 0x01, 0x00, 0xb4, 0x00, 0x00}}, fake.Writes())
	require.Equal(t, &Status{Address: 0x23, Angle0: 180, Angle1: 90}, status)
}

func TestSendAngles(t *testing.T) {
	fake := transporttest.New().Inject([]byte{0x20, 0, 0, 0, 0, 0, 0, 0})
	_, err := SendAngles(fake, 0x00, 90, 270)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x20, 0x60, 0x02, 0x00, 0x00, 0x5a, 0x01, 0x0e}}, fake.Writes())
}

func TestReceiveStatusIgnoresSolenoidFrames(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x13, 0, 0, 1, 0, 1, 0, 0},
		[]byte{0x23, 0, 0, 2, 0, 2, 0, 0},
	)
	status, err := ReceiveStatus(fake, 0x03)
	require.NoError(t, err)
	require.Equal(t, int16(2), status.Angle0)
}

func TestWriteFailureIsReturned(t *testing.T) {
	fake := transporttest.New()
	fake.WriteErr = &transport.IOError{Op: "write"}
	_, err := SendAngle(fake, 0, 0, 10)
	require.True(t, transport.IsIOError(err))
}
