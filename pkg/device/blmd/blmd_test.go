package blmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/pid"
	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func TestSendCurrent(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x01, 0x02, 0, 0, 0, 0, 0, 0},
		[]byte{0x02, 0x02, 0, 0, 0, 0, 0, 0},
		[]byte{0x02, 0x01, 0x10, 0x00, 0x00, 0x64, 0x03, 0xe8},
	)
	status, err := SendCurrent(fake, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x30, 0x00, 0x01, 0x03, 0xe8, 0x00, 0x00, 0x00}}, fake.Writes())
	require.Equal(t, &Status{StdID: 0x201, Angle: 0x1000, Speed: 100, Current: 1000}, status)
	require.Zero(t, fake.Pending())
}

func TestReceiveStatusDiscards(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x02, 0x03, 0, 0, 0, 1, 0, 0},
		[]byte{0x03, 0x02, 0, 0, 0, 2, 0, 0},
		[]byte{0x02, 0x02, 0, 0, 0xff, 0xff, 0, 0},
	)
	status, err := ReceiveStatus(fake, 2)
	require.NoError(t, err)
	require.Equal(t, uint16(0x202), status.StdID)
	require.Equal(t, int16(-1), status.Speed)
}

type recordingCtl struct {
	target, measured, dt float64
	output               float64
}

func (c *recordingCtl) Update(target, measured, dt float64) float64 {
	c.target, c.measured, c.dt = target, measured, dt
	return c.output
}

func TestSendVelocity(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x02, 0x01, 0, 0, 0x00, 0x32, 0, 0},
		[]byte{0x02, 0x01, 0, 0, 0x00, 0x40, 0x01, 0xf4},
	)
	ctl := &recordingCtl{output: 500}
	status, err := SendVelocity(fake, ctl, 1, 100, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 100.0, ctl.target)
	require.Equal(t, 50.0, ctl.measured)
	require.InDelta(t, 0.01, ctl.dt, 1e-12)
	require.Equal(t, [][]byte{{0x30, 0x00, 0x01, 0x01, 0xf4, 0x00, 0x00, 0x00}}, fake.Writes())
	require.Equal(t, int16(64), status.Speed)
}

func TestSendVelocityClampsOutput(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x02, 0x01, 0, 0, 0, 0, 0, 0},
		[]byte{0x02, 0x01, 0, 0, 0, 0, 0, 0},
	)
	ctl := pid.New(pid.Config{Kp: 1000, OutMin: -100000, OutMax: 100000})
	_, err := SendVelocity(fake, ctl, 1, 1000, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x30, 0x00, 0x01, 0x7f, 0xff, 0x00, 0x00, 0x00}}, fake.Writes())
}

func TestSendVelocityStatusFailure(t *testing.T) {
	failure := errors.New("timeout")
	fake := transporttest.New().InjectErr(failure)
	ctl := &recordingCtl{}
	_, err := SendVelocity(fake, ctl, 1, 100, 10*time.Millisecond)
	require.ErrorIs(t, err, failure)
	require.Empty(t, fake.Writes())
	require.Zero(t, ctl.dt)
}
