package md

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport"
	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func statusFrame(addr byte) []byte {
	return []byte{addr, 0x07, 0x00, 0x5a, 0x00, 0x44, 0x01, 0x00}
}

func TestCommandFrames(t *testing.T) {
	cases := []struct {
		name   string
		send   func(transport.Transport) (*Status, error)
		expect []byte
	}{
		{"pwm", func(tr transport.Transport) (*Status, error) { return SendPWM(tr, 0x01, 1000) },
			[]byte{0x01, 0x60, 0x02, 0x00, 0x03, 0xe8, 0x00, 0x00}},
		{"pwm-negative", func(tr transport.Transport) (*Status, error) { return SendPWM(tr, 0x01, -1000) },
			[]byte{0x01, 0x60, 0x02, 0x01, 0x03, 0xe8, 0x00, 0x00}},
		{"speed", func(tr transport.Transport) (*Status, error) { return SendSpeed(tr, 0x01, -100) },
			[]byte{0x01, 0x60, 0x03, 0x01, 0x00, 0x44, 0x00, 0x00}},
		{"speed-zero", func(tr transport.Transport) (*Status, error) { return SendSpeed(tr, 0x01, 0) },
			[]byte{0x01, 0x60, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"angle", func(tr transport.Transport) (*Status, error) { return SendAngle(tr, 0x01, -90) },
			[]byte{0x01, 0x60, 0x04, 0x01, 0x00, 0x5a, 0x00, 0x00}},
		{"limsw", func(tr transport.Transport) (*Status, error) { return SendLimitSwitch(tr, 0x01, 1, 1000, -500) },
			[]byte{0x01, 0x60, 0x05, 0x01, 0x03, 0xe8, 0xfe, 0x0c}},
		{"init", func(tr transport.Transport) (*Status, error) { return SendInit(tr, 0x01) },
			[]byte{0x01, 0x60, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"status", func(tr transport.Transport) (*Status, error) { return RequestStatus(tr, 0x01) },
			[]byte{0x01, 0x60, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, c := range cases {
		fake := transporttest.New().Inject(statusFrame(0x01))
		status, err := c.send(fake)
		require.NoErrorf(t, err, "%s", c.name)
		require.Equalf(t, [][]byte{c.expect}, fake.Writes(), "%s frame", c.name)
		require.Equalf(t, byte(0x01), status.Address, "%s status", c.name)
	}
}

func TestReceiveStatusDiscards(t *testing.T) {
	fake := transporttest.New().Inject(
		statusFrame(0x02),
		statusFrame(0x11),
		statusFrame(0x01),
	)
	status, err := ReceiveStatus(fake, 0x01)
	require.NoError(t, err)
	require.Equal(t, &Status{
		Address:      0x01,
		SemiID:       0x07,
		Angle:        90,
		Speed:        100,
		LimitSwitch0: true,
		LimitSwitch1: false,
	}, status)
	require.Zero(t, fake.Pending())
}

func TestReceiveStatusNegativeSpeed(t *testing.T) {
	// -68 counts
	fake := transporttest.New().Inject([]byte{0x03, 0, 0xff, 0xff, 0xff, 0xbc, 0, 1})
	status, err := ReceiveStatus(fake, 0x03)
	require.NoError(t, err)
	require.Equal(t, int16(-1), status.Angle)
	require.Equal(t, -100, status.Speed)
	require.True(t, status.LimitSwitch1)
}

func TestReadErrorPropagated(t *testing.T) {
	fake := transporttest.New().Inject(statusFrame(0x02))
	_, err := SendPWM(fake, 0x01, 10)
	require.True(t, transport.IsIOError(err))
	require.Len(t, fake.Writes(), 1)
}
