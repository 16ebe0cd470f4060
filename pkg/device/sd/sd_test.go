package sd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func TestSendPower(t *testing.T) {
	fake := transporttest.New().Inject([]byte{0x10, 0x00, 0x03, 0xe8, 0x00, 0x00, 0x00, 0x01})
	status, err := SendPower(fake, 0x10, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x10, 0x60, 0x03, 0x00, 0x03, 0xe8, 0x00, 0x00}}, fake.Writes())
	require.Equal(t, &Status{Address: 0x10, Port0: 1000, LimitSwitch1: true}, status)
}

func TestSendPowers(t *testing.T) {
	fake := transporttest.New().Inject([]byte{0x12, 0x00, 0x01, 0xf4, 0xfe, 0x0c, 0x01, 0x00})
	status, err := SendPowers(fake, 0x02, 500, -500)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x12, 0x60, 0x01, 0x00, 0x01, 0xf4, 0xfe, 0x0c}}, fake.Writes())
	require.Equal(t, int16(500), status.Port0)
	require.Equal(t, int16(-500), status.Port1)
	require.True(t, status.LimitSwitch0)
}

func TestSendLimitSwitch(t *testing.T) {
	fake := transporttest.New().Inject([]byte{0x11, 0, 0, 0, 0, 0, 0, 0})
	_, err := SendLimitSwitch(fake, 0x01, 1, 300, 0)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x11, 0x60, 0x02, 0x01, 0x01, 0x2c, 0x00, 0x00}}, fake.Writes())
}

func TestReceiveStatusMatchesClassAddress(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x01, 0, 0, 0, 0, 0, 0, 0},
		[]byte{0x21, 0, 0, 0, 0, 0, 0, 0},
		[]byte{0x11, 0x05, 0, 0, 0, 0, 0, 0},
	)
	status, err := ReceiveStatus(fake, 0x01)
	require.NoError(t, err)
	require.Equal(t, byte(0x11), status.Address)
	require.Equal(t, byte(0x05), status.SemiID)
}
