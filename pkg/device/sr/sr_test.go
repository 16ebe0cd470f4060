package sr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func TestCommands(t *testing.T) {
	fake := transporttest.New()
	n, err := SendStop(fake)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	_, err = SendStart(fake)
	require.NoError(t, err)
	_, err = SendColor(fake, Color{Red: 0xff, Green: 0x80, Blue: 0x10}, 2.5)
	require.NoError(t, err)
	require.Equal(t, [][]byte{
		{0x40, 0x60, 0x01, 0, 0, 0, 0, 0},
		{0x40, 0x60, 0x02, 0, 0, 0, 0, 0},
		{0x40, 0x60, 0x03, 0, 0x80, 0xff, 0x10, 0x0a},
	}, fake.Writes())
	require.Zero(t, fake.Pending())
}

func TestFreqSaturates(t *testing.T) {
	require.Equal(t, byte(0), freqByte(-1))
	require.Equal(t, byte(255), freqByte(100))
	require.Equal(t, byte(4), freqByte(1))
}

func TestFreqNaN(t *testing.T) {
	require.Equal(t, byte(0), freqByte(float32(math.NaN())))
	fake := transporttest.New()
	_, err := SendColor(fake, Color{Red: 1}, float32(math.NaN()))
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x40, 0x60, 0x03, 0, 0, 0x01, 0, 0}}, fake.Writes())
}
