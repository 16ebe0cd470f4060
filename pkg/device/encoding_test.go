package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignMagnitudeRoundTrip(t *testing.T) {
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		sign, mag := SignMagnitude(int16(v))
		require.Equalf(t, int16(v), FromSignMagnitude(sign, mag), "value %d", v)
	}
}

func TestSignMagnitude(t *testing.T) {
	cases := []struct {
		v    int16
		sign byte
		mag  uint16
	}{
		{0, SignPositive, 0},
		{1000, SignPositive, 1000},
		{-1000, SignNegative, 1000},
		{math.MaxInt16, SignPositive, 32767},
		{math.MinInt16, SignNegative, 32768},
	}
	for _, c := range cases {
		sign, mag := SignMagnitude(c.v)
		require.Equalf(t, c.sign, sign, "sign of %d", c.v)
		require.Equalf(t, c.mag, mag, "magnitude of %d", c.v)
	}
}

func TestNegativeZero(t *testing.T) {
	require.Equal(t, int16(0), FromSignMagnitude(SignNegative, 0))
	require.Equal(t, FromSignMagnitude(SignPositive, 0), FromSignMagnitude(SignNegative, 0))
}

func TestRPMRoundTrip(t *testing.T) {
	for rpm := -20000; rpm <= 20000; rpm++ {
		back := CountToRPM(RPMToCount(rpm))
		diff := back - rpm
		require.Truef(t, diff >= -1 && diff <= 1, "rpm %d came back as %d", rpm, back)
	}
}

func TestRPMToCount(t *testing.T) {
	require.Equal(t, 0, RPMToCount(0))
	require.Equal(t, 8192, RPMToCount(12000))
	require.Equal(t, -8192, RPMToCount(-12000))
	require.Equal(t, 68, RPMToCount(100))
	require.Equal(t, 12000, CountToRPM(8192))
}

func TestFrameFields(t *testing.T) {
	f := NewFrame(0x12, Master, 3)
	f.PutInt16(4, -2)
	require.Equal(t, Frame{0x12, 0x60, 0x03, 0, 0xff, 0xfe, 0, 0}, f)
	require.Equal(t, int16(-2), f.Int16(4))
	f.PutSignMagnitude(3, 4, -1000)
	require.Equal(t, Frame{0x12, 0x60, 0x03, 1, 0x03, 0xe8, 0, 0}, f)
	require.Equal(t, int16(-1000), f.SignMagnitudeAt(3, 4))
	require.Equal(t, "12 60 03 01 03 E8 00 00", f.String())
}

func TestClamp16(t *testing.T) {
	require.Equal(t, int16(math.MaxInt16), Clamp16(40000))
	require.Equal(t, int16(math.MinInt16), Clamp16(-40000))
	require.Equal(t, int16(-5), Clamp16(-5))
}
