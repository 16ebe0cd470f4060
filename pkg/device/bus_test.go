package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport"
	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func TestReceiveDiscardsUnmatched(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x01, 0, 0, 0, 0, 0, 0, 0},
		[]byte{0x12, 0, 0, 0, 0, 0, 0, 0},
		[]byte{0x02, 0xaa, 0, 0, 0, 0, 0, 0},
		[]byte{0x02, 0xbb, 0, 0, 0, 0, 0, 0},
	)
	f, err := Receive(fake, MatchAddress(0x02))
	require.NoError(t, err)
	require.Equal(t, byte(0xaa), f.SemiID())
	require.Equal(t, 1, fake.Pending())
}

func TestReceivePropagatesReadError(t *testing.T) {
	failure := errors.New("stall")
	fake := transporttest.New().
		Inject([]byte{0x01, 0, 0, 0, 0, 0, 0, 0}).
		InjectErr(failure).
		Inject([]byte{0x02, 0, 0, 0, 0, 0, 0, 0})
	_, err := Receive(fake, MatchAddress(0x02))
	require.ErrorIs(t, err, failure)
	require.Equal(t, 1, fake.Pending())
}

func TestReceiveTimeout(t *testing.T) {
	_, err := Receive(transporttest.New(), MatchAddress(0x02))
	require.True(t, transport.IsIOError(err))
}

func TestExchangeStopsOnWriteError(t *testing.T) {
	fake := transporttest.New().Inject([]byte{0x02, 0, 0, 0, 0, 0, 0, 0})
	fake.WriteErr = &transport.IOError{Op: "write", Err: errors.New("pipe")}
	_, err := Exchange(fake, NewFrame(0x02, Master, 1), MatchAddress(0x02))
	require.True(t, transport.IsIOError(err))
	require.Equal(t, 1, fake.Pending())
}

func TestSendEmergency(t *testing.T) {
	fake := transporttest.New()
	n, err := SendEmergency(fake)
	require.NoError(t, err)
	require.Equal(t, FrameSize, n)
	require.Equal(t, [][]byte{{0xf0, 0x60, 0, 0, 0, 0, 0, 0}}, fake.Writes())
}

func TestAddress(t *testing.T) {
	require.Equal(t, byte(0x13), Address(SD, 3))
	require.Equal(t, SMD, ClassOf(0x25))
	require.Equal(t, "blmd", ClassName(0x31))
}
