package sm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

func TestSendData(t *testing.T) {
	fake := transporttest.New()
	_, err := SendData(fake, 0x02, []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x52, 0x60, 0x01, 1, 2, 3, 0, 0}}, fake.Writes())

	_, err = SendData(fake, 0x02, make([]byte, 6))
	require.ErrorIs(t, err, ErrDataTooLong)
	require.Len(t, fake.Writes(), 1)
}

func TestSendStatus(t *testing.T) {
	fake := transporttest.New().Inject(
		[]byte{0x52, 0x60, 0x00, 9, 9, 9, 9, 9},
		[]byte{0x52, 0x00, 0x01, 9, 9, 9, 9, 9},
		[]byte{0x52, 0x00, 0x00, 7, 1, 2, 3, 4},
	)
	status, err := SendStatus(fake, 0x02)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x52, 0x60, 0x00, 0, 0, 0, 0, 0}}, fake.Writes())
	require.Equal(t, &Status{Address: 0x52, TypeNum: 7, Data: [4]byte{1, 2, 3, 4}}, status)
}
