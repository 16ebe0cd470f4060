package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriterEcho(t *testing.T) {
	srv := httptest.NewServer(Handler(func(rw *ReadWriter) {
		for {
			pkt, err := rw.ReadPacket()
			if err != nil {
				return
			}
			if err = rw.WritePacket(append(pkt, 0xff)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rw, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http") + "/relay")
	require.NoError(t, err)
	defer rw.Close()
	require.NoError(t, rw.WritePacket([]byte{0x30, 0x00, 0x01}))
	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{0x30, 0x00, 0x01, 0xff}, pkt)
}

func TestOriginOf(t *testing.T) {
	require.Equal(t, "http://host:1234/relay", originOf("ws://host:1234/relay"))
	require.Equal(t, "https://host/relay", originOf("wss://host/relay"))
}
