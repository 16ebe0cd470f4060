// Package websocket carries packets as binary WebSocket messages.
package websocket

import (
	"net/http"

	"golang.org/x/net/websocket"
)

// ReadWriter implements PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a WebSocket endpoint, e.g. ws://host:port/relay.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", originOf(url))
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Handler creates an http.Handler serving each connection with fn.
// The connection is closed when fn returns.
func Handler(fn func(*ReadWriter)) http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			conn.PayloadType = websocket.BinaryFrame
			fn(New(conn))
		},
	}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// RemoteAddr returns the address of the peer.
func (p *ReadWriter) RemoteAddr() string {
	conn := (*websocket.Conn)(p)
	if req := conn.Request(); req != nil {
		return req.RemoteAddr
	}
	return conn.RemoteAddr().String()
}

func originOf(url string) string {
	switch {
	case len(url) > 5 && url[:5] == "wss:/":
		return "https:/" + url[5:]
	case len(url) > 4 && url[:4] == "ws:/":
		return "http:/" + url[4:]
	}
	return url
}
