// Package commtest provides in-memory PacketReadWriters for tests.
package commtest

import (
	"io"
	"sync"
)

// ChanReadWriter is one end of an in-memory packet pipe.
type ChanReadWriter struct {
	readCh   <-chan []byte
	writeCh  chan<- []byte
	done     chan struct{}
	peerDone <-chan struct{}
	once     sync.Once
}

// Pair creates two connected ends.
func Pair() (*ChanReadWriter, *ChanReadWriter) {
	ch1, ch2 := make(chan []byte, 16), make(chan []byte, 16)
	done1, done2 := make(chan struct{}), make(chan struct{})
	return &ChanReadWriter{readCh: ch1, writeCh: ch2, done: done1, peerDone: done2},
		&ChanReadWriter{readCh: ch2, writeCh: ch1, done: done2, peerDone: done1}
}

// ReadPacket implements PacketReader.
func (c *ChanReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-c.readCh:
		return pkt, nil
	case <-c.done:
		return nil, io.EOF
	case <-c.peerDone:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (c *ChanReadWriter) WritePacket(pkt []byte) error {
	select {
	case <-c.done:
		return io.ErrClosedPipe
	case <-c.peerDone:
		return io.ErrClosedPipe
	default:
	}
	select {
	case c.writeCh <- append([]byte(nil), pkt...):
		return nil
	case <-c.done:
		return io.ErrClosedPipe
	case <-c.peerDone:
		return io.ErrClosedPipe
	}
}

// Close implements io.Closer.
func (c *ChanReadWriter) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}
