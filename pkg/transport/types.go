// Package transport defines the bulk-transfer capability shared by the local
// USB adapter and the remote relay.
package transport

import (
	"io"
	"time"
)

// Transport moves frames with blocking bulk transfers.
// Every call carries a timeout which must be positive.
type Transport interface {
	// WriteBulk writes frame and returns the number of bytes written.
	WriteBulk(frame []byte, timeout time.Duration) (int, error)
	// ReadBulk reads into buf and returns the number of bytes read.
	ReadBulk(buf []byte, timeout time.Duration) (int, error)
}

// Handle is a Transport owning a releasable resource.
type Handle interface {
	Transport
	io.Closer
}

// CheckTimeout validates the timeout of a bulk operation.
func CheckTimeout(op string, timeout time.Duration) error {
	if timeout <= 0 {
		return &IOError{Op: op, Err: ErrInvalidTimeout}
	}
	return nil
}
