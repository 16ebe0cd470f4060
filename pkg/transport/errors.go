package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportNotFound indicates the device is absent.
	ErrTransportNotFound = errors.New("transport not found")
	// ErrNotAvailable is reported by a relay whose downstream device is
	// disconnected.
	ErrNotAvailable = errors.New("device not available")
	// ErrLengthMismatch indicates the received payload doesn't fit the
	// caller's buffer exactly.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrInvalidTimeout indicates a bulk operation without a positive timeout.
	ErrInvalidTimeout = errors.New("timeout required")
)

// IOError wraps failures of the low-level bulk operations, including timeouts.
type IOError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s bulk: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// RemoteCallError wraps a failed relay round trip or a fault
// reported by the relay.
type RemoteCallError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// IsIOError determines if err is an IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// IsRemoteCallError determines if err is a RemoteCallError.
func IsRemoteCallError(err error) bool {
	var rcErr *RemoteCallError
	return errors.As(err, &rcErr)
}
