// Package transporttest provides a scripted Transport for tests.
package transporttest

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/motor.go/pkg/transport"
)

// Fake replays injected reads and records writes.
// Reading with nothing injected fails like a timed out transfer.
type Fake struct {
	// WriteErr fails every write when set.
	WriteErr error

	lock   sync.Mutex
	reads  []read
	writes [][]byte
	closed bool
}

type read struct {
	data []byte
	err  error
}

// New creates a Fake.
func New() *Fake {
	return &Fake{}
}

// Inject queues data returned by subsequent reads, one read each.
func (f *Fake) Inject(data ...[]byte) *Fake {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, d := range data {
		f.reads = append(f.reads, read{data: append([]byte(nil), d...)})
	}
	return f
}

// InjectErr queues an error returned by a subsequent read.
func (f *Fake) InjectErr(err error) *Fake {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.reads = append(f.reads, read{err: err})
	return f
}

// Writes returns the recorded writes.
func (f *Fake) Writes() [][]byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([][]byte(nil), f.writes...)
}

// Pending returns the count of injected reads not consumed yet.
func (f *Fake) Pending() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.reads)
}

// Closed indicates Close was called.
func (f *Fake) Closed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.closed
}

// WriteBulk implements Transport.
func (f *Fake) WriteBulk(frame []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("write", timeout); err != nil {
		return 0, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	f.writes = append(f.writes, append([]byte(nil), frame...))
	return len(frame), nil
}

// ReadBulk implements Transport.
func (f *Fake) ReadBulk(buf []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("read", timeout); err != nil {
		return 0, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.reads) == 0 {
		return 0, &transport.IOError{Op: "read", Err: context.DeadlineExceeded}
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	if r.err != nil {
		return 0, r.err
	}
	return copy(buf, r.data), nil
}

// Close implements io.Closer.
func (f *Fake) Close() error {
	f.lock.Lock()
	f.closed = true
	f.lock.Unlock()
	return nil
}
