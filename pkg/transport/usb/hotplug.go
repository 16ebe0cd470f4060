package usb

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/transport"
)

// DefaultBackoff is the polling period of the hotplug pump.
const DefaultBackoff = time.Second

// Hotplug is a Transport following the attach/detach of a device.
// The handle is absent while the device is detached. I/O on an absent
// handle waits for the next arrival within the timeout of the operation,
// or fails immediately if WaitArrival is false.
type Hotplug struct {
	Attacher    Attacher
	Backoff     time.Duration
	WaitArrival bool
	// OnChange is invoked after the presence changes.
	OnChange func(present bool)

	lock    sync.Mutex
	handle  transport.Handle
	arrived chan struct{}
	done    chan struct{}
	closed  bool
}

// NewHotplug creates a Hotplug with the device absent.
func NewHotplug(a Attacher) *Hotplug {
	return &Hotplug{
		Attacher:    a,
		Backoff:     DefaultBackoff,
		WaitArrival: true,
		arrived:     make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Present indicates the device is attached.
func (h *Hotplug) Present() bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.handle != nil
}

// Arrive stores the handle of an attached device.
func (h *Hotplug) Arrive(handle transport.Handle) {
	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		handle.Close()
		return
	}
	old := h.handle
	h.handle = handle
	if old == nil {
		close(h.arrived)
	}
	h.lock.Unlock()
	if old != nil {
		old.Close()
		return
	}
	h.notify(true)
}

// Depart clears the handle after the device detached.
func (h *Hotplug) Depart() {
	h.depart(nil)
}

func (h *Hotplug) depart(expected transport.Handle) {
	h.lock.Lock()
	old := h.handle
	if old == nil || (expected != nil && old != expected) {
		h.lock.Unlock()
		return
	}
	h.handle, h.arrived = nil, make(chan struct{})
	h.lock.Unlock()
	old.Close()
	h.notify(false)
}

func (h *Hotplug) notify(present bool) {
	if fn := h.OnChange; fn != nil {
		fn(present)
	}
}

func (h *Hotplug) acquire(timeout time.Duration) (transport.Handle, error) {
	var timer *time.Timer
	for {
		h.lock.Lock()
		handle, arrived, closed := h.handle, h.arrived, h.closed
		h.lock.Unlock()
		if handle != nil {
			return handle, nil
		}
		if closed || !h.WaitArrival {
			return nil, transport.ErrTransportNotFound
		}
		if timer == nil {
			timer = time.NewTimer(timeout)
			defer timer.Stop()
		}
		select {
		case <-arrived:
		case <-h.done:
			return nil, transport.ErrTransportNotFound
		case <-timer.C:
			return nil, transport.ErrTransportNotFound
		}
	}
}

// WriteBulk implements Transport.
func (h *Hotplug) WriteBulk(frame []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("write", timeout); err != nil {
		return 0, err
	}
	handle, err := h.acquire(timeout)
	if err != nil {
		return 0, err
	}
	n, err := handle.WriteBulk(frame, timeout)
	return n, h.checkErr(handle, err)
}

// ReadBulk implements Transport.
func (h *Hotplug) ReadBulk(buf []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("read", timeout); err != nil {
		return 0, err
	}
	handle, err := h.acquire(timeout)
	if err != nil {
		return 0, err
	}
	n, err := handle.ReadBulk(buf, timeout)
	return n, h.checkErr(handle, err)
}

func (h *Hotplug) checkErr(handle transport.Handle, err error) error {
	if err != nil && IsNoDevice(err) {
		glog.Warningf("device lost: %v", err)
		h.depart(handle)
		return transport.ErrTransportNotFound
	}
	return err
}

// Run pumps attach/detach events until ctx is done: while absent it
// retries attaching, while present it checks the bus, both every Backoff.
func (h *Hotplug) Run(ctx context.Context) error {
	defer h.Depart()
	backoff := h.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	ticker := time.NewTicker(backoff)
	defer ticker.Stop()
	for {
		h.poll()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.done:
			return nil
		case <-ticker.C:
		}
	}
}

func (h *Hotplug) poll() {
	if h.Present() {
		if !h.Attacher.Attached() {
			glog.Info("device departed")
			h.Depart()
		}
		return
	}
	handle, err := h.Attacher.Attach()
	switch {
	case err == nil:
		glog.Info("device arrived")
		h.Arrive(handle)
	case err == transport.ErrTransportNotFound:
		glog.V(2).Info("device not attached")
	default:
		glog.Warningf("attach device error: %v", err)
	}
}

// Close releases the handle and stops the pump.
func (h *Hotplug) Close() error {
	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)
	h.lock.Unlock()
	h.Depart()
	return nil
}
