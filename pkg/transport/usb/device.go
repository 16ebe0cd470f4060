// Package usb implements the local bus transport on top of libusb.
package usb

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"

	"github.com/robotalks/motor.go/pkg/transport"
)

// Default identifiers of the USB-CAN adapter.
const (
	DefaultVendorID  uint16 = 0x0483
	DefaultProductID uint16 = 0x5740
	DefaultInterface        = 1
)

// Endpoint is the bulk endpoint number used in both directions.
const Endpoint = 1

// ErrDeviceNotFound indicates no attached device matches.
var ErrDeviceNotFound = transport.ErrTransportNotFound

// Device is an opened adapter with its interface claimed.
type Device struct {
	VendorID  uint16
	ProductID uint16
	Interface int

	ctx    *gousb.Context
	ownCtx bool
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface
	in     *gousb.InEndpoint
	out    *gousb.OutEndpoint

	lock   sync.Mutex
	closed bool
}

// Open opens the first device matching vid:pid and claims iface.
func Open(vid, pid uint16, iface int) (*Device, error) {
	ctx := gousb.NewContext()
	d, err := OpenWith(ctx, vid, pid, iface)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	d.ownCtx = true
	return d, nil
}

// OpenWith opens the device using an existing libusb context.
func OpenWith(ctx *gousb.Context, vid, pid uint16, iface int) (*Device, error) {
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		if dev != nil {
			dev.Close()
		}
		return nil, &transport.IOError{Op: "open", Err: err}
	}
	if dev == nil {
		return nil, ErrDeviceNotFound
	}
	if err = dev.SetAutoDetach(true); err != nil {
		glog.V(2).Infof("auto detach kernel driver: %v", err)
	}
	d := &Device{VendorID: vid, ProductID: pid, Interface: iface, ctx: ctx, dev: dev}
	if err = d.claim(); err != nil {
		d.release()
		return nil, &transport.IOError{Op: "claim", Err: err}
	}
	return d, nil
}

func (d *Device) claim() (err error) {
	num, err := d.dev.ActiveConfigNum()
	if err != nil {
		return err
	}
	if d.cfg, err = d.dev.Config(num); err != nil {
		return err
	}
	if d.intf, err = d.cfg.Interface(d.Interface, 0); err != nil {
		return err
	}
	if d.in, err = d.intf.InEndpoint(Endpoint); err != nil {
		return err
	}
	d.out, err = d.intf.OutEndpoint(Endpoint)
	return err
}

func (d *Device) release() {
	if d.intf != nil {
		d.intf.Close()
	}
	if d.cfg != nil {
		d.cfg.Close()
	}
	d.dev.Close()
	d.intf, d.cfg, d.in, d.out = nil, nil, nil, nil
}

// WriteBulk implements Transport.
func (d *Device) WriteBulk(frame []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("write", timeout); err != nil {
		return 0, err
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return 0, transport.ErrTransportNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := d.out.WriteContext(ctx, frame)
	if err != nil {
		return n, ioError(ctx, "write", err)
	}
	return n, nil
}

// ReadBulk implements Transport.
func (d *Device) ReadBulk(buf []byte, timeout time.Duration) (int, error) {
	if err := transport.CheckTimeout("read", timeout); err != nil {
		return 0, err
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return 0, transport.ErrTransportNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := d.in.ReadContext(ctx, buf)
	if err != nil {
		return n, ioError(ctx, "read", err)
	}
	return n, nil
}

// Close releases the interface and the device.
func (d *Device) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.release()
	if d.ownCtx {
		return d.ctx.Close()
	}
	return nil
}

// IsNoDevice determines if err indicates the device is gone.
func IsNoDevice(err error) bool {
	return errors.Is(err, gousb.ErrorNoDevice) ||
		errors.Is(err, gousb.TransferNoDevice) ||
		errors.Is(err, transport.ErrTransportNotFound)
}

func ioError(ctx context.Context, op string, err error) error {
	if !IsNoDevice(err) && ctx.Err() == context.DeadlineExceeded {
		err = context.DeadlineExceeded
	}
	return &transport.IOError{Op: op, Err: err}
}
