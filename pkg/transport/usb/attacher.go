package usb

import (
	"github.com/golang/glog"
	"github.com/google/gousb"

	"github.com/robotalks/motor.go/pkg/transport"
)

// Attacher opens the device and checks whether it's attached.
type Attacher interface {
	Attach() (transport.Handle, error)
	Attached() bool
}

// BusAttacher attaches a device by vendor and product id.
type BusAttacher struct {
	VendorID  uint16
	ProductID uint16
	Interface int

	ctx *gousb.Context
}

// NewAttacher creates a BusAttacher with its own libusb context.
func NewAttacher(vid, pid uint16, iface int) *BusAttacher {
	return &BusAttacher{
		VendorID:  vid,
		ProductID: pid,
		Interface: iface,
		ctx:       gousb.NewContext(),
	}
}

// Attach implements Attacher.
func (a *BusAttacher) Attach() (transport.Handle, error) {
	return OpenWith(a.ctx, a.VendorID, a.ProductID, a.Interface)
}

// Attached implements Attacher by enumerating the descriptors without
// opening any device.
func (a *BusAttacher) Attached() bool {
	var found bool
	devs, err := a.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if uint16(desc.Vendor) == a.VendorID && uint16(desc.Product) == a.ProductID {
			found = true
		}
		return false
	})
	for _, dev := range devs {
		dev.Close()
	}
	if err != nil {
		glog.V(2).Infof("enumerate devices: %v", err)
	}
	return found
}

// Close releases the libusb context.
func (a *BusAttacher) Close() error {
	return a.ctx.Close()
}
