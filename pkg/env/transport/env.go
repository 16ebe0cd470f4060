// Package transport selects the transport of a command by URL:
//
//	usb://[VID:PID[/INTERFACE]]   local adapter, hex ids
//	tcp://host:port               relay over TCP
//	ws://host:port/relay          relay over WebSocket
//	mqtt://broker:port/prefix/?relay=TYPE/ID
//	mdns:///[INSTANCE]            relay found over mDNS
package transport

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/relay"
	"github.com/robotalks/motor.go/pkg/transport"
	"github.com/robotalks/motor.go/pkg/transport/usb"
)

// SchemeUSB selects the local adapter.
const SchemeUSB = "usb"

// Config provides common options to open a transport.
type Config struct {
	// URL of the transport.
	URL string
	// WaitArrival makes I/O wait for the local adapter to be attached.
	WaitArrival bool
	// Backoff is the polling period of the local adapter.
	Backoff time.Duration
	// DialTimeout bounds connecting a relay.
	DialTimeout time.Duration
}

var defaultConfig = Config{
	URL:         SchemeUSB + "://",
	WaitArrival: true,
	Backoff:     usb.DefaultBackoff,
	DialTimeout: 5 * time.Second,
}

func init() {
	if val := os.Getenv("MOTOR_TRANSPORT"); val != "" {
		defaultConfig.URL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "transport", defaultConfig.URL, "Transport URL, usb://[VID:PID[/IFACE]] or a relay URL.")
	flag.BoolVar(&defaultConfig.WaitArrival, "wait-device", defaultConfig.WaitArrival, "Wait for the USB adapter within the I/O timeout.")
	flag.DurationVar(&defaultConfig.DialTimeout, "dial-timeout", defaultConfig.DialTimeout, "Timeout connecting a relay.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// USBDevice identifies the local adapter.
type USBDevice struct {
	VendorID  uint16
	ProductID uint16
	Interface int
}

// DefaultUSBDevice is the USB-CAN adapter.
var DefaultUSBDevice = USBDevice{
	VendorID:  usb.DefaultVendorID,
	ProductID: usb.DefaultProductID,
	Interface: usb.DefaultInterface,
}

// ParseUSB parses usb://[VID:PID[/IFACE]]. The scheme may be omitted.
func ParseUSB(s string) (USBDevice, error) {
	dev := DefaultUSBDevice
	s = strings.TrimPrefix(s, SchemeUSB+"://")
	if s == "" {
		return dev, nil
	}
	ids, iface, hasIface := strings.Cut(s, "/")
	if ids != "" {
		vid, pid, ok := strings.Cut(ids, ":")
		if !ok {
			return dev, fmt.Errorf("invalid USB device %q, VID:PID expected", s)
		}
		v, err := strconv.ParseUint(vid, 16, 16)
		if err != nil {
			return dev, fmt.Errorf("invalid vendor id %q: %w", vid, err)
		}
		p, err := strconv.ParseUint(pid, 16, 16)
		if err != nil {
			return dev, fmt.Errorf("invalid product id %q: %w", pid, err)
		}
		dev.VendorID, dev.ProductID = uint16(v), uint16(p)
	}
	if hasIface && iface != "" {
		n, err := strconv.Atoi(iface)
		if err != nil || n < 0 {
			return dev, fmt.Errorf("invalid interface %q", iface)
		}
		dev.Interface = n
	}
	return dev, nil
}

// String formats the device as a URL.
func (d USBDevice) String() string {
	return fmt.Sprintf("%s://%04x:%04x/%d", SchemeUSB, d.VendorID, d.ProductID, d.Interface)
}

// NewAttacher creates the attacher of the device.
func (d USBDevice) NewAttacher() *usb.BusAttacher {
	return usb.NewAttacher(d.VendorID, d.ProductID, d.Interface)
}

// Transport is an opened transport with the resources behind it.
type Transport struct {
	transport.Handle
	// Present reports the presence of the device, nil if unknown.
	Present func() bool

	// done is closed when the pump of the local adapter returns.
	done    chan struct{}
	closers []io.Closer
}

// Close releases the transport and the resources behind it.
func (t *Transport) Close() error {
	var errs fx.AggregatedError
	errs.Add(t.Handle.Close())
	if t.done != nil {
		<-t.done
	}
	for _, c := range t.closers {
		errs.Add(c.Close())
	}
	return errs.Aggregate()
}

// IsUSB indicates the URL selects the local adapter.
func (c *Config) IsUSB() bool {
	return c.URL == "" || strings.HasPrefix(c.URL, SchemeUSB+":")
}

// NewTransport opens the transport using current config. The pump of
// the local adapter runs until ctx is done or the transport is closed.
func (c *Config) NewTransport(ctx context.Context) (*Transport, error) {
	if c.IsUSB() {
		dev, err := ParseUSB(c.URL)
		if err != nil {
			return nil, err
		}
		attacher := dev.NewAttacher()
		return c.newHotplug(ctx, attacher, attacher), nil
	}
	if _, err := url.Parse(c.URL); err != nil {
		return nil, fmt.Errorf("invalid transport URL: %w", err)
	}
	dialCtx := ctx
	if c.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.DialTimeout)
		defer cancel()
	}
	client, err := relay.Dial(dialCtx, c.URL)
	if err != nil {
		return nil, err
	}
	return &Transport{Handle: client, Present: client.Present}, nil
}

// newHotplug starts the pump of a. The attacher is released by Close
// after the pump returns.
func (c *Config) newHotplug(ctx context.Context, a usb.Attacher, release io.Closer) *Transport {
	hotplug := usb.NewHotplug(a)
	hotplug.WaitArrival = c.WaitArrival
	if c.Backoff > 0 {
		hotplug.Backoff = c.Backoff
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := hotplug.Run(ctx); err != nil && err != context.Canceled {
			glog.Warningf("usb hotplug stopped: %v", err)
		}
	}()
	return &Transport{
		Handle:  hotplug,
		Present: hotplug.Present,
		done:    done,
		closers: []io.Closer{release},
	}
}

// MustNewTransport opens the transport and fails on error.
func (c *Config) MustNewTransport(ctx context.Context) *Transport {
	t, err := c.NewTransport(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return t
}
