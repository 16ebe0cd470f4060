package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/transport"
)

func TestParseUSB(t *testing.T) {
	cases := []struct {
		in  string
		out USBDevice
	}{
		{"", DefaultUSBDevice},
		{"usb://", DefaultUSBDevice},
		{"usb://1234:abcd", USBDevice{VendorID: 0x1234, ProductID: 0xabcd, Interface: DefaultUSBDevice.Interface}},
		{"usb://1234:abcd/0", USBDevice{VendorID: 0x1234, ProductID: 0xabcd}},
		{"0483:5740/2", USBDevice{VendorID: 0x0483, ProductID: 0x5740, Interface: 2}},
		{"usb:///3", USBDevice{VendorID: DefaultUSBDevice.VendorID, ProductID: DefaultUSBDevice.ProductID, Interface: 3}},
	}
	for _, c := range cases {
		dev, err := ParseUSB(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.out, dev, c.in)
	}
	for _, in := range []string{"usb://1234", "usb://xyz:1", "usb://1:10000", "usb://1:2/a", "usb://1:2/-1"} {
		_, err := ParseUSB(in)
		require.Error(t, err, in)
	}
}

func TestUSBDeviceString(t *testing.T) {
	require.Equal(t, "usb://0483:5740/1", DefaultUSBDevice.String())
	dev, err := ParseUSB(DefaultUSBDevice.String())
	require.NoError(t, err)
	require.Equal(t, DefaultUSBDevice, dev)
}

func TestConfigIsUSB(t *testing.T) {
	conf := NewConfig()
	conf.URL = ""
	require.True(t, conf.IsUSB())
	conf.URL = "usb://0483:5740"
	require.True(t, conf.IsUSB())
	conf.URL = "tcp://127.0.0.1:50051"
	require.False(t, conf.IsUSB())
}

func TestNewTransportRelayUnreachable(t *testing.T) {
	conf := NewConfig()
	conf.URL = "tcp://127.0.0.1:1"
	_, err := conf.NewTransport(context.Background())
	require.True(t, transport.IsRemoteCallError(err))
}

func TestNewTransportUnsupportedScheme(t *testing.T) {
	conf := NewConfig()
	conf.URL = "serial:///dev/ttyUSB0"
	_, err := conf.NewTransport(context.Background())
	require.Error(t, err)
}

// blockingAttacher holds the first Attach until released.
type blockingAttacher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newBlockingAttacher() *blockingAttacher {
	return &blockingAttacher{entered: make(chan struct{}), release: make(chan struct{})}
}

func (a *blockingAttacher) Attach() (transport.Handle, error) {
	a.calls.Add(1)
	a.once.Do(func() { close(a.entered) })
	<-a.release
	return nil, transport.ErrTransportNotFound
}

func (a *blockingAttacher) Attached() bool { return false }

type recordingCloser struct {
	closed atomic.Bool
}

func (c *recordingCloser) Close() error {
	c.closed.Store(true)
	return nil
}

func TestCloseWaitsForPump(t *testing.T) {
	attacher, released := newBlockingAttacher(), &recordingCloser{}
	tr := NewConfig().newHotplug(context.Background(), attacher, released)
	<-attacher.entered

	closed := make(chan error, 1)
	go func() { closed <- tr.Close() }()
	select {
	case <-closed:
		t.Fatal("Close returned while the pump was attaching")
	case <-time.After(50 * time.Millisecond):
	}
	require.False(t, released.closed.Load())

	close(attacher.release)
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close not returned")
	}
	require.True(t, released.closed.Load())
	require.EqualValues(t, 1, attacher.calls.Load())
}

func TestCloseAfterCanceledPump(t *testing.T) {
	attacher, released := newBlockingAttacher(), &recordingCloser{}
	close(attacher.release)
	ctx, cancel := context.WithCancel(context.Background())
	tr := NewConfig().newHotplug(ctx, attacher, released)
	<-attacher.entered
	cancel()
	require.NoError(t, tr.Close())
	require.True(t, released.closed.Load())
}
