// Package sm implements the protocol of the SM data modules.
package sm

import (
	"errors"

	"github.com/robotalks/motor.go/pkg/device"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Modes
const (
	ModeStatus byte = 0
	ModeData   byte = 1
)

// MaxData is the payload capacity of a data frame.
const MaxData = device.FrameSize - 3

// ErrDataTooLong indicates the payload doesn't fit in one frame.
var ErrDataTooLong = errors.New("data too long")

// Status is decoded from a status frame.
type Status struct {
	Address byte    `json:"address"`
	TypeNum byte    `json:"type_num"`
	Data    [4]byte `json:"data"`
}

// SendData writes up to MaxData bytes to the module. Modules don't
// acknowledge data frames.
func SendData(t transport.Transport, addr byte, data []byte) (int, error) {
	if len(data) > MaxData {
		return 0, ErrDataTooLong
	}
	f := device.NewFrame(addr|device.SM, device.Master, ModeData)
	copy(f[3:], data)
	return device.Send(t, f)
}

// SendStatus requests the status of the module.
func SendStatus(t transport.Transport, addr byte) (*Status, error) {
	if _, err := device.Send(t, device.NewFrame(addr|device.SM, device.Master, ModeStatus)); err != nil {
		return nil, err
	}
	return ReceiveStatus(t, addr)
}

// ReceiveStatus waits for the status frame of the module.
func ReceiveStatus(t transport.Transport, addr byte) (*Status, error) {
	addr |= device.SM
	f, err := device.Receive(t, func(f device.Frame) bool {
		return f.Address() == addr && f.SemiID() == 0 && f.Mode() == ModeStatus
	})
	if err != nil {
		return nil, err
	}
	s := &Status{Address: f[0], TypeNum: f[3]}
	copy(s.Data[:], f[4:])
	return s, nil
}
