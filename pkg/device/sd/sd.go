// Package sd implements the protocol of the solenoid driver.
package sd

import (
	"github.com/robotalks/motor.go/pkg/device"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Modes
const (
	ModeStatus      byte = 0
	ModePower       byte = 1
	ModeLimitSwitch byte = 2
	ModeSinglePower byte = 3
)

// Status is decoded from a status frame.
type Status struct {
	Address      byte  `json:"address"`
	SemiID       byte  `json:"semi_id"`
	Port0        int16 `json:"port_0"`
	Port1        int16 `json:"port_1"`
	LimitSwitch0 bool  `json:"limit_switch_0"`
	LimitSwitch1 bool  `json:"limit_switch_1"`
}

func command(addr, mode byte) device.Frame {
	return device.NewFrame(addr|device.SD, device.Master, mode)
}

func exchange(t transport.Transport, addr byte, f device.Frame) (*Status, error) {
	if _, err := device.Send(t, f); err != nil {
		return nil, err
	}
	return ReceiveStatus(t, addr)
}

// SendPower drives a single port.
func SendPower(t transport.Transport, addr, port byte, power int16) (*Status, error) {
	f := command(addr, ModeSinglePower)
	f[3] = port
	f.PutInt16(4, power)
	return exchange(t, addr, f)
}

// SendPowers drives both ports.
func SendPowers(t transport.Transport, addr byte, power0, power1 int16) (*Status, error) {
	f := command(addr, ModePower)
	f.PutInt16(4, power0)
	f.PutInt16(6, power1)
	return exchange(t, addr, f)
}

// SendLimitSwitch sets the power used on port before and after its limit
// switch is pressed.
func SendLimitSwitch(t transport.Transport, addr, port byte, power, afterPower int16) (*Status, error) {
	f := command(addr, ModeLimitSwitch)
	f[3] = port
	f.PutInt16(4, power)
	f.PutInt16(6, afterPower)
	return exchange(t, addr, f)
}

// RequestStatus asks the driver to report its status.
func RequestStatus(t transport.Transport, addr byte) (*Status, error) {
	return exchange(t, addr, command(addr, ModeStatus))
}

// ReceiveStatus waits for the status frame from addr.
func ReceiveStatus(t transport.Transport, addr byte) (*Status, error) {
	f, err := device.Receive(t, device.MatchAddress(addr|device.SD))
	if err != nil {
		return nil, err
	}
	return &Status{
		Address:      f[0],
		SemiID:       f[1],
		Port0:        f.Int16(2),
		Port1:        f.Int16(4),
		LimitSwitch0: f[6] == 1,
		LimitSwitch1: f[7] == 1,
	}, nil
}
