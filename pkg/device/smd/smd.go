// Package smd implements the protocol of the servo driver.
package smd

import (
	"github.com/robotalks/motor.go/pkg/device"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Modes
const (
	ModeStatus byte = 0
	ModeAngle  byte = 1
	ModeAngles byte = 2
)

// Status is decoded from a status frame.
type Status struct {
	Address byte  `json:"address"`
	SemiID  byte  `json:"semi_id"`
	Angle0  int16 `json:"angle_0"`
	Angle1  int16 `json:"angle_1"`
}

func command(addr, mode byte) device.Frame {
	return device.NewFrame(addr|device.SMD, device.Master, mode)
}

func exchange(t transport.Transport, addr byte, f device.Frame) (*Status, error) {
	if _, err := device.Send(t, f); err != nil {
		return nil, err
	}
	return ReceiveStatus(t, addr)
}

// SendAngle moves the servo on port. Servo angles are magnitudes, the
// byte usually holding the sign selects the port.
func SendAngle(t transport.Transport, addr, port byte, angle uint16) (*Status, error) {
	f := command(addr, ModeAngle)
	f[3] = port
	f.PutUint16(4, angle)
	return exchange(t, addr, f)
}

// SendAngles moves both servos.
func SendAngles(t transport.Transport, addr byte, angle0, angle1 uint16) (*Status, error) {
	f := command(addr, ModeAngles)
	f.PutUint16(4, angle0)
	f.PutUint16(6, angle1)
	return exchange(t, addr, f)
}

// RequestStatus asks the driver to report its status.
func RequestStatus(t transport.Transport, addr byte) (*Status, error) {
	return exchange(t, addr, command(addr, ModeStatus))
}

// ReceiveStatus waits for the status frame from addr.
func ReceiveStatus(t transport.Transport, addr byte) (*Status, error) {
	f, err := device.Receive(t, device.MatchAddress(addr|device.SMD))
	if err != nil {
		return nil, err
	}
	return &Status{
		Address: f[0],
		SemiID:  f[1],
		Angle0:  f.Int16(2),
		Angle1:  f.Int16(4),
	}, nil
}
