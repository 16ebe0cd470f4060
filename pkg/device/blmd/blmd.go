// Package blmd implements the protocol of the brushless motor driver.
//
// Unlike the other drivers, status frames are identified by the 16-bit
// standard id 0x200+controller id spread over the first two bytes.
package blmd

import (
	"time"

	"github.com/robotalks/motor.go/pkg/device"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Modes
const (
	ModeInit     byte = 0
	ModeStatus   byte = 1
	ModeCurrent  byte = 2
	ModeVelocity byte = 3
	ModeAngle    byte = 4
)

// StatusIDBase is added to the controller id to form the status id.
const StatusIDBase uint16 = 0x200

// Status is decoded from a status frame.
type Status struct {
	StdID   uint16 `json:"std_id"`
	Angle   int16  `json:"angle"`
	Speed   int16  `json:"speed"`
	Current int16  `json:"current"`
}

// Controller computes the next output from the target and measured speed.
type Controller interface {
	Update(target, measured, dt float64) float64
}

// StatusID returns the id of status frames from controller id.
func StatusID(id byte) uint16 {
	return StatusIDBase + uint16(id)
}

// SendCurrent sets the drive current of controller id.
func SendCurrent(t transport.Transport, id byte, current int16) (*Status, error) {
	f := device.Frame{device.BLMD, 0, id}
	f.PutInt16(3, current)
	if _, err := device.Send(t, f); err != nil {
		return nil, err
	}
	return ReceiveStatus(t, id)
}

// SendVelocity runs one control step: reads the measured speed, updates
// ctl with period dt and sends the resulting current. A failed status
// read is returned as is, leaving the retry decision to the caller.
func SendVelocity(t transport.Transport, ctl Controller, id byte, velocity int16, dt time.Duration) (*Status, error) {
	status, err := ReceiveStatus(t, id)
	if err != nil {
		return nil, err
	}
	output := ctl.Update(float64(velocity), float64(status.Speed), dt.Seconds())
	return SendCurrent(t, id, device.Clamp16(int(output)))
}

// ReceiveStatus waits for the status frame of controller id.
func ReceiveStatus(t transport.Transport, id byte) (*Status, error) {
	stdID := StatusID(id)
	f, err := device.Receive(t, func(f device.Frame) bool {
		return f.Uint16(0) == stdID
	})
	if err != nil {
		return nil, err
	}
	return &Status{
		StdID:   f.Uint16(0),
		Angle:   f.Int16(2),
		Speed:   f.Int16(4),
		Current: f.Int16(6),
	}, nil
}
