// Package md implements the protocol of the PWM/current motor driver.
package md

import (
	"github.com/robotalks/motor.go/pkg/device"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Modes
const (
	ModeInit        byte = 0
	ModeStatus      byte = 1
	ModePWM         byte = 2
	ModeSpeed       byte = 3
	ModeAngle       byte = 4
	ModeLimitSwitch byte = 5
)

// Status is decoded from a status frame.
type Status struct {
	Address      byte  `json:"address"`
	SemiID       byte  `json:"semi_id"`
	Angle        int16 `json:"angle"`
	Speed        int   `json:"speed"`
	LimitSwitch0 bool  `json:"limit_switch_0"`
	LimitSwitch1 bool  `json:"limit_switch_1"`
}

func command(addr, mode byte) device.Frame {
	return device.NewFrame(addr, device.Master, mode)
}

func signed(addr, mode byte, v int16) device.Frame {
	f := command(addr, mode)
	f.PutSignMagnitude(3, 4, v)
	return f
}

func exchange(t transport.Transport, f device.Frame) (*Status, error) {
	if _, err := device.Send(t, f); err != nil {
		return nil, err
	}
	return ReceiveStatus(t, f.Address())
}

// SendPWM sets the PWM duty of the driver.
func SendPWM(t transport.Transport, addr byte, power int16) (*Status, error) {
	return exchange(t, signed(addr, ModePWM, power))
}

// SendSpeed sets the rotation speed in rpm. Zero speed stops the motor
// with a zero duty instead.
func SendSpeed(t transport.Transport, addr byte, rpm int16) (*Status, error) {
	if rpm == 0 {
		return SendPWM(t, addr, 0)
	}
	return exchange(t, signed(addr, ModeSpeed, device.Clamp16(device.RPMToCount(int(rpm)))))
}

// SendAngle sets the target angle.
func SendAngle(t transport.Transport, addr byte, angle int16) (*Status, error) {
	return exchange(t, signed(addr, ModeAngle, angle))
}

// SendLimitSwitch sets the duty used on port before and after its limit
// switch is pressed.
func SendLimitSwitch(t transport.Transport, addr, port byte, power, afterPower int16) (*Status, error) {
	f := command(addr, ModeLimitSwitch)
	f[3] = port
	f.PutInt16(4, power)
	f.PutInt16(6, afterPower)
	return exchange(t, f)
}

// SendInit resets the driver.
func SendInit(t transport.Transport, addr byte) (*Status, error) {
	return exchange(t, command(addr, ModeInit))
}

// RequestStatus asks the driver to report its status.
func RequestStatus(t transport.Transport, addr byte) (*Status, error) {
	return exchange(t, command(addr, ModeStatus))
}

// ReceiveStatus waits for the status frame from addr.
func ReceiveStatus(t transport.Transport, addr byte) (*Status, error) {
	f, err := device.Receive(t, device.MatchAddress(addr))
	if err != nil {
		return nil, err
	}
	return &Status{
		Address:      f[0],
		SemiID:       f[1],
		Angle:        f.Int16(2),
		Speed:        device.CountToRPM(int(f.Int16(4))),
		LimitSwitch0: f[6] == 1,
		LimitSwitch1: f[7] == 1,
	}, nil
}
