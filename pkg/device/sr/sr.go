// Package sr implements the protocol of the signal ring.
// The ring doesn't report status, commands are only written.
package sr

import (
	"math"

	"github.com/robotalks/motor.go/pkg/device"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Modes
const (
	ModeStatus byte = 0
	ModeStop   byte = 1
	ModeStart  byte = 2
	ModeColor  byte = 3
)

// FreqScale is the number of wire units per Hz.
const FreqScale = 4

// Color of the ring.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

func command(mode byte) device.Frame {
	return device.NewFrame(device.SR, device.Master, mode)
}

// SendStop stops the ring.
func SendStop(t transport.Transport) (int, error) {
	return device.Send(t, command(ModeStop))
}

// SendStart starts the ring.
func SendStart(t transport.Transport) (int, error) {
	return device.Send(t, command(ModeStart))
}

// SendColor sets the color and blinking frequency in Hz.
func SendColor(t transport.Transport, c Color, freq float32) (int, error) {
	f := command(ModeColor)
	f[4], f[5], f[6] = c.Green, c.Red, c.Blue
	f[7] = freqByte(freq)
	return device.Send(t, f)
}

func freqByte(freq float32) byte {
	v := float64(freq) * FreqScale
	// NaN fails every comparison.
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxUint8 {
		return math.MaxUint8
	}
	return byte(v)
}
