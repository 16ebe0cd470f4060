package device

import "fmt"

// FrameSize is the size of every frame on the bus.
const FrameSize = 8

// Frame is the unit exchanged on the bus.
type Frame [FrameSize]byte

// NewFrame builds a frame with the common header.
func NewFrame(addr, semiID, mode byte) Frame {
	return Frame{addr, semiID, mode}
}

// Header field offsets.
const (
	OffsetAddress = 0
	OffsetSemiID  = 1
	OffsetMode    = 2
)

// Address returns the leading address byte.
func (f Frame) Address() byte {
	return f[OffsetAddress]
}

// SemiID returns the second byte.
func (f Frame) SemiID() byte {
	return f[OffsetSemiID]
}

// Mode returns the mode byte.
func (f Frame) Mode() byte {
	return f[OffsetMode]
}

// String formats the frame as hex bytes.
func (f Frame) String() string {
	return fmt.Sprintf("% X", f[:])
}

// PutInt16 places v at offset as big-endian two's complement.
func (f *Frame) PutInt16(offset int, v int16) {
	f.PutUint16(offset, uint16(v))
}

// PutUint16 places v at offset as big-endian.
func (f *Frame) PutUint16(offset int, v uint16) {
	f[offset] = byte(v >> 8)
	f[offset+1] = byte(v)
}

// Int16 reads a big-endian two's complement value at offset.
func (f Frame) Int16(offset int) int16 {
	return int16(f.Uint16(offset))
}

// Uint16 reads a big-endian value at offset.
func (f Frame) Uint16(offset int) uint16 {
	return uint16(f[offset])<<8 | uint16(f[offset+1])
}

// PutSignMagnitude places the sign of v at signOffset and its
// magnitude at magOffset.
func (f *Frame) PutSignMagnitude(signOffset, magOffset int, v int16) {
	sign, mag := SignMagnitude(v)
	f[signOffset] = sign
	f.PutUint16(magOffset, mag)
}

// SignMagnitudeAt decodes a value placed by PutSignMagnitude.
func (f Frame) SignMagnitudeAt(signOffset, magOffset int) int16 {
	return FromSignMagnitude(f[signOffset], f.Uint16(magOffset))
}
