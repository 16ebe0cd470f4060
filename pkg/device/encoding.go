package device

import "math"

// Sign byte values of the sign-magnitude encoding.
const (
	SignPositive byte = 0
	SignNegative byte = 1
)

// SignMagnitude splits v into a sign byte and a magnitude.
// math.MinInt16 is representable as the magnitude is unsigned.
func SignMagnitude(v int16) (sign byte, mag uint16) {
	if v < 0 {
		return SignNegative, uint16(-int32(v))
	}
	return SignPositive, uint16(v)
}

// FromSignMagnitude joins a sign and a magnitude. A negative zero
// decodes to 0.
func FromSignMagnitude(sign byte, mag uint16) int16 {
	if sign == SignNegative {
		return int16(-int32(mag))
	}
	return int16(mag)
}

// Encoder counts per revolution and the rpm scale of the speed commands.
const (
	CountsPerRev = 8192
	RPMScale     = 12000
)

// RPMToCount converts rpm to encoder counts on the wire.
func RPMToCount(rpm int) int {
	return int(math.Round(float64(CountsPerRev) * float64(rpm) / RPMScale))
}

// CountToRPM converts encoder counts from the wire to rpm.
func CountToRPM(count int) int {
	return int(math.Round(float64(RPMScale) * float64(count) / CountsPerRev))
}

// Clamp16 saturates v into the int16 range.
func Clamp16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
