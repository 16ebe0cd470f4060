package device

// Device classes, encoded in the high nibble of an address.
const (
	MD        byte = 0x00
	SD        byte = 0x10
	SMD       byte = 0x20
	BLMD      byte = 0x30
	SR        byte = 0x40
	SM        byte = 0x50
	Master    byte = 0x60
	Emergency byte = 0xf0
)

// ClassMask selects the device class of an address.
const ClassMask byte = 0xf0

// Address composes the on-wire address of a device instance.
func Address(class, index byte) byte {
	return index | class
}

// ClassOf extracts the device class from an address.
func ClassOf(addr byte) byte {
	return addr & ClassMask
}

// ClassName returns a short name of the device class.
func ClassName(class byte) string {
	switch class & ClassMask {
	case MD:
		return "md"
	case SD:
		return "sd"
	case SMD:
		return "smd"
	case BLMD:
		return "blmd"
	case SR:
		return "sr"
	case SM:
		return "sm"
	case Master:
		return "master"
	case Emergency:
		return "emergency"
	}
	return "unknown"
}
