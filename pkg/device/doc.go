// Package device provides the address space and framing shared by the
// device protocol codecs.
//
// Every exchange on the bus is one 8-byte Frame. A command is written,
// then frames are read until one carries the identifier expected from
// the addressed device; frames for other devices are discarded since
// the bus is shared.
package device
