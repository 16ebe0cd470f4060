package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/motor.go/pkg/framework"
)

// HelloQuery starts the handshake with a relay.
type HelloQuery struct {
	Version string `protobuf:"bytes,1,opt,name=version,proto3" json:"version,omitempty"`
}

// NewMessage implements Message.
func (m *HelloQuery) NewMessage() fx.Message { return &HelloQuery{} }

// TypeID implements SerializableMessage.
func (m *HelloQuery) TypeID() uint32 { return HelloQueryTypeID }

// Serializable implements SerializableMessage.
func (m *HelloQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *HelloQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *HelloQuery) Reset() { *m = HelloQuery{} }

// String implements proto.Message.
func (m *HelloQuery) String() string { return proto.CompactTextString(m) }

// HelloReply describes the relay and the bus it serves.
type HelloReply struct {
	Name      string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	VendorID  uint32 `protobuf:"varint,2,opt,name=vendor_id,json=vendorId,proto3" json:"vendor_id,omitempty"`
	ProductID uint32 `protobuf:"varint,3,opt,name=product_id,json=productId,proto3" json:"product_id,omitempty"`
	Interface uint32 `protobuf:"varint,4,opt,name=interface,proto3" json:"interface,omitempty"`
	Present   bool   `protobuf:"varint,5,opt,name=present,proto3" json:"present,omitempty"`
	Version   string `protobuf:"bytes,6,opt,name=version,proto3" json:"version,omitempty"`
}

// NewMessage implements Message.
func (m *HelloReply) NewMessage() fx.Message { return &HelloReply{} }

// TypeID implements SerializableMessage.
func (m *HelloReply) TypeID() uint32 { return HelloReplyTypeID }

// Serializable implements SerializableMessage.
func (m *HelloReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *HelloReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *HelloReply) Reset() { *m = HelloReply{} }

// String implements proto.Message.
func (m *HelloReply) String() string { return proto.CompactTextString(m) }

// ReadRequest asks the relay for one bulk read.
type ReadRequest struct {
	Size      uint32 `protobuf:"varint,1,opt,name=size,proto3" json:"size,omitempty"`
	TimeoutMs uint32 `protobuf:"varint,2,opt,name=timeout_ms,json=timeoutMs,proto3" json:"timeout_ms,omitempty"`
}

// NewReadRequest creates a ReadRequest.
func NewReadRequest(size int, timeout time.Duration) *ReadRequest {
	return &ReadRequest{Size: uint32(size), TimeoutMs: durationMs(timeout)}
}

// Timeout returns the requested timeout.
func (m *ReadRequest) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

// NewMessage implements Message.
func (m *ReadRequest) NewMessage() fx.Message { return &ReadRequest{} }

// TypeID implements SerializableMessage.
func (m *ReadRequest) TypeID() uint32 { return ReadRequestTypeID }

// Serializable implements SerializableMessage.
func (m *ReadRequest) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ReadRequest) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ReadRequest) Reset() { *m = ReadRequest{} }

// String implements proto.Message.
func (m *ReadRequest) String() string { return proto.CompactTextString(m) }

// ReadReply carries the bytes read.
// NotAvailable reports the bus is absent on the relay side.
type ReadReply struct {
	Data         []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
	NotAvailable bool   `protobuf:"varint,2,opt,name=not_available,json=notAvailable,proto3" json:"not_available,omitempty"`
}

// NewMessage implements Message.
func (m *ReadReply) NewMessage() fx.Message { return &ReadReply{} }

// TypeID implements SerializableMessage.
func (m *ReadReply) TypeID() uint32 { return ReadReplyTypeID }

// Serializable implements SerializableMessage.
func (m *ReadReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ReadReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ReadReply) Reset() { *m = ReadReply{} }

// String implements proto.Message.
func (m *ReadReply) String() string { return proto.CompactTextString(m) }

// WriteRequest asks the relay for one bulk write.
type WriteRequest struct {
	Data      []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
	TimeoutMs uint32 `protobuf:"varint,2,opt,name=timeout_ms,json=timeoutMs,proto3" json:"timeout_ms,omitempty"`
}

// NewWriteRequest creates a WriteRequest.
func NewWriteRequest(data []byte, timeout time.Duration) *WriteRequest {
	return &WriteRequest{Data: data, TimeoutMs: durationMs(timeout)}
}

// Timeout returns the requested timeout.
func (m *WriteRequest) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

// NewMessage implements Message.
func (m *WriteRequest) NewMessage() fx.Message { return &WriteRequest{} }

// TypeID implements SerializableMessage.
func (m *WriteRequest) TypeID() uint32 { return WriteRequestTypeID }

// Serializable implements SerializableMessage.
func (m *WriteRequest) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *WriteRequest) ProtoMessage() {}

// Reset implements proto.Message.
func (m *WriteRequest) Reset() { *m = WriteRequest{} }

// String implements proto.Message.
func (m *WriteRequest) String() string { return proto.CompactTextString(m) }

// WriteReply carries the count of bytes written.
type WriteReply struct {
	Written      uint32 `protobuf:"varint,1,opt,name=written,proto3" json:"written,omitempty"`
	NotAvailable bool   `protobuf:"varint,2,opt,name=not_available,json=notAvailable,proto3" json:"not_available,omitempty"`
}

// NewMessage implements Message.
func (m *WriteReply) NewMessage() fx.Message { return &WriteReply{} }

// TypeID implements SerializableMessage.
func (m *WriteReply) TypeID() uint32 { return WriteReplyTypeID }

// Serializable implements SerializableMessage.
func (m *WriteReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *WriteReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *WriteReply) Reset() { *m = WriteReply{} }

// String implements proto.Message.
func (m *WriteReply) String() string { return proto.CompactTextString(m) }

// DeviceStatus is the event of the bus device attaching or detaching.
type DeviceStatus struct {
	Present bool `protobuf:"varint,1,opt,name=present,proto3" json:"present,omitempty"`
}

// NewMessage implements Message.
func (m *DeviceStatus) NewMessage() fx.Message { return &DeviceStatus{} }

// TypeID implements SerializableMessage.
func (m *DeviceStatus) TypeID() uint32 { return DeviceStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *DeviceStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DeviceStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DeviceStatus) Reset() { *m = DeviceStatus{} }

// String implements proto.Message.
func (m *DeviceStatus) String() string { return proto.CompactTextString(m) }

// Relay TypeIDs
const (
	HelloQueryTypeID        uint32 = GroupRelay | 0x0000
	HelloReplyTypeID        uint32 = HelloQueryTypeID | TypeIDMaskReply
	ReadRequestTypeID       uint32 = GroupRelay | 0x0001
	ReadReplyTypeID         uint32 = ReadRequestTypeID | TypeIDMaskReply
	WriteRequestTypeID      uint32 = GroupRelay | 0x0002
	WriteReplyTypeID        uint32 = WriteRequestTypeID | TypeIDMaskReply
	DeviceStatusEventTypeID uint32 = GroupRelay | TypeIDKindEvent | 0x0000
)

func init() {
	MessageTypes[HelloQueryTypeID] = (*HelloQuery)(nil)
	MessageTypes[HelloReplyTypeID] = (*HelloReply)(nil)
	MessageTypes[ReadRequestTypeID] = (*ReadRequest)(nil)
	MessageTypes[ReadReplyTypeID] = (*ReadReply)(nil)
	MessageTypes[WriteRequestTypeID] = (*WriteRequest)(nil)
	MessageTypes[WriteReplyTypeID] = (*WriteReply)(nil)
	MessageTypes[DeviceStatusEventTypeID] = (*DeviceStatus)(nil)
}

func durationMs(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return uint32(ms)
}
