package comm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	fx "github.com/robotalks/motor.go/pkg/framework"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Registrar publishes a relay to its clients.
// It integrates with framework: received commands are posted to
// the loop as CommandMsg.
type Registrar interface {
	// SendEvent sends an event to the clients.
	SendEvent(context.Context, fx.Message) error
}

// Command represents a received command to be processed.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// Ref is a reference to a relay.
type Ref struct {
	// Type is the bus type, e.g. usbcan.
	Type string
	// ID is unique ID of the relay.
	ID string
}

// ParseRef parses TYPE/ID.
func ParseRef(s string) (Ref, error) {
	items := strings.SplitN(s, "/", 2)
	if len(items) != 2 || items[0] == "" || items[1] == "" {
		return Ref{}, fmt.Errorf("invalid relay reference %q, expect TYPE/ID", s)
	}
	return Ref{Type: items[0], ID: items[1]}, nil
}

// Name retrieves the name from ref.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// Meta provides metadata of a relay.
type Meta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Info provides information of a relay.
type Info struct {
	Ref  Ref
	Meta Meta
}

// Connector is used by clients to find and connect to relays.
type Connector interface {
	// Discover enumerates registered relays.
	Discover(context.Context) ([]Info, error)
	// Connect connects to the specified relay.
	Connect(context.Context, Ref) (Connection, error)
}

// Connection is the client side of a relay session.
type Connection interface {
	fx.LoopAdder
	io.Closer
	// DoCommand sends a command and expects the result before
	// expiration. Zero expiration uses the default of the connection.
	DoCommand(msg fx.Message, expiration time.Duration) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
