package relay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/robotalks/motor.go/pkg/comm"
	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/msgs"
	"github.com/robotalks/motor.go/pkg/transport"
)

// DefaultTimeout is used by requests without a timeout.
const DefaultTimeout = 5 * time.Second

// MaxBulkSize limits the size of a read request.
const MaxBulkSize = 64

// Presence is implemented by transports following a hotplug device.
type Presence interface {
	Present() bool
}

// Server serves the bus Transport to relay sessions.
// It's a loop controller: bulk transfers are executed in the loop,
// one at a time.
type Server struct {
	Name      string
	VendorID  uint16
	ProductID uint16
	Interface int
	Transport transport.Transport

	// Registrars receive events besides the sessions, e.g. MQTT.
	Registrars comm.RegistrarMux
	Sessions   *Sessions

	Requests     *xsync.Counter
	Faults       *xsync.Counter
	NotAvailable *xsync.Counter

	present atomic.Bool
}

// Status is the status of the Server.
type Status struct {
	Name         string        `json:"name"`
	VendorID     uint16        `json:"vendor_id"`
	ProductID    uint16        `json:"product_id"`
	Interface    int           `json:"interface"`
	Present      bool          `json:"present"`
	Sessions     []SessionInfo `json:"sessions"`
	Accepted     int64         `json:"accepted"`
	Requests     int64         `json:"requests"`
	Faults       int64         `json:"faults"`
	NotAvailable int64         `json:"not_available"`
}

// NewServer creates a Server.
func NewServer(name string, t transport.Transport) *Server {
	s := &Server{
		Name:         name,
		Transport:    t,
		Sessions:     NewSessions(),
		Requests:     xsync.NewCounter(),
		Faults:       xsync.NewCounter(),
		NotAvailable: xsync.NewCounter(),
	}
	s.present.Store(s.transportPresent())
	return s
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, s)
	l.Add(&s.Registrars, &comm.UnsupportedCommands{})
}

// Present indicates the device of the bus is attached.
func (s *Server) Present() bool {
	return s.present.Load()
}

// NotifyPresence records the presence and sends DeviceStatus to all
// clients when it changes.
func (s *Server) NotifyPresence(present bool) {
	if s.present.Swap(present) == present {
		return
	}
	glog.Infof("device present: %v", present)
	if err := s.SendEvent(context.Background(), &msgs.DeviceStatus{Present: present}); err != nil {
		glog.Warningf("send device status error: %v", err)
	}
}

// SendEvent implements comm.Registrar.
func (s *Server) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	errs.Add(s.Sessions.SendEvent(ctx, msg), s.Registrars.SendEvent(ctx, msg))
	return errs.Aggregate()
}

// Serve runs a session, see Sessions.Serve.
func (s *Server) Serve(ctx context.Context, kind, remote string, rw comm.PacketReadWriter) error {
	return s.Sessions.Serve(ctx, kind, remote, rw)
}

// Status returns the current status.
func (s *Server) Status() Status {
	return Status{
		Name:         s.Name,
		VendorID:     s.VendorID,
		ProductID:    s.ProductID,
		Interface:    s.Interface,
		Present:      s.Present(),
		Sessions:     s.Sessions.List(),
		Accepted:     s.Sessions.Accepted.Value(),
		Requests:     s.Requests.Value(),
		Faults:       s.Faults.Value(),
		NotAvailable: s.NotAvailable.Value(),
	}
}

// Control implements Controller.
func (s *Server) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		cmdMsg, ok := mc.CurrentMessage().(*comm.CommandMsg)
		if !ok {
			return
		}
		reply := s.Handle(cmdMsg.Command.Msg())
		if reply == nil {
			return
		}
		mc.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Warningf("reply error: %v", err)
		}
	}))
	return nil
}

// Handle executes a relay command and returns the reply,
// or nil if msg is not a relay command.
func (s *Server) Handle(msg fx.Message) fx.Message {
	var reply fx.Message
	switch m := msg.(type) {
	case *msgs.HelloQuery:
		if m.Version != ProtocolVersion {
			glog.Warningf("client protocol version %q, relay %q", m.Version, ProtocolVersion)
		}
		return &msgs.HelloReply{
			Name:      s.Name,
			VendorID:  uint32(s.VendorID),
			ProductID: uint32(s.ProductID),
			Interface: uint32(s.Interface),
			Present:   s.Present(),
			Version:   ProtocolVersion,
		}
	case *msgs.ReadRequest:
		reply = s.read(m)
	case *msgs.WriteRequest:
		reply = s.write(m)
	default:
		return nil
	}
	s.Requests.Inc()
	if _, ok := reply.(*msgs.CommandErr); ok {
		s.Faults.Inc()
	}
	return reply
}

func (s *Server) read(req *msgs.ReadRequest) fx.Message {
	if req.Size == 0 || req.Size > MaxBulkSize {
		return msgs.NewCommandErrFromMsg(fmt.Sprintf("invalid read size %d", req.Size))
	}
	buf := make([]byte, req.Size)
	n, err := s.Transport.ReadBulk(buf, requestTimeout(req.Timeout()))
	glog.V(2).Infof("read %d: % X %v", req.Size, buf[:n], err)
	switch {
	case s.notAvailable(err):
		return &msgs.ReadReply{NotAvailable: true}
	case err != nil:
		return msgs.NewCommandErr(err)
	}
	s.updatePresence()
	return &msgs.ReadReply{Data: buf[:n]}
}

func (s *Server) write(req *msgs.WriteRequest) fx.Message {
	n, err := s.Transport.WriteBulk(req.Data, requestTimeout(req.Timeout()))
	glog.V(2).Infof("write % X: %d %v", req.Data, n, err)
	switch {
	case s.notAvailable(err):
		return &msgs.WriteReply{NotAvailable: true}
	case err != nil:
		return msgs.NewCommandErr(err)
	}
	s.updatePresence()
	return &msgs.WriteReply{Written: uint32(n)}
}

func (s *Server) notAvailable(err error) bool {
	if !errors.Is(err, transport.ErrTransportNotFound) {
		return false
	}
	s.NotAvailable.Inc()
	s.NotifyPresence(false)
	return true
}

func (s *Server) updatePresence() {
	if !s.present.Load() {
		s.NotifyPresence(true)
	}
}

func (s *Server) transportPresent() bool {
	if p, ok := s.Transport.(Presence); ok {
		return p.Present()
	}
	return true
}

func requestTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}
