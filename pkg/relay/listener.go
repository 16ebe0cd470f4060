package relay

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/comm/stream"
	fx "github.com/robotalks/motor.go/pkg/framework"
)

// DefaultListenAddr is the default TCP endpoint of a relay.
const DefaultListenAddr = "127.0.0.1:50051"

// TCPListener accepts stream sessions.
type TCPListener struct {
	Server   *Server
	listener net.Listener
}

// NewTCPListener listens on addr.
func NewTCPListener(addr string, s *Server) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{Server: s, listener: ln}, nil
}

// Addr returns the listening address.
func (l *TCPListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Port returns the listening port.
func (l *TCPListener) Port() int {
	if addr, ok := l.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// AddToLoop implements LoopAdder.
func (l *TCPListener) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("tcp-listener", l))
}

// Run implements Runnable. Sessions end with the listener.
func (l *TCPListener) Run(ctx context.Context) error {
	glog.Infof("relay listening on %s", l.listener.Addr())
	var wg sync.WaitGroup
	defer wg.Wait()
	return fx.RunWithContextCloser(ctx, l.listener, func() error {
		for {
			conn, err := l.listener.Accept()
			if err != nil {
				return err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.Server.Serve(ctx, "tcp", conn.RemoteAddr().String(), stream.New(conn))
			}()
		}
	})
}
