package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/motor.go/pkg/comm"
	"github.com/robotalks/motor.go/pkg/comm/commtest"
	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/msgs"
	"github.com/robotalks/motor.go/pkg/transport"
	"github.com/robotalks/motor.go/pkg/transport/transporttest"
)

var testFrame = []byte{0x30, 0x00, 0x01, 0x03, 0xe8, 0x00, 0x00, 0x00}

type relayTestEnv struct {
	t      *testing.T
	bus    *transporttest.Fake
	server *Server
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
}

func startServer(t *testing.T, s *Server, adders ...fx.LoopAdder) (context.CancelFunc, chan struct{}) {
	loop := fx.NewLoop()
	loop.Interval = 5 * time.Millisecond
	loop.Add(s)
	loop.Add(adders...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()
	return cancel, done
}

type serveRunnable struct {
	server *Server
	rw     comm.PacketReadWriter
}

func (r *serveRunnable) AddToLoop(l *fx.Loop) {
	l.AddRunnable(fx.RunnableFunc(func(ctx context.Context) error {
		return r.server.Serve(ctx, "test", "pair", r.rw)
	}))
}

func newRelayTestEnv(t *testing.T) *relayTestEnv {
	clientRW, serverRW := commtest.Pair()
	env := &relayTestEnv{t: t, bus: transporttest.New()}
	env.server = NewServer("relay-test", env.bus)
	env.server.VendorID, env.server.ProductID, env.server.Interface = 0x0483, 0x5740, 1
	env.cancel, env.done = startServer(t, env.server, &serveRunnable{server: env.server, rw: serverRW})
	env.client = NewClient(comm.NewConn(clientRW))
	return env
}

func (e *relayTestEnv) stop() {
	e.client.Close()
	e.cancel()
	select {
	case <-e.done:
	case <-time.After(2 * time.Second):
		e.t.Fatal("server not stopped")
	}
}

func TestRelayHello(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	hello, err := env.client.Hello(ctx)
	require.NoError(t, err)
	require.Equal(t, "relay-test", hello.Name)
	require.Equal(t, uint32(0x0483), hello.VendorID)
	require.Equal(t, uint32(0x5740), hello.ProductID)
	require.True(t, hello.Present)
	require.Equal(t, ProtocolVersion, env.client.Info().Version)
}

func TestRelayWriteRead(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()

	n, err := env.client.WriteBulk(testFrame, time.Second)
	require.NoError(t, err)
	require.Equal(t, len(testFrame), n)
	require.Equal(t, [][]byte{testFrame}, env.bus.Writes())

	status := []byte{0x02, 0x00, 0x01, 0x00, 0x10, 0x00, 0x00, 0x00}
	env.bus.Inject(status)
	buf := make([]byte, 8)
	n, err = env.client.ReadBulk(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, status, buf)
	require.Equal(t, int64(2), env.server.Requests.Value())
}

func TestRelayFaultNotRetried(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()

	env.bus.InjectErr(&transport.IOError{Op: "read", Err: errors.New("stall")})
	env.bus.Inject(testFrame)
	buf := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	n, err := env.client.ReadBulk(buf, time.Second)
	require.Zero(t, n)
	require.True(t, transport.IsRemoteCallError(err))
	var cmdErr *msgs.CommandErr
	require.True(t, errors.As(err, &cmdErr))
	require.Contains(t, cmdErr.Message, "stall")
	require.Equal(t, []byte{9, 9, 9, 9, 9, 9, 9, 9}, buf)
	require.Equal(t, 1, env.bus.Pending())
	require.Equal(t, int64(1), env.server.Requests.Value())
	require.Equal(t, int64(1), env.server.Faults.Value())
}

func TestRelayWriteFault(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()
	env.bus.WriteErr = &transport.IOError{Op: "write", Err: context.DeadlineExceeded}
	_, err := env.client.WriteBulk(testFrame, time.Second)
	require.True(t, transport.IsRemoteCallError(err))
}

func TestRelayLengthMismatch(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()

	env.bus.Inject([]byte{1, 2, 3, 4})
	buf := make([]byte, 8)
	n, err := env.client.ReadBulk(buf, time.Second)
	require.Zero(t, n)
	require.True(t, transport.IsIOError(err))
	require.ErrorIs(t, err, transport.ErrLengthMismatch)
	require.Equal(t, make([]byte, 8), buf)
}

func TestRelayNotAvailable(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()
	changes := make(chan bool, 2)
	env.client.OnChange = func(present bool) { changes <- present }

	env.bus.InjectErr(transport.ErrTransportNotFound)
	_, err := env.client.ReadBulk(make([]byte, 8), time.Second)
	require.ErrorIs(t, err, transport.ErrNotAvailable)
	require.False(t, transport.IsRemoteCallError(err))
	require.False(t, env.server.Present())
	select {
	case present := <-changes:
		require.False(t, present)
	case <-time.After(time.Second):
		t.Fatal("device status not received")
	}
	require.False(t, env.client.Present())

	n, err := env.client.WriteBulk(testFrame, time.Second)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.True(t, env.server.Present())
	require.Equal(t, int64(1), env.server.NotAvailable.Value())
}

func TestRelayInvalidTimeout(t *testing.T) {
	env := newRelayTestEnv(t)
	defer env.stop()
	_, err := env.client.ReadBulk(make([]byte, 8), 0)
	require.ErrorIs(t, err, transport.ErrInvalidTimeout)
	require.Zero(t, env.server.Requests.Value())
}

func TestRelayUnreachable(t *testing.T) {
	clientRW, serverRW := commtest.Pair()
	client := NewClient(comm.NewConn(clientRW))
	defer client.Close()
	serverRW.Close()
	_, err := client.WriteBulk(testFrame, 50*time.Millisecond)
	require.True(t, transport.IsRemoteCallError(err))
}

func TestServerUnknownCommand(t *testing.T) {
	s := NewServer("x", transporttest.New())
	require.Nil(t, s.Handle(&msgs.DeviceStatus{}))
	reply := s.Handle(&msgs.ReadRequest{Size: 1000})
	_, ok := reply.(*msgs.CommandErr)
	require.True(t, ok)
}

func TestTCPListenerDial(t *testing.T) {
	bus := transporttest.New()
	server := NewServer("tcp-relay", bus)
	ln, err := NewTCPListener("127.0.0.1:0", server)
	require.NoError(t, err)
	cancel, done := startServer(t, server, ln)
	defer func() {
		cancel()
		<-done
	}()

	ctx, cancelDial := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelDial()
	client, err := Dial(ctx, "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, "tcp-relay", client.Info().Name)
	_, err = client.WriteBulk(testFrame, time.Second)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return server.Sessions.Len() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHTTPStatusAndWebSocket(t *testing.T) {
	bus := transporttest.New()
	server := NewServer("ws-relay", bus)
	h := &HTTPServer{Server: server}

	loopCtx := make(chan context.Context, 1)
	cancel, done := startServer(t, server, fx.LoopAdder(loopAdderFunc(func(l *fx.Loop) {
		l.AddRunnable(fx.RunnableFunc(func(ctx context.Context) error {
			loopCtx <- ctx
			<-ctx.Done()
			return ctx.Err()
		}))
	})))
	defer func() {
		cancel()
		<-done
	}()
	srv := httptest.NewServer(h.Router(<-loopCtx))
	defer srv.Close()

	ctx, cancelDial := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelDial()
	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+RelayPath)
	require.NoError(t, err)
	defer client.Close()
	_, err = client.WriteBulk(testFrame, time.Second)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var status Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Equal(t, "ws-relay", status.Name)
	require.True(t, status.Present)
	require.Len(t, status.Sessions, 1)
	require.Equal(t, "ws", status.Sessions[0].Kind)
	require.Equal(t, int64(1), status.Requests)
}

type loopAdderFunc func(*fx.Loop)

func (f loopAdderFunc) AddToLoop(l *fx.Loop) { f(l) }

func TestDialUnsupportedScheme(t *testing.T) {
	_, err := Dial(context.Background(), "serial:///dev/ttyACM0")
	require.True(t, transport.IsRemoteCallError(err))
	_, err = Connect(context.Background(), "mqtt://localhost:1883/?relay=bad")
	require.Error(t, err)
}

func TestEndpointURL(t *testing.T) {
	ep := Endpoint{Instance: "r1", Host: "r1.local.", Port: 50051}
	require.Equal(t, "tcp://r1.local.:50051", ep.URL())
	ep.Addrs = mergeAddrs([]string{"192.168.1.2"}, []string{"192.168.1.2", "fe80::1"})
	require.Equal(t, []string{"192.168.1.2", "fe80::1"}, ep.Addrs)
	require.Equal(t, "tcp://192.168.1.2:50051", ep.URL())
	ep.Addrs = []string{"fe80::1"}
	require.Equal(t, "tcp://[fe80::1]:50051", ep.URL())
}

func TestTXT(t *testing.T) {
	s := NewServer("r1", transporttest.New())
	s.VendorID, s.ProductID = 0x0483, 0x5740
	require.Equal(t, []string{"name=r1", "vid=0483", "pid=5740", "version=1"}, TXT(s))
}
