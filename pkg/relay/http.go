package relay

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/comm/websocket"
	fx "github.com/robotalks/motor.go/pkg/framework"
)

// RelayPath is the WebSocket endpoint of sessions.
const RelayPath = "/relay"

// HTTPServer serves the status and WebSocket sessions.
type HTTPServer struct {
	Server   *Server
	listener net.Listener
}

// NewHTTPServer listens on addr.
func NewHTTPServer(addr string, s *Server) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &HTTPServer{Server: s, listener: ln}, nil
}

// Addr returns the listening address.
func (h *HTTPServer) Addr() net.Addr {
	return h.listener.Addr()
}

// Router creates the routes, sessions are served with ctx.
//
//	GET /status  status of the relay in JSON
//	GET /relay   WebSocket session
func (h *HTTPServer) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, h.Server.Status())
	})
	r.Get(RelayPath, websocket.Handler(func(rw *websocket.ReadWriter) {
		h.Server.Serve(ctx, "ws", rw.RemoteAddr(), rw)
	}).ServeHTTP)
	return r
}

// AddToLoop implements LoopAdder.
func (h *HTTPServer) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("http-server", h))
}

// Run implements Runnable.
func (h *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{Handler: h.Router(ctx)}
	glog.Infof("relay http on %s", h.listener.Addr())
	err := fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		srv.Close()
	}, func() error {
		return srv.Serve(h.listener)
	})
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
