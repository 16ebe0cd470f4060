package relay

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/robotalks/motor.go/pkg/comm"
	fx "github.com/robotalks/motor.go/pkg/framework"
)

// Session is a client connected to the relay.
type Session struct {
	ID     uint64
	Kind   string
	Remote string
	Since  time.Time

	registrar *comm.PipeRegistrar
}

// SessionInfo is the status of a session.
type SessionInfo struct {
	ID     uint64    `json:"id"`
	Kind   string    `json:"kind"`
	Remote string    `json:"remote,omitempty"`
	Since  time.Time `json:"since"`
}

// Sessions tracks the sessions being served.
type Sessions struct {
	Accepted *xsync.Counter
	Closed   *xsync.Counter

	seq      uint64
	sessions *xsync.MapOf[uint64, *Session]
}

// NewSessions creates Sessions.
func NewSessions() *Sessions {
	return &Sessions{
		Accepted: xsync.NewCounter(),
		Closed:   xsync.NewCounter(),
		sessions: xsync.NewMapOf[uint64, *Session](),
	}
}

// Serve runs a session over rw until the peer disconnects or ctx is done.
// Commands are posted to the loop found in ctx.
func (s *Sessions) Serve(ctx context.Context, kind, remote string, rw comm.PacketReadWriter) error {
	sess := &Session{
		ID:        atomic.AddUint64(&s.seq, 1),
		Kind:      kind,
		Remote:    remote,
		Since:     time.Now(),
		registrar: comm.NewRegistrar(rw),
	}
	s.sessions.Store(sess.ID, sess)
	s.Accepted.Inc()
	glog.Infof("session %d (%s %s) opened", sess.ID, kind, remote)
	err := sess.registrar.Run(ctx)
	s.sessions.Delete(sess.ID)
	s.Closed.Inc()
	if err != nil && err != context.Canceled {
		glog.Warningf("session %d closed: %v", sess.ID, err)
	} else {
		glog.Infof("session %d closed", sess.ID)
	}
	return err
}

// SendEvent implements comm.Registrar by sending to every session.
func (s *Sessions) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	s.sessions.Range(func(_ uint64, sess *Session) bool {
		errs.Add(sess.registrar.SendEvent(ctx, msg))
		return true
	})
	return errs.Aggregate()
}

// Len returns the count of sessions.
func (s *Sessions) Len() int {
	return s.sessions.Size()
}

// List returns sessions ordered by ID.
func (s *Sessions) List() []SessionInfo {
	list := make([]SessionInfo, 0, s.sessions.Size())
	s.sessions.Range(func(_ uint64, sess *Session) bool {
		list = append(list, SessionInfo{ID: sess.ID, Kind: sess.Kind, Remote: sess.Remote, Since: sess.Since})
		return true
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// CloseAll disconnects all sessions.
func (s *Sessions) CloseAll() {
	s.sessions.Range(func(_ uint64, sess *Session) bool {
		sess.registrar.Close()
		return true
	})
}
