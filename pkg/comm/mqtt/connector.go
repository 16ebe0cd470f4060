package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/comm"
)

// Connector implements comm.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	brokerURL string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		brokerURL:       brokerURL,
	}, nil
}

// ParseMetaTopic extracts the relay reference from TYPE/ID/meta.
func ParseMetaTopic(topic string) (comm.Ref, bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || "/"+items[2] != TopicMeta {
		return comm.Ref{}, false
	}
	ref := comm.Ref{Type: items[0], ID: items[1]}
	return ref, ref.IsValid()
}

// Discover implements Connector.
// Relays are found from their retained meta, an empty meta is
// left by a relay gone offline.
func (c *Connector) Discover(ctx context.Context) (res []comm.Info, err error) {
	q, err := NewQueueFromURL(c.brokerURL)
	if err != nil {
		return nil, err
	}
	if err = q.ConnectAndWait(); err != nil {
		return nil, err
	}
	defer q.Close()
	resCh := make(chan comm.Info, 16)
	done := make(chan struct{})
	defer close(done)
	q.Sub("+/+"+TopicMeta, Handler(func(topic string, payload []byte) {
		ref, ok := ParseMetaTopic(topic)
		if !ok || len(payload) == 0 {
			return
		}
		info := comm.Info{Ref: ref}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.V(2).Infof("invalid meta of %s: %v", ref.Name(), err)
		}
		select {
		case resCh <- info:
		case <-done:
		}
	}))

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.NewTimer(dur)
	defer timeout.Stop()
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout.C:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref comm.Ref) (comm.Connection, error) {
	q, err := NewQueueFromURL(c.brokerURL)
	if err != nil {
		return nil, err
	}
	conn := &Conn{Queue: q}
	conn.Init(NewPacketReadWriter(q).ForConnector(ref))
	if err := q.ConnectAndWait(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Conn implements comm.Connection using MQTT.
type Conn struct {
	comm.Conn
	Queue *Queue
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	err := c.Conn.Close()
	c.Queue.Close()
	return err
}
