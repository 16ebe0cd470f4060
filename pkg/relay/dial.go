package relay

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/robotalks/motor.go/pkg/comm"
	"github.com/robotalks/motor.go/pkg/comm/mqtt"
	"github.com/robotalks/motor.go/pkg/comm/stream"
	"github.com/robotalks/motor.go/pkg/comm/websocket"
	"github.com/robotalks/motor.go/pkg/transport"
)

// Connect opens a connection to the relay at rawURL:
//
//	tcp://host:port
//	ws://host:port/relay
//	mqtt://broker:port/prefix/?relay=TYPE/ID
//	mdns:///[INSTANCE]   first relay browsed, or the named one
func Connect(ctx context.Context, rawURL string) (comm.Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp":
		rw, err := stream.Dial(ctx, u.Host)
		if err != nil {
			return nil, err
		}
		return comm.NewConn(rw), nil
	case "ws", "wss":
		rw, err := websocket.Dial(rawURL)
		if err != nil {
			return nil, err
		}
		return comm.NewConn(rw), nil
	case "mqtt", "mqtts":
		query := u.Query()
		ref, err := comm.ParseRef(query.Get("relay"))
		if err != nil {
			return nil, err
		}
		query.Del("relay")
		u.RawQuery = query.Encode()
		connector, err := mqtt.NewConnector(u.String())
		if err != nil {
			return nil, err
		}
		return connector.Connect(ctx, ref)
	case "mdns":
		ep, err := browseOne(ctx, strings.Trim(u.Path, "/"))
		if err != nil {
			return nil, err
		}
		return Connect(ctx, ep.URL())
	default:
		return nil, fmt.Errorf("unsupported relay URL scheme %q", u.Scheme)
	}
}

// Dial connects to a relay and performs the handshake.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	conn, err := Connect(ctx, rawURL)
	if err != nil {
		return nil, &transport.RemoteCallError{Op: "dial", Err: err}
	}
	client := NewClient(conn)
	if _, err = client.Hello(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func browseOne(ctx context.Context, instance string) (*Endpoint, error) {
	eps, err := Browse(ctx, 0)
	if err != nil {
		return nil, err
	}
	for n := range eps {
		if instance == "" || eps[n].Instance == instance {
			return &eps[n], nil
		}
	}
	if instance != "" {
		return nil, fmt.Errorf("relay %q not found", instance)
	}
	return nil, fmt.Errorf("no relay found")
}
