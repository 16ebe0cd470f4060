package relay

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/golang/glog"

	fx "github.com/robotalks/motor.go/pkg/framework"
)

// BusType is the type of relays registered over MQTT.
const BusType = "usbcan"

// mDNS service of relays.
const (
	ServiceType = "_" + BusType + "._tcp"
	Domain      = "local."
)

// DefaultBrowseTimeout bounds Browse when ctx has no deadline.
const DefaultBrowseTimeout = 2 * time.Second

// Advertiser announces the TCP endpoint of a relay over mDNS.
type Advertiser struct {
	Instance string
	Port     int
	Text     []string
	TTL      time.Duration
}

// TXT builds the TXT records describing s.
func TXT(s *Server) []string {
	return []string{
		"name=" + s.Name,
		fmt.Sprintf("vid=%04x", s.VendorID),
		fmt.Sprintf("pid=%04x", s.ProductID),
		"version=" + ProtocolVersion,
	}
}

// AddToLoop implements LoopAdder.
func (a *Advertiser) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("mdns", a))
}

// Run implements Runnable, the service is withdrawn when ctx is done.
func (a *Advertiser) Run(ctx context.Context) error {
	var opts []zeroconf.ServerOption
	if a.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.TTL.Seconds())))
	}
	server, err := zeroconf.Register(a.Instance, ServiceType, Domain, a.Port, a.Text, nil, opts...)
	if err != nil {
		return fmt.Errorf("mdns register: %w", err)
	}
	glog.Infof("mdns advertising %q on port %d", a.Instance, a.Port)
	<-ctx.Done()
	server.Shutdown()
	return ctx.Err()
}

// Endpoint is a relay found by Browse.
type Endpoint struct {
	Instance string   `json:"instance"`
	Host     string   `json:"host,omitempty"`
	Port     int      `json:"port"`
	Addrs    []string `json:"addrs,omitempty"`
	Text     []string `json:"text,omitempty"`
}

// URL returns the tcp:// URL to dial the relay, preferring IPv4.
func (e Endpoint) URL() string {
	host := e.Host
	if len(e.Addrs) > 0 {
		host = e.Addrs[0]
	}
	return "tcp://" + net.JoinHostPort(host, strconv.Itoa(e.Port))
}

func endpointFromEntry(entry *zeroconf.ServiceEntry) Endpoint {
	ep := Endpoint{
		Instance: entry.Instance,
		Host:     entry.HostName,
		Port:     entry.Port,
		Text:     entry.Text,
	}
	for _, ip := range entry.AddrIPv4 {
		ep.Addrs = append(ep.Addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		ep.Addrs = append(ep.Addrs, ip.String())
	}
	return ep
}

// Browse collects relays announced until ctx is done or the timeout
// expires, ordered by instance name.
func Browse(ctx context.Context, timeout time.Duration) ([]Endpoint, error) {
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	errCh := make(chan error, 1)
	go func() {
		errCh <- zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	}()

	found := make(map[string]Endpoint)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			ep := endpointFromEntry(entry)
			if existing, ok := found[ep.Instance]; ok {
				ep.Addrs = mergeAddrs(existing.Addrs, ep.Addrs)
			}
			found[ep.Instance] = ep
		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			delete(found, entry.Instance)
		case err := <-errCh:
			if err != nil && ctx.Err() == nil {
				return nil, err
			}
			return sortEndpoints(found), nil
		case <-ctx.Done():
			return sortEndpoints(found), nil
		}
	}
}

func mergeAddrs(addrs, more []string) []string {
	for _, addr := range more {
		var dup bool
		for _, a := range addrs {
			if dup = a == addr; dup {
				break
			}
		}
		if !dup {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

func sortEndpoints(found map[string]Endpoint) []Endpoint {
	list := make([]Endpoint, 0, len(found))
	for _, ep := range found {
		list = append(list, ep)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Instance < list[j].Instance })
	return list
}
