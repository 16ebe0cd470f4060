package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/motor.go/pkg/comm/mqtt"
	"github.com/robotalks/motor.go/pkg/device"
	env "github.com/robotalks/motor.go/pkg/env/transport"
	"github.com/robotalks/motor.go/pkg/relay"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	// MQTTURL is the broker where relays are discovered besides mDNS.
	MQTTURL string

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Connection
}

// Connection is an opened transport.
type Connection struct {
	Ctx       context.Context
	Cancel    func()
	URL       string
	Transport *env.Transport
}

// Close releases the transport.
func (c *Connection) Close() error {
	err := c.Transport.Close()
	c.Cancel()
	return err
}

// Endpoint is a discovered relay.
type Endpoint struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	mqttURL    = os.Getenv("MOTOR_MQTT_URL")

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&EmergencyCmd,
		&PresentCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL to discover relays.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		MQTTURL:     mqttURL,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Transport gets the transport of current connection.
func Transport(c *ishell.Context) *env.Transport {
	return ShellFrom(c).Conn.Transport
}

// ArgParser parses positional arguments, decimal or 0x prefixed hex,
// each checked against the width of its value. Optional arguments
// which are absent parse as 0. The first failure is kept in Err.
type ArgParser struct {
	args []string
	err  error
}

// ParseArgs checks there are between required and n arguments.
func ParseArgs(c *ishell.Context, required, n int) *ArgParser {
	p := &ArgParser{args: c.Args}
	if len(c.Args) < required || len(c.Args) > n {
		p.err = ArgCountError(required, n)
	}
	return p
}

// Err returns the first failure.
func (p *ArgParser) Err() error {
	return p.err
}

func (p *ArgParser) arg(i int) (string, bool) {
	if p.err != nil || i >= len(p.args) {
		return "", false
	}
	return p.args[i], true
}

func (p *ArgParser) fail(arg string, err error) {
	p.err = fmt.Errorf("invalid argument %q: %v", arg, err)
}

// Byte parses argument i as an address, port or id.
func (p *ArgParser) Byte(i int) byte {
	arg, ok := p.arg(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		p.fail(arg, err)
		return 0
	}
	return byte(v)
}

// Int16 parses argument i as a signed 16-bit value.
func (p *ArgParser) Int16(i int) int16 {
	arg, ok := p.arg(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(arg, 0, 16)
	if err != nil {
		p.fail(arg, err)
		return 0
	}
	return int16(v)
}

// Uint16 parses argument i as an unsigned 16-bit value.
func (p *ArgParser) Uint16(i int) uint16 {
	arg, ok := p.arg(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		p.fail(arg, err)
		return 0
	}
	return uint16(v)
}

// ArgCountError reports an unexpected number of arguments.
func ArgCountError(required, n int) error {
	if required == n {
		return fmt.Errorf("%d arguments expected", n)
	}
	return fmt.Errorf("%d to %d arguments expected", required, n)
}

// Print prints the result of a device command.
func Print(c *ishell.Context, result interface{}, err error) error {
	if err != nil {
		c.Err(err)
		return err
	}
	s := ShellFrom(c)
	if n, ok := result.(int); ok {
		if s.OutputJSON {
			c.Printf("{\"written\":%d}\n", n)
		} else {
			c.Printf("OK %d\n", n)
		}
		return nil
	}
	if s.OutputJSON {
		out, err := json.Marshal(result)
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	c.Printf("%s %+v\n", reflect.Indirect(reflect.ValueOf(result)).Type().Name(), reflect.Indirect(reflect.ValueOf(result)).Interface())
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Discover finds relays over mDNS and MQTT.
func (s *Shell) Discover(ctx context.Context) ([]Endpoint, error) {
	eps, err := relay.Browse(ctx, 0)
	if err != nil {
		return nil, err
	}
	res := make([]Endpoint, 0, len(eps))
	for _, ep := range eps {
		res = append(res, Endpoint{Name: ep.Instance, URL: ep.URL()})
	}
	if s.MQTTURL == "" {
		return res, nil
	}
	connector, err := mqtt.NewConnector(s.MQTTURL)
	if err != nil {
		return res, err
	}
	infoList, err := connector.Discover(ctx)
	if err != nil {
		return res, err
	}
	for _, info := range infoList {
		u, err := url.Parse(s.MQTTURL)
		if err != nil {
			return res, err
		}
		query := u.Query()
		query.Set("relay", info.Ref.Name())
		u.RawQuery = query.Encode()
		res = append(res, Endpoint{Name: info.Ref.Name(), URL: u.String(), Description: info.Meta.Description})
	}
	return res, nil
}

// SelectEndpoint discovers relays and asks for a choice.
func (s *Shell) SelectEndpoint(ctx context.Context) (*Endpoint, error) {
	eps, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(eps) == 0 {
		return nil, nil
	}
	var index int
	if len(eps) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 relays discovered in non-interactive mode")
		}
		items := make([]string, len(eps))
		for n, ep := range eps {
			items[n] = ep.Name + " " + ep.URL
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, nil
		}
	}
	return &eps[index], nil
}

// Connect opens the transport at rawURL, empty for the configured one.
func (s *Shell) Connect(rawURL string) error {
	conf := *s.Config
	if rawURL != "" {
		conf.URL = rawURL
	}
	conn := &Connection{URL: conf.URL}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	t, err := conf.NewTransport(conn.Ctx)
	if err != nil {
		conn.Cancel()
		return err
	}
	conn.Transport = t
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conn.URL))
	return nil
}

// Disconnect closes current transport.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		if err := s.Conn.Close(); err != nil {
			log.Printf("disconnect error: %v", err)
		}
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.URL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.URL)
		}
		if err := s.Connect(""); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.URL, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers relays.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			eps, err := s.Discover(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(eps)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(eps) == 0 {
				c.Println("No relays found")
				return
			}
			for _, ep := range eps {
				if ep.Description != "" {
					c.Printf("%s %s: %s\n", ep.Name, ep.URL, ep.Description)
					continue
				}
				c.Printf("%s %s\n", ep.Name, ep.URL)
			}
		},
	}

	// ConnectCmd opens a transport.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var rawURL string
			if len(c.Args) > 0 {
				rawURL = c.Args[0]
			} else {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				ep, err := s.SelectEndpoint(ctx)
				cancel()
				if err != nil {
					c.Err(err)
					return
				}
				if ep == nil {
					c.Err(fmt.Errorf("no relay discovered"))
					return
				}
				rawURL = ep.URL
			}
			if err := s.Connect(rawURL); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes current transport.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// EmergencyCmd broadcasts the emergency stop.
	EmergencyCmd = ishell.Cmd{
		Name:    "emergency",
		Aliases: []string{"estop", "!"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			n, err := device.SendEmergency(Transport(c))
			Print(c, n, err)
		}),
	}

	// PresentCmd shows whether the adapter is attached.
	PresentCmd = ishell.Cmd{
		Name:    "present",
		Aliases: []string{"p"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			t := Transport(c)
			if t.Present == nil {
				c.Println("unknown")
				return
			}
			c.Println(t.Present())
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
