// Package relay sets up the relay server of the local adapter from
// environment variables, the config file and command line flags.
package relay

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robotalks/motor.go/pkg/comm"
	"github.com/robotalks/motor.go/pkg/comm/mqtt"
	"github.com/robotalks/motor.go/pkg/env"
	envtransport "github.com/robotalks/motor.go/pkg/env/transport"
	fx "github.com/robotalks/motor.go/pkg/framework"
	"github.com/robotalks/motor.go/pkg/relay"
	"github.com/robotalks/motor.go/pkg/transport/usb"
)

// Config of the relay server, the relay section of the config file:
//
//	relay:
//	  name: bench
//	  usb_device: usb://0483:5740/1
//	  listen: 0.0.0.0:50051
//	  http: 0.0.0.0:8080
//	  mqtt_url: mqtt://broker:1883/motor/
//	  advertise: true
type Config struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	USBDevice   string        `yaml:"usb_device"`
	Listen      string        `yaml:"listen"`
	HTTP        string        `yaml:"http"`
	MQTTURL     string        `yaml:"mqtt_url"`
	Advertise   bool          `yaml:"advertise"`
	Backoff     time.Duration `yaml:"backoff"`
}

var defaultConfig = Config{
	USBDevice: envtransport.DefaultUSBDevice.String(),
	Listen:    relay.DefaultListenAddr,
	Advertise: true,
	Backoff:   usb.DefaultBackoff,
}

func init() {
	defaultConfig.Name = env.MachineID()
	if val := os.Getenv("MOTOR_USB_DEVICE"); val != "" {
		defaultConfig.USBDevice = val
	}
	if val := os.Getenv("MOTOR_RELAY_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("MOTOR_RELAY_HTTP"); val != "" {
		defaultConfig.HTTP = val
	}
	if val := os.Getenv("MOTOR_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if path := env.ConfigFile(); path != "" {
		if err := LoadFile(path, &defaultConfig); err != nil {
			log.Fatalf("load %s: %v", path, err)
		}
	}
}

// LoadFile loads the relay section of the config file into conf.
func LoadFile(path string, conf *Config) error {
	file := struct {
		Relay *Config `yaml:"relay"`
	}{Relay: conf}
	return env.LoadFile(path, &file)
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Relay name")
	flag.StringVar(&defaultConfig.USBDevice, "device", defaultConfig.USBDevice, "USB adapter, usb://VID:PID/IFACE")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "TCP listen address, empty to disable")
	flag.StringVar(&defaultConfig.HTTP, "http", defaultConfig.HTTP, "HTTP listen address for status and WebSocket, empty to disable")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL, empty to disable")
	flag.BoolVar(&defaultConfig.Advertise, "advertise", defaultConfig.Advertise, "Advertise the TCP endpoint over mDNS")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the relay server with its listeners.
type Env struct {
	Config   *Config
	Device   envtransport.USBDevice
	Hotplug  *usb.Hotplug
	Server   *relay.Server
	Listener *relay.TCPListener
	HTTP     *relay.HTTPServer

	attacher *usb.BusAttacher
	adders   []fx.LoopAdder
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("relay name must be specified")
	}
	dev, err := envtransport.ParseUSB(c.USBDevice)
	if err != nil {
		return nil, err
	}
	e := &Env{Config: c, Device: dev}
	e.attacher = dev.NewAttacher()
	e.Hotplug = usb.NewHotplug(e.attacher)
	e.Hotplug.WaitArrival = false
	if c.Backoff > 0 {
		e.Hotplug.Backoff = c.Backoff
	}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

func (e *Env) setup() (err error) {
	defer func() {
		if err != nil {
			e.Close()
		}
	}()
	c := e.Config
	s := relay.NewServer(c.Name, e.Hotplug)
	s.VendorID, s.ProductID, s.Interface = e.Device.VendorID, e.Device.ProductID, e.Device.Interface
	e.Server = s
	e.Hotplug.OnChange = s.NotifyPresence

	if c.MQTTURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTURL, e.Info())
		if err != nil {
			return fmt.Errorf("create MQTT registrar error: %w", err)
		}
		s.Registrars.Add(reg)
	}
	if c.Listen != "" {
		if e.Listener, err = relay.NewTCPListener(c.Listen, s); err != nil {
			return err
		}
		e.adders = append(e.adders, e.Listener)
		if c.Advertise {
			e.adders = append(e.adders, &relay.Advertiser{
				Instance: c.Name,
				Port:     e.Listener.Port(),
				Text:     relay.TXT(s),
			})
		}
	}
	if c.HTTP != "" {
		if e.HTTP, err = relay.NewHTTPServer(c.HTTP, s); err != nil {
			return err
		}
		e.adders = append(e.adders, e.HTTP)
	}
	if e.Listener == nil && e.HTTP == nil && len(s.Registrars.Registrars) == 0 {
		return fmt.Errorf("at least one of TCP, HTTP or MQTT must be enabled")
	}
	return nil
}

// Info describes the relay for registrars.
func (e *Env) Info() comm.Info {
	return comm.Info{
		Ref: comm.Ref{Type: relay.BusType, ID: e.Config.Name},
		Meta: comm.Meta{
			Description: e.Config.Description,
			Labels: map[string]string{
				"device":  e.Device.String(),
				"version": relay.ProtocolVersion,
			},
		},
	}
}

// AddToLoop adds the hotplug pump, the server and the listeners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("usb-hotplug", e.Hotplug))
	loop.Add(e.Server)
	loop.Add(e.adders...)
}

// Close releases the device and the sessions.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	if e.Server != nil {
		e.Server.Sessions.CloseAll()
	}
	errs.Add(e.Hotplug.Close(), e.attacher.Close())
	return errs.Aggregate()
}
