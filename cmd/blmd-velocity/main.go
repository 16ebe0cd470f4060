package main

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/control"
	"github.com/robotalks/motor.go/pkg/device/blmd"
	"github.com/robotalks/motor.go/pkg/env"
	envtransport "github.com/robotalks/motor.go/pkg/env/transport"
	fx "github.com/robotalks/motor.go/pkg/framework"
)

var (
	configFile = env.ConfigFile()
	id         uint
	target     int
	onError    string
)

func init() {
	envtransport.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, the velocity section is used.")
	flag.UintVar(&id, "id", 1, "Controller ID.")
	flag.IntVar(&target, "target", 0, "Target velocity.")
	flag.StringVar(&onError, "on-error", "skip", "What to do when a step fails: skip or stop.")
}

func loadConfig() (control.Config, error) {
	conf := control.DefaultConfig()
	if configFile != "" {
		file := struct {
			Velocity *control.Config `yaml:"velocity"`
		}{Velocity: &conf}
		if err := env.LoadFile(configFile, &file); err != nil {
			return conf, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "id":
			conf.ID = uint8(id)
		case "target":
			conf.Target = int16(target)
		case "on-error":
			conf.OnError = onError
		}
	})
	return conf, conf.Validate()
}

func main() {
	flag.Parse()
	conf, err := loadConfig()
	if err != nil {
		log.Fatalln(err)
	}

	t := envtransport.Default().MustNewTransport(context.Background())
	defer t.Close()

	ctl, err := control.NewVelocity(t, conf)
	if err != nil {
		log.Fatalln(err)
	}
	ctl.OnStatus = func(s *blmd.Status) {
		glog.V(1).Infof("target=%d speed=%d current=%d", ctl.Target(), s.Speed, s.Current)
	}
	err = fx.NewRunner().HandleSignals().Go(fx.NewLoop().Add(ctl)).Wait()
	if _, stopErr := blmd.SendCurrent(t, ctl.ID, 0); stopErr != nil {
		glog.Warningf("release current: %v", stopErr)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
