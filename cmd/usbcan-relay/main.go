package main

import (
	"flag"
	"log"

	env "github.com/robotalks/motor.go/pkg/env/relay"
	fx "github.com/robotalks/motor.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	e := env.Default().MustNewEnv()
	defer e.Close()

	runner := fx.NewRunner().HandleSignals()
	if err := runner.Go(fx.NewLoop().Add(e)).Wait(); err != nil {
		log.Fatalln(err)
	}
}
