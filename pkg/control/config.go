package control

import (
	"fmt"
	"time"

	"github.com/robotalks/motor.go/pkg/pid"
)

// ErrorPolicy decides what happens when a control step fails.
type ErrorPolicy int

// Error policies
const (
	// Skip logs the failure and runs the next period.
	Skip ErrorPolicy = iota
	// Stop stops the loop with the failure.
	Stop
)

// String implements fmt.Stringer.
func (p ErrorPolicy) String() string {
	switch p {
	case Skip:
		return "skip"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("ErrorPolicy(%d)", int(p))
}

// ParseErrorPolicy parses skip or stop.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "skip":
		return Skip, nil
	case "stop":
		return Stop, nil
	}
	return Skip, fmt.Errorf("invalid error policy %q", s)
}

// DefaultInterval is the control period (100 Hz).
const DefaultInterval = 10 * time.Millisecond

// Config configures a Velocity controller, usually loaded from YAML:
//
//	id: 1
//	target: 300
//	interval: 10ms
//	on_error: stop
//	pid: {kp: 1.2, ki: 8, kd: 0, out_min: -16384, out_max: 16384}
type Config struct {
	ID       uint8         `yaml:"id" json:"id"`
	Target   int16         `yaml:"target" json:"target"`
	Interval time.Duration `yaml:"interval" json:"interval"`
	OnError  string        `yaml:"on_error" json:"on_error"`
	PID      pid.Config    `yaml:"pid" json:"pid"`
}

// DefaultConfig returns the defaults of the velocity controller.
func DefaultConfig() Config {
	return Config{
		ID:       1,
		Interval: DefaultInterval,
		OnError:  Skip.String(),
		PID:      pid.Config{Kp: 1, OutMin: -16384, OutMax: 16384},
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("invalid interval %v", c.Interval)
	}
	if c.PID.OutMin > c.PID.OutMax {
		return fmt.Errorf("pid out_min %v greater than out_max %v", c.PID.OutMin, c.PID.OutMax)
	}
	_, err := ParseErrorPolicy(c.OnError)
	return err
}
