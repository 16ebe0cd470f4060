// Package pid implements the velocity form of the PID controller.
package pid

import "math"

// Config holds gains and output limits.
type Config struct {
	Kp     float64 `yaml:"kp" json:"kp"`
	Ki     float64 `yaml:"ki" json:"ki"`
	Kd     float64 `yaml:"kd" json:"kd"`
	OutMin float64 `yaml:"out_min" json:"out_min"`
	OutMax float64 `yaml:"out_max" json:"out_max"`
}

// DefaultConfig is a proportional-only controller without limits.
func DefaultConfig() Config {
	return Config{Kp: 1, OutMin: math.Inf(-1), OutMax: math.Inf(1)}
}

// VelPID integrates the output increment computed from the last
// three errors, so the output holds when the error settles.
type VelPID struct {
	Config

	output float64
	err1   float64
	err2   float64
}

// New creates a VelPID.
func New(conf Config) *VelPID {
	return &VelPID{Config: conf}
}

// Update computes the new output for the period dt. dt must be positive
// when Kd is non-zero.
func (p *VelPID) Update(target, measured, dt float64) float64 {
	e := target - measured
	du := p.Kp*(e-p.err1) + p.Ki*e*dt
	if p.Kd != 0 && dt > 0 {
		du += p.Kd * (e - 2*p.err1 + p.err2) / dt
	}
	p.output = p.clamp(p.output + du)
	p.err2, p.err1 = p.err1, e
	return p.output
}

// Output returns the last output.
func (p *VelPID) Output() float64 {
	return p.output
}

// Reset clears the accumulated state.
func (p *VelPID) Reset() {
	p.output, p.err1, p.err2 = 0, 0, 0
}

func (p *VelPID) clamp(v float64) float64 {
	if v > p.OutMax {
		return p.OutMax
	}
	if v < p.OutMin {
		return p.OutMin
	}
	return v
}
