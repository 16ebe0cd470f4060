package pid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProportional(t *testing.T) {
	p := New(DefaultConfig())
	// velocity form: output follows the error change.
	require.Equal(t, 10.0, p.Update(10, 0, 0.01))
	require.Equal(t, 10.0, p.Update(10, 0, 0.01))
	require.Equal(t, 5.0, p.Update(10, 5, 0.01))
}

func TestIntegral(t *testing.T) {
	p := New(Config{Ki: 2, OutMin: -100, OutMax: 100})
	require.InDelta(t, 0.2, p.Update(10, 0, 0.01), 1e-9)
	require.InDelta(t, 0.4, p.Update(10, 0, 0.01), 1e-9)
}

func TestDerivative(t *testing.T) {
	p := New(Config{Kd: 0.1, OutMin: -100, OutMax: 100})
	require.InDelta(t, 10.0, p.Update(1, 0, 0.01), 1e-9)
	// e=1, e1=1, e2=0 => (1-2+0)/0.01*0.1 = -10
	require.InDelta(t, 0.0, p.Update(1, 0, 0.01), 1e-9)
}

func TestClamp(t *testing.T) {
	p := New(Config{Kp: 1, OutMin: -50, OutMax: 50})
	require.Equal(t, 50.0, p.Update(100, 0, 0.01))
	require.Equal(t, 50.0, p.Output())
	require.Equal(t, -50.0, p.Update(-100, 0, 0.01))
}

func TestReset(t *testing.T) {
	p := New(DefaultConfig())
	p.Update(10, 0, 0.01)
	p.Reset()
	require.Zero(t, p.Output())
	require.Equal(t, 3.0, p.Update(3, 0, 0.01))
}
