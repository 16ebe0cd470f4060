package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string        `yaml:"name"`
	Interval time.Duration `yaml:"interval"`
	Nested   struct {
		Gain float64 `yaml:"gain"`
	} `yaml:"nested"`
}

func TestDecodeKeepsDefaults(t *testing.T) {
	conf := testConfig{Name: "default", Interval: time.Second}
	require.NoError(t, Decode(strings.NewReader("nested:\n  gain: 1.5\ninterval: 10ms\n"), &conf))
	require.Equal(t, "default", conf.Name)
	require.Equal(t, 10*time.Millisecond, conf.Interval)
	require.Equal(t, 1.5, conf.Nested.Gain)
}

func TestDecodeEmpty(t *testing.T) {
	conf := testConfig{Name: "default"}
	require.NoError(t, Decode(strings.NewReader(""), &conf))
	require.Equal(t, "default", conf.Name)
}

func TestDecodeInvalid(t *testing.T) {
	var conf testConfig
	require.Error(t, Decode(strings.NewReader("interval: [1, 2]\n"), &conf))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: bench\n"), 0644))
	var conf testConfig
	require.NoError(t, LoadFile(path, &conf))
	require.Equal(t, "bench", conf.Name)
	require.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &conf))
}

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.Equal(t, id, MachineID())
}
