package relay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay:
  name: bench
  listen: 0.0.0.0:6000
  advertise: false
  backoff: 250ms
velocity:
  id: 2
`), 0644))
	conf := NewConfig()
	conf.HTTP = "127.0.0.1:8080"
	require.NoError(t, LoadFile(path, conf))
	require.Equal(t, "bench", conf.Name)
	require.Equal(t, "0.0.0.0:6000", conf.Listen)
	require.False(t, conf.Advertise)
	require.Equal(t, 250*time.Millisecond, conf.Backoff)
	require.Equal(t, "127.0.0.1:8080", conf.HTTP)
	require.Equal(t, Default().USBDevice, conf.USBDevice)
}

func TestNewEnvInvalid(t *testing.T) {
	conf := NewConfig()
	conf.Name = ""
	_, err := conf.NewEnv()
	require.Error(t, err)

	conf = NewConfig()
	conf.Name = "bench"
	conf.USBDevice = "usb://0483"
	_, err = conf.NewEnv()
	require.Error(t, err)
}
