package env

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable of the config file.
const ConfigFileEnv = "MOTOR_CONFIG"

// ConfigFile returns the path of the config file, empty if not set.
func ConfigFile() string {
	return os.Getenv(ConfigFileEnv)
}

// LoadFile decodes the YAML file at path into v. Keys absent from the
// file leave v untouched, so v should carry the defaults.
func LoadFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Decode(f, v)
}

// Decode decodes YAML from r into v. An empty document is not an error.
func Decode(r io.Reader, v interface{}) error {
	if err := yaml.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
