// Package env provides the environment shared by commands: the identity
// of the machine and the YAML configuration file.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the machine id so the raw id is never exposed.
const AppID = "motor.go"

// MachineID retrieves the unique ID identifying the machine.
// The hostname is used when the machine id isn't available.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil && len(id) > 12 {
		return id[:12]
	}
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
