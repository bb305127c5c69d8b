//go:build !linux

package acstatus

import (
	"go.hostsense.dev/hostsense/sensor"
)

func readPowerSupply(string) (interface{}, error) {
	return nil, sensor.NewUnavailableError("power supply state is only readable on linux")
}
