// Package acstatus implements a sensor reporting whether the machine is
// running on AC power, read from the kernel's power supply class.
package acstatus

import (
	"context"

	"github.com/edaniels/golog"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const modelname = "ac-status"

const defaultSysPath = "/sys"

// Config holds the ac-status attributes.
type Config struct {
	SysPath string `json:"sys_path,omitempty"`
}

func init() {
	registry.RegisterSensorModel(modelname, registry.SensorModel{
		Constructor: func(_ context.Context, conf config.Sensor, _ golog.Logger) (sensor.Sensor, error) {
			attrs, err := config.TransformAttributes[Config](conf.Attributes)
			if err != nil {
				return nil, err
			}
			sysPath := attrs.SysPath
			if sysPath == "" {
				sysPath = defaultSysPath
			}
			return &acStatus{sysPath: sysPath}, nil
		},
	})
}

type acStatus struct {
	sysPath string // for testing
}

func (s *acStatus) Title() string {
	return "AC Connected"
}

// Value reports true or false when the kernel exposes a usable supply, and
// nil when the power supply class is readable but carries no mains or
// battery information. An unreadable class means the sensor is
// unavailable, not that power is unknown.
func (s *acStatus) Value(context.Context) (interface{}, error) {
	return readPowerSupply(s.sysPath)
}

func (s *acStatus) Format(value interface{}) string {
	v, ok := value.(bool)
	if !ok {
		return "Unknown"
	}
	if v {
		return "Connected"
	}
	return "Not connected"
}
