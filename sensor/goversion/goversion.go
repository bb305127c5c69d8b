// Package goversion implements a sensor reporting the Go runtime version
// this process was built with.
package goversion

import (
	"context"
	"fmt"
	"runtime"

	"github.com/edaniels/golog"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const modelname = "go-version"

func init() {
	registry.RegisterSensorModel(modelname, registry.SensorModel{
		Constructor: func(_ context.Context, _ config.Sensor, _ golog.Logger) (sensor.Sensor, error) {
			return &goVersion{}, nil
		},
	})
}

type goVersion struct{}

func (s *goVersion) Title() string {
	return "Go Version"
}

func (s *goVersion) Value(context.Context) (interface{}, error) {
	return runtime.Version(), nil
}

func (s *goVersion) Format(value interface{}) string {
	if v, ok := value.(string); ok {
		return v
	}
	return fmt.Sprint(value)
}
