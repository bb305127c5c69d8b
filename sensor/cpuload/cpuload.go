// Package cpuload implements a sensor reporting system-wide CPU usage as a
// fraction of capacity, sampled over a short window.
package cpuload

import (
	"context"
	"fmt"
	"time"

	"github.com/edaniels/golog"
	"github.com/shirou/gopsutil/v3/cpu"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const modelname = "cpu-load"

// The original tool sampled utilization for three seconds per read.
const defaultSampleInterval = 3 * time.Second

// Config holds the cpu-load attributes.
type Config struct {
	SampleIntervalMS int `json:"sample_interval_ms,omitempty"`
}

func init() {
	registry.RegisterSensorModel(modelname, registry.SensorModel{
		Constructor: func(_ context.Context, conf config.Sensor, _ golog.Logger) (sensor.Sensor, error) {
			attrs, err := config.TransformAttributes[Config](conf.Attributes)
			if err != nil {
				return nil, err
			}
			interval := defaultSampleInterval
			if attrs.SampleIntervalMS > 0 {
				interval = time.Duration(attrs.SampleIntervalMS) * time.Millisecond
			}
			return &cpuLoad{interval: interval, percent: cpu.PercentWithContext}, nil
		},
	})
}

type cpuLoad struct {
	interval time.Duration
	percent  func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) // for testing
}

func (s *cpuLoad) Title() string {
	return "CPU Usage"
}

// Value blocks for the sample window and reports the busy fraction across
// all CPUs, 0 through 1.
func (s *cpuLoad) Value(ctx context.Context) (interface{}, error) {
	percents, err := s.percent(ctx, s.interval, false)
	if err != nil {
		return nil, sensor.NewUnavailableErrorf("cannot sample cpu utilization: %v", err)
	}
	if len(percents) == 0 {
		return nil, sensor.NewUnavailableError("no cpu utilization reported")
	}
	return percents[0] / 100, nil
}

func (s *cpuLoad) Format(value interface{}) string {
	v, ok := value.(float64)
	if !ok {
		return fmt.Sprint(value)
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
