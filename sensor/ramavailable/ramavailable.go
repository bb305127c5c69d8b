// Package ramavailable implements a sensor reporting how many bytes of RAM
// are available for new workloads before the system starts swapping.
package ramavailable

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"
	"github.com/shirou/gopsutil/v3/mem"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const modelname = "ram-available"

func init() {
	registry.RegisterSensorModel(modelname, registry.SensorModel{
		Constructor: func(_ context.Context, _ config.Sensor, _ golog.Logger) (sensor.Sensor, error) {
			return &ramAvailable{virtualMemory: mem.VirtualMemoryWithContext}, nil
		},
	})
}

type ramAvailable struct {
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error) // for testing
}

func (s *ramAvailable) Title() string {
	return "RAM Available"
}

func (s *ramAvailable) Unit() string {
	return "B"
}

func (s *ramAvailable) Value(ctx context.Context) (interface{}, error) {
	vm, err := s.virtualMemory(ctx)
	if err != nil {
		return nil, sensor.NewUnavailableErrorf("cannot read virtual memory stats: %v", err)
	}
	return vm.Available, nil
}

// Format renders a byte count at its natural binary magnitude with one
// decimal, so 963441262 comes out as "918.8 MiB".
func (s *ramAvailable) Format(value interface{}) string {
	var v float64
	switch b := value.(type) {
	case uint64:
		v = float64(b)
	case int:
		v = float64(b)
	case float64: // JSON round-trips numbers as float64
		v = b
	default:
		return fmt.Sprint(value)
	}
	return formatBytes(v)
}

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

func formatBytes(v float64) string {
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[unit])
}
