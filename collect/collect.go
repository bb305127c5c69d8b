// Package collect implements the aggregation pass over a sensor registry:
// one reading per registered sensor, in registration order, with every
// failure contained to the sensor that caused it.
package collect

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"

	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

// A Collector invokes registered sensors and assembles their readings. It
// holds no state between passes; two passes over an unchanged registry
// describe the same sensors in the same order.
type Collector struct {
	reg    *registry.Registry
	logger golog.Logger
}

// New returns a collector over reg.
func New(reg *registry.Registry, logger golog.Logger) *Collector {
	return &Collector{reg: reg, logger: logger}
}

// Collect invokes every registered sensor once, sequentially, and returns
// exactly one reading per sensor in registration order. A sensor that
// errors or panics yields a failed reading carrying the reason; the pass
// always runs to completion. An empty registry yields an empty, non-nil
// slice.
func (c *Collector) Collect(ctx context.Context) []sensor.Reading {
	descriptors := c.reg.All()
	readings := make([]sensor.Reading, 0, len(descriptors))
	for _, desc := range descriptors {
		readings = append(readings, c.readOne(ctx, desc))
	}
	return readings
}

// CollectNamed invokes only the named sensors, in the order requested.
// Asking for a name that is not registered fails the whole call with a
// not found error.
func (c *Collector) CollectNamed(ctx context.Context, names []string) ([]sensor.Reading, error) {
	descriptors := make([]registry.Descriptor, 0, len(names))
	for _, name := range names {
		desc, ok := c.reg.Lookup(name)
		if !ok {
			return nil, sensor.NewNotFoundError(name)
		}
		descriptors = append(descriptors, desc)
	}
	readings := make([]sensor.Reading, 0, len(descriptors))
	for _, desc := range descriptors {
		readings = append(readings, c.readOne(ctx, desc))
	}
	return readings, nil
}

func (c *Collector) readOne(ctx context.Context, desc registry.Descriptor) (reading sensor.Reading) {
	reading = sensor.Reading{Name: desc.Name}
	if withUnit, ok := desc.Sensor.(sensor.UnitProvider); ok {
		reading.Unit = withUnit.Unit()
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warnw("sensor panicked during read", "sensor", desc.Name, "panic", r)
			reading = sensor.Reading{Name: desc.Name, Unit: reading.Unit, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	value, err := desc.Sensor.Value(ctx)
	if err != nil {
		c.logger.Debugw("sensor read failed", "sensor", desc.Name, "error", err)
		reading.Error = err.Error()
		return reading
	}
	reading.Value = value
	reading.Display = desc.Sensor.Format(value)
	return reading
}
