// Package sensor defines the contract every hostsense sensor satisfies,
// the Reading produced by invoking one, and the error types shared by the
// registry and the aggregator.
package sensor

import (
	"context"
)

// A Sensor is one unit of measurement capability behind a uniform
// interface, whatever the underlying data source (OS counters, attached
// hardware, the process runtime).
type Sensor interface {
	// Title returns the sensor's stable human-readable name. It doubles as
	// the default registry key.
	Title() string

	// Value reads the current value in the sensor's natural representation.
	// It honors ctx for cancellation. When the underlying data source
	// cannot be read, it returns an *UnavailableError rather than
	// panicking; a panic that escapes anyway is contained by the
	// aggregation layer.
	Value(ctx context.Context) (interface{}, error)

	// Format renders a value previously produced by Value for humans.
	// It is separate from Value so the same reading can be displayed
	// and machine-consumed independently.
	Format(value interface{}) string
}

// A UnitProvider is a Sensor whose values carry a unit of measurement.
type UnitProvider interface {
	Unit() string
}
