// Package fake implements a fake sensor whose title, value, and failure
// behavior come straight from its attributes.
package fake

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const modelname = "fake"

// Config holds the fake sensor's attributes.
type Config struct {
	Title      string      `json:"title,omitempty"`
	Value      interface{} `json:"value,omitempty"`
	Display    string      `json:"display,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Fail       bool        `json:"fail,omitempty"`
	FailReason string      `json:"fail_reason,omitempty"`
}

func init() {
	registry.RegisterSensorModel(modelname, registry.SensorModel{
		Constructor: func(_ context.Context, conf config.Sensor, _ golog.Logger) (sensor.Sensor, error) {
			attrs, err := config.TransformAttributes[Config](conf.Attributes)
			if err != nil {
				return nil, err
			}
			title := attrs.Title
			if title == "" {
				title = "Fake"
			}
			s := &Sensor{
				title:      title,
				value:      attrs.Value,
				display:    attrs.Display,
				unit:       attrs.Unit,
				fail:       attrs.Fail,
				failReason: attrs.FailReason,
			}
			if s.value == nil && !s.fail {
				s.value = 1
			}
			if s.failReason == "" {
				s.failReason = "fake sensor set to fail"
			}
			return s, nil
		},
	})
}

// Sensor is a fake sensor that always returns its configured value, or
// always fails.
type Sensor struct {
	title      string
	value      interface{}
	display    string
	unit       string
	fail       bool
	failReason string
}

// New returns a fake sensor that always succeeds with the given value.
func New(title string, value interface{}) *Sensor {
	return &Sensor{title: title, value: value}
}

// NewFailing returns a fake sensor whose reads always fail with the given
// reason.
func NewFailing(title, reason string) *Sensor {
	return &Sensor{title: title, fail: true, failReason: reason}
}

// WithUnit sets the sensor's reported unit.
func (s *Sensor) WithUnit(unit string) *Sensor {
	s.unit = unit
	return s
}

// Title returns the configured title.
func (s *Sensor) Title() string {
	return s.title
}

// Unit returns the configured unit, usually empty.
func (s *Sensor) Unit() string {
	return s.unit
}

// Value always returns the set value, or the set failure.
func (s *Sensor) Value(context.Context) (interface{}, error) {
	if s.fail {
		return nil, sensor.NewUnavailableError(s.failReason)
	}
	return s.value, nil
}

// Format returns the configured display string, or a plain rendering of
// the value.
func (s *Sensor) Format(value interface{}) string {
	if s.display != "" {
		return s.display
	}
	return fmt.Sprint(value)
}
