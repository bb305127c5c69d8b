// Package dht22 implements the ambient temperature and relative humidity
// sensors backed by a DHT22 module on a GPIO pin. Both models share one
// driver per configuration, so one hardware exchange serves both values.
package dht22

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const (
	temperatureModel = "dht22-temperature"
	humidityModel    = "dht22-humidity"

	// The original deployment wired the module to BCM pin 20.
	defaultPin        = "GPIO20"
	defaultMaxRetries = 3
)

// Config holds the dht22 attributes shared by both models.
type Config struct {
	Pin        string `json:"pin,omitempty"`
	MaxRetries int    `json:"max_retries,omitempty"`
}

func init() {
	registry.RegisterSensorModel(temperatureModel, registry.SensorModel{
		Constructor: func(_ context.Context, conf config.Sensor, logger golog.Logger) (sensor.Sensor, error) {
			dev, err := newDevice(conf, logger)
			if err != nil {
				return nil, err
			}
			return &temperature{dev: dev}, nil
		},
	})
	registry.RegisterSensorModel(humidityModel, registry.SensorModel{
		Constructor: func(_ context.Context, conf config.Sensor, logger golog.Logger) (sensor.Sensor, error) {
			dev, err := newDevice(conf, logger)
			if err != nil {
				return nil, err
			}
			return &humidity{dev: dev}, nil
		},
	})
}

type temperature struct {
	dev *device
}

func (s *temperature) Title() string {
	return "Ambient Temperature"
}

func (s *temperature) Unit() string {
	return "°C"
}

func (s *temperature) Value(ctx context.Context) (interface{}, error) {
	_, celsius, err := s.dev.sample(ctx)
	if err != nil {
		return nil, err
	}
	return celsius, nil
}

// Format renders celsius with the fahrenheit equivalent alongside.
func (s *temperature) Format(value interface{}) string {
	v, ok := value.(float64)
	if !ok {
		return fmt.Sprint(value)
	}
	return fmt.Sprintf("%.1fC (%.1fF)", v, v*9/5+32)
}

type humidity struct {
	dev *device
}

func (s *humidity) Title() string {
	return "Relative Humidity"
}

func (s *humidity) Value(ctx context.Context) (interface{}, error) {
	fraction, _, err := s.dev.sample(ctx)
	if err != nil {
		return nil, err
	}
	return fraction, nil
}

func (s *humidity) Format(value interface{}) string {
	v, ok := value.(float64)
	if !ok {
		return fmt.Sprint(value)
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
