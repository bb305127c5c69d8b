// Package registry keeps track of the available sensor models and holds
// the ordered name→sensor registry built from configuration at startup.
package registry

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/sensor"
)

// A CreateSensor constructs a sensor instance from its configuration.
type CreateSensor func(ctx context.Context, conf config.Sensor, logger golog.Logger) (sensor.Sensor, error)

// A SensorModel describes how to construct sensors of one model.
type SensorModel struct {
	Constructor CreateSensor
}

var (
	modelRegistryMu sync.RWMutex
	modelRegistry   = map[string]SensorModel{}
)

// RegisterSensorModel registers a sensor model by name. Registering the
// same model twice is a programmer error and panics.
func RegisterSensorModel(model string, reg SensorModel) {
	modelRegistryMu.Lock()
	defer modelRegistryMu.Unlock()
	if _, exists := modelRegistry[model]; exists {
		panic(errors.Errorf("trying to register two sensor models with the same name %q", model))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for sensor model %q", model))
	}
	modelRegistry[model] = reg
}

// DeregisterSensorModel removes a previously registered model.
func DeregisterSensorModel(model string) {
	modelRegistryMu.Lock()
	defer modelRegistryMu.Unlock()
	delete(modelRegistry, model)
}

// SensorModelLookup looks up a sensor model by name. nil is returned if
// there is no model registered under it.
func SensorModelLookup(model string) *SensorModel {
	modelRegistryMu.RLock()
	defer modelRegistryMu.RUnlock()
	if registration, ok := modelRegistry[model]; ok {
		return &registration
	}
	return nil
}

// RegisteredSensorModels returns a copy of the current model registrations.
func RegisteredSensorModels() map[string]SensorModel {
	modelRegistryMu.RLock()
	defer modelRegistryMu.RUnlock()
	copied := make(map[string]SensorModel, len(modelRegistry))
	for model, reg := range modelRegistry {
		copied[model] = reg
	}
	return copied
}

// A Descriptor identifies one registered sensor instance.
type Descriptor struct {
	Name   string
	Sensor sensor.Sensor
}

// A Registry is the authoritative name→sensor mapping of a running
// process. Names are unique and registration order is preserved so every
// enumeration of the registry comes out in the same stable order. It is
// safe for concurrent readers once built.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sensors map[string]sensor.Sensor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sensors: map[string]sensor.Sensor{}}
}

// Register adds s under the given name. The first registration of a name
// wins; a later one is rejected with a duplicate name error instead of
// silently replacing what is there.
func (r *Registry) Register(name string, s sensor.Sensor) error {
	if name == "" {
		return errors.New("sensor name must be non-empty")
	}
	if s == nil {
		return errors.Errorf("cannot register a nil sensor under %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sensors[name]; exists {
		return sensor.NewDuplicateNameError(name)
	}
	r.sensors[name] = s
	r.order = append(r.order, name)
	return nil
}

// All returns the registered descriptors in registration order. The slice
// is a fresh copy every call, so enumerating it is repeatable and free of
// side effects on the registry.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptors := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, Descriptor{Name: name, Sensor: r.sensors[name]})
	}
	return descriptors
}

// Lookup returns the descriptor registered under name, if any.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sensors[name]
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{Name: name, Sensor: s}, true
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered sensors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Build constructs every configured sensor through the model registry and
// registers it under its configured name, defaulting to the sensor's own
// title. An unknown model, a failed constructor, or a duplicate name is a
// startup integrity fault and aborts the whole build.
func Build(ctx context.Context, confs []config.Sensor, logger golog.Logger) (*Registry, error) {
	reg := New()
	for _, conf := range confs {
		creator := SensorModelLookup(conf.Model)
		if creator == nil {
			return nil, errors.Errorf("unknown sensor model %q", conf.Model)
		}
		newSensor, err := creator.Constructor(ctx, conf, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot build sensor model %q", conf.Model)
		}
		name := conf.Name
		if name == "" {
			name = newSensor.Title()
		}
		if err := reg.Register(name, newSensor); err != nil {
			return nil, err
		}
		logger.Debugw("registered sensor", "name", name, "model", conf.Model)
	}
	return reg, nil
}
