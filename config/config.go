// Package config describes the hostsense configuration: which sensors to
// build and in what order, plus the optional web and record services.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.hostsense.dev/hostsense/sensor"
)

// A Config is the top-level configuration.
type Config struct {
	Sensors []Sensor `json:"sensors"`
	Web     *Web     `json:"web,omitempty"`
	Record  *Record  `json:"record,omitempty"`
}

// A Sensor configures one sensor instance. Name is the registry key and
// defaults to the constructed sensor's title; Model selects the registered
// constructor; Attributes carry model-specific settings.
type Sensor struct {
	Name       string       `json:"name,omitempty"`
	Model      string       `json:"model"`
	Attributes AttributeMap `json:"attributes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Sensor) Validate(path string) error {
	if conf.Model == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "model")
	}
	return nil
}

// A Web configures the HTTP server.
type Web struct {
	// BindAddress is the host:port to listen on; DefaultBindAddress when
	// empty.
	BindAddress string `json:"bind_address,omitempty"`
	Pprof       bool   `json:"pprof,omitempty"`
}

// A Record configures the scheduled recording service. At least one sink
// must be present.
type Record struct {
	// Schedule is either a Go duration ("30s") or a crontab expression
	// ("*/5 * * * *"); DefaultSchedule when empty.
	Schedule string     `json:"schedule,omitempty"`
	Mongo    *MongoSink `json:"mongo,omitempty"`
	File     *FileSink  `json:"file,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Record) Validate(path string) error {
	if conf.Mongo == nil && conf.File == nil {
		return goutils.NewConfigValidationError(path, errors.New("need at least one of mongo or file"))
	}
	if conf.Mongo != nil {
		if err := conf.Mongo.Validate(fmt.Sprintf("%s.%s", path, "mongo")); err != nil {
			return err
		}
	}
	if conf.File != nil {
		if err := conf.File.Validate(fmt.Sprintf("%s.%s", path, "file")); err != nil {
			return err
		}
	}
	return nil
}

// A MongoSink configures batch persistence into a MongoDB collection.
type MongoSink struct {
	URI        string `json:"uri"`
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *MongoSink) Validate(path string) error {
	if conf.URI == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "uri")
	}
	return nil
}

// A FileSink configures batch persistence into a size-rotated NDJSON file.
type FileSink struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *FileSink) Validate(path string) error {
	if conf.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	return nil
}

// Ensure ensures the whole config is valid. Explicit duplicate sensor names
// are rejected here so a bad config fails before any constructor runs; the
// registry enforces the same rule again for names derived from titles.
func (c *Config) Ensure() error {
	seenNames := map[string]struct{}{}
	for idx := 0; idx < len(c.Sensors); idx++ {
		if err := c.Sensors[idx].Validate(fmt.Sprintf("%s.%d", "sensors", idx)); err != nil {
			return err
		}
		name := c.Sensors[idx].Name
		if name == "" {
			continue
		}
		if _, ok := seenNames[name]; ok {
			return errors.Wrapf(sensor.NewDuplicateNameError(name), "error validating %q", fmt.Sprintf("%s.%d", "sensors", idx))
		}
		seenNames[name] = struct{}{}
	}
	if c.Web != nil {
		if err := c.Web.Validate("web"); err != nil {
			return err
		}
	}
	if c.Record != nil {
		if err := c.Record.Validate("record"); err != nil {
			return err
		}
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (conf *Web) Validate(string) error {
	return nil
}

// Default returns the built-in configuration: the seven canonical sensors
// in their original order, no web or record services.
func Default() *Config {
	return &Config{
		Sensors: []Sensor{
			{Model: "go-version"},
			{Model: "ip-addresses"},
			{Model: "cpu-load"},
			{Model: "ram-available"},
			{Model: "ac-status"},
			{Model: "dht22-temperature"},
			{Model: "dht22-humidity"},
		},
	}
}
