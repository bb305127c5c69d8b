package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.hostsense.dev/hostsense/sensor"
)

func TestReadJSON5(t *testing.T) {
	t.Setenv("HOSTSENSE_TEST_MONGO", "mongodb://localhost:27017")

	contents := `
	{
		// comments are allowed
		"sensors": [
			{"model": "cpu-load", "attributes": {"sample_interval_ms": 250}},
			{"name": "Machine RAM", "model": "ram-available"},
		],
		"web": {"bind_address": ":9000", "pprof": true},
		"record": {
			"schedule": "30s",
			"mongo": {"uri": "${HOSTSENSE_TEST_MONGO}"},
		},
	}
	`
	filePath := filepath.Join(t.TempDir(), "hostsense.json")
	test.That(t, os.WriteFile(filePath, []byte(contents), 0o640), test.ShouldBeNil)

	cfg, err := Read(filePath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Sensors, test.ShouldHaveLength, 2)
	test.That(t, cfg.Sensors[0].Model, test.ShouldEqual, "cpu-load")
	test.That(t, cfg.Sensors[0].Attributes.Int("sample_interval_ms", 0), test.ShouldEqual, 250)
	test.That(t, cfg.Sensors[1].Name, test.ShouldEqual, "Machine RAM")
	test.That(t, cfg.Web.BindAddress, test.ShouldEqual, ":9000")
	test.That(t, cfg.Web.Pprof, test.ShouldBeTrue)
	test.That(t, cfg.Record.Schedule, test.ShouldEqual, "30s")
	test.That(t, cfg.Record.Mongo.URI, test.ShouldEqual, "mongodb://localhost:27017")

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read config file")
}

func TestFromReader(t *testing.T) {
	cfg, err := FromReader(strings.NewReader(`{"sensors": [{"model": "go-version"}]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Sensors, test.ShouldHaveLength, 1)

	_, err = FromReader(strings.NewReader(`{"sensors": [`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse config")
}

func TestEnsure(t *testing.T) {
	var cfg Config
	test.That(t, cfg.Ensure(), test.ShouldBeNil)

	cfg = Config{Sensors: []Sensor{{Name: "one"}}}
	err := cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"sensors.0"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"model" is required`)

	cfg = Config{Sensors: []Sensor{
		{Name: "twin", Model: "fake"},
		{Name: "twin", Model: "fake"},
	}}
	err = cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, sensor.IsDuplicateNameError(err), test.ShouldBeTrue)

	cfg = Config{Record: &Record{}}
	err = cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one of mongo or file")

	cfg = Config{Record: &Record{Mongo: &MongoSink{}}}
	err = cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"uri" is required`)

	cfg = Config{Record: &Record{File: &FileSink{}}}
	err = cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"path" is required`)

	cfg = Config{
		Sensors: []Sensor{{Model: "cpu-load"}},
		Record:  &Record{File: &FileSink{Path: "/tmp/readings.ndjson"}},
	}
	test.That(t, cfg.Ensure(), test.ShouldBeNil)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Ensure(), test.ShouldBeNil)
	models := make([]string, 0, len(cfg.Sensors))
	for _, conf := range cfg.Sensors {
		models = append(models, conf.Model)
	}
	test.That(t, models, test.ShouldResemble, []string{
		"go-version",
		"ip-addresses",
		"cpu-load",
		"ram-available",
		"ac-status",
		"dht22-temperature",
		"dht22-humidity",
	})
}

func TestTransformAttributes(t *testing.T) {
	type attrs struct {
		Pin        string `json:"pin"`
		MaxRetries int    `json:"max_retries"`
		Fractions  bool   `json:"fractions"`
	}

	// numbers arrive as float64 from JSON and must land in int fields
	decoded, err := TransformAttributes[attrs](AttributeMap{
		"pin":         "GPIO4",
		"max_retries": float64(5),
		"fractions":   true,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded, test.ShouldResemble, attrs{Pin: "GPIO4", MaxRetries: 5, Fractions: true})

	decodedPtr, err := TransformAttributes[*attrs](AttributeMap{"pin": "GPIO17"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decodedPtr.Pin, test.ShouldEqual, "GPIO17")

	_, err = TransformAttributes[attrs](AttributeMap{"pin": 14})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode attributes")
}
