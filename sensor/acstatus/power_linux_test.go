//go:build linux

package acstatus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.hostsense.dev/hostsense/sensor"
)

func writeSupply(t *testing.T, sysPath, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(sysPath, "class", "power_supply", name)
	test.That(t, os.MkdirAll(dir, 0o750), test.ShouldBeNil)
	for file, contents := range files {
		test.That(t, os.WriteFile(filepath.Join(dir, file), []byte(contents+"\n"), 0o640), test.ShouldBeNil)
	}
}

func TestReadPowerSupplyMains(t *testing.T) {
	sysPath := t.TempDir()
	writeSupply(t, sysPath, "AC", map[string]string{"type": "Mains", "online": "1"})

	s := &acStatus{sysPath: sysPath}
	value, err := s.Value(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, value, test.ShouldEqual, true)
	test.That(t, s.Format(value), test.ShouldEqual, "Connected")
}

func TestReadPowerSupplyOffline(t *testing.T) {
	sysPath := t.TempDir()
	writeSupply(t, sysPath, "AC", map[string]string{"type": "Mains", "online": "0"})
	// the battery state must not shadow the mains answer
	writeSupply(t, sysPath, "BAT0", map[string]string{"type": "Battery", "status": "Charging"})

	value, err := readPowerSupply(sysPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, value, test.ShouldEqual, false)
}

func TestReadPowerSupplyBatteryFallback(t *testing.T) {
	sysPath := t.TempDir()
	writeSupply(t, sysPath, "BAT0", map[string]string{"type": "Battery", "status": "Discharging"})

	value, err := readPowerSupply(sysPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, value, test.ShouldEqual, false)

	sysPath = t.TempDir()
	writeSupply(t, sysPath, "BAT0", map[string]string{"type": "Battery", "status": "Full"})
	value, err = readPowerSupply(sysPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, value, test.ShouldEqual, true)
}

func TestReadPowerSupplyNoUsableSupply(t *testing.T) {
	sysPath := t.TempDir()
	test.That(t, os.MkdirAll(filepath.Join(sysPath, "class", "power_supply"), 0o750), test.ShouldBeNil)

	value, err := readPowerSupply(sysPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, value, test.ShouldBeNil)

	s := &acStatus{sysPath: sysPath}
	test.That(t, s.Format(value), test.ShouldEqual, "Unknown")
}

func TestReadPowerSupplyUnavailable(t *testing.T) {
	// no class/power_supply directory at all
	_, err := readPowerSupply(filepath.Join(t.TempDir(), "missing"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, sensor.IsUnavailableError(err), test.ShouldBeTrue)
}
