//go:build linux

package acstatus

import (
	"github.com/prometheus/procfs/sysfs"

	"go.hostsense.dev/hostsense/sensor"
)

// readPowerSupply prefers a mains supply's online flag and falls back to a
// battery's charging state when no mains supply is listed.
func readPowerSupply(sysPath string) (interface{}, error) {
	fs, err := sysfs.NewFS(sysPath)
	if err != nil {
		return nil, sensor.NewUnavailableErrorf("cannot open sysfs at %q: %v", sysPath, err)
	}
	supplies, err := fs.PowerSupplyClass()
	if err != nil {
		return nil, sensor.NewUnavailableErrorf("cannot read power supply class: %v", err)
	}
	for _, supply := range supplies {
		if supply.Type != nil && *supply.Type == "Mains" && supply.Online != nil {
			return *supply.Online == 1, nil
		}
	}
	for _, supply := range supplies {
		if supply.Type == nil || *supply.Type != "Battery" || supply.Status == nil {
			continue
		}
		switch *supply.Status {
		case "Charging", "Full":
			return true, nil
		case "Discharging":
			return false, nil
		}
	}
	return nil, nil
}
