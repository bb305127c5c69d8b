// Package register registers all sensor models
package register

import (
	// register sensor models.
	_ "go.hostsense.dev/hostsense/sensor/acstatus"
	_ "go.hostsense.dev/hostsense/sensor/cpuload"
	_ "go.hostsense.dev/hostsense/sensor/dht22"
	_ "go.hostsense.dev/hostsense/sensor/fake"
	_ "go.hostsense.dev/hostsense/sensor/goversion"
	_ "go.hostsense.dev/hostsense/sensor/ipaddresses"
	_ "go.hostsense.dev/hostsense/sensor/ramavailable"
)
