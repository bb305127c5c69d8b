// Package ipaddresses implements a sensor enumerating the host's IP
// addresses across all network interfaces.
package ipaddresses

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/edaniels/golog"
	psnet "github.com/shirou/gopsutil/v3/net"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

const modelname = "ip-addresses"

// An Address pairs one interface address with its family.
type Address struct {
	Address string `json:"address"`
	Family  string `json:"family"`
}

func init() {
	registry.RegisterSensorModel(modelname, registry.SensorModel{
		Constructor: func(_ context.Context, _ config.Sensor, _ golog.Logger) (sensor.Sensor, error) {
			return &ipAddresses{interfaces: psnet.InterfacesWithContext}, nil
		},
	})
}

type ipAddresses struct {
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error) // for testing
}

func (s *ipAddresses) Title() string {
	return "IP Addresses"
}

// Value walks the interfaces in discovery order and returns their
// addresses, deduplicated. Unparseable entries are skipped rather than
// failing the whole enumeration.
func (s *ipAddresses) Value(ctx context.Context) (interface{}, error) {
	ifaces, err := s.interfaces(ctx)
	if err != nil {
		return nil, sensor.NewUnavailableErrorf("cannot enumerate network interfaces: %v", err)
	}
	seen := map[Address]struct{}{}
	addresses := []Address{}
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			parsed, ok := parseAddr(addr.Addr)
			if !ok {
				continue
			}
			if _, dupe := seen[parsed]; dupe {
				continue
			}
			seen[parsed] = struct{}{}
			addresses = append(addresses, parsed)
		}
	}
	return addresses, nil
}

// parseAddr handles both the CIDR notation gopsutil reports on most
// platforms and bare addresses.
func parseAddr(raw string) (Address, bool) {
	host := raw
	if strings.Contains(raw, "/") {
		ip, _, err := net.ParseCIDR(raw)
		if err != nil {
			return Address{}, false
		}
		host = ip.String()
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return Address{}, false
	}
	family := "IPv6"
	if ip.To4() != nil {
		family = "IPv4"
	}
	return Address{Address: ip.String(), Family: family}, true
}

func (s *ipAddresses) Format(value interface{}) string {
	addresses, ok := value.([]Address)
	if !ok {
		return fmt.Sprint(value)
	}
	lines := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		lines = append(lines, fmt.Sprintf("%s (%s)", addr.Address, addr.Family))
	}
	return strings.Join(lines, "\n")
}
