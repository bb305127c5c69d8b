package dht22

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/sensor"
)

const (
	// Long enough to wake both the DHT22 and the slower DHT11 clones.
	startPulse = 18 * time.Millisecond

	// A data bit's high pulse is ~26µs for 0 and ~70µs for 1.
	bitThreshold = 50 * time.Microsecond

	// Per-edge wait; the whole 40-bit frame is under 6ms.
	edgeTimeout = 10 * time.Millisecond

	// The part needs two seconds of recovery between hardware exchanges.
	minReadInterval = 2 * time.Second

	dataBits = 40
	// Response preamble plus two edges per bit, with slack for the
	// trailing release.
	maxEdges = 90
)

// device drives one DHT22. Reads are serialized and rate limited; values
// inside the recovery window come from the last good exchange.
type device struct {
	mu         sync.Mutex
	pinName    string
	maxRetries int
	logger     golog.Logger

	pin             gpio.PinIO
	lastRead        time.Time
	lastHumidity    float64
	lastTemperature float64
	haveSample      bool
}

func newDevice(conf config.Sensor, logger golog.Logger) (*device, error) {
	attrs, err := config.TransformAttributes[Config](conf.Attributes)
	if err != nil {
		return nil, err
	}
	pinName := attrs.Pin
	if pinName == "" {
		pinName = defaultPin
	}
	maxRetries := attrs.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	// Hardware is probed lazily so a machine without the module still
	// builds the sensor and reports it unavailable per read.
	return &device{pinName: pinName, maxRetries: maxRetries, logger: logger}, nil
}

// sample returns the current relative humidity (fraction of 1) and
// temperature (celsius).
func (d *device) sample(ctx context.Context) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.haveSample && time.Since(d.lastRead) < minReadInterval {
		return d.lastHumidity, d.lastTemperature, nil
	}
	if err := d.ensurePin(); err != nil {
		return 0, 0, err
	}

	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			if !goutils.SelectContextOrWait(ctx, minReadInterval) {
				return 0, 0, ctx.Err()
			}
		}
		humidity, celsius, err := d.readOnce()
		if err != nil {
			lastErr = err
			d.logger.Debugw("dht22 exchange failed", "pin", d.pinName, "attempt", attempt+1, "error", err)
			continue
		}
		d.lastRead = time.Now()
		d.lastHumidity = humidity
		d.lastTemperature = celsius
		d.haveSample = true
		return humidity, celsius, nil
	}
	return 0, 0, sensor.NewUnavailableErrorf("dht22 on pin %s: %v", d.pinName, lastErr)
}

func (d *device) ensurePin() error {
	if d.pin != nil {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return sensor.NewUnavailableErrorf("cannot initialize gpio host: %v", err)
	}
	pin := gpioreg.ByName(d.pinName)
	if pin == nil {
		return sensor.NewUnavailableErrorf("no gpio pin found for %q", d.pinName)
	}
	d.pin = pin
	return nil
}

// readOnce performs a single wire exchange: drive the start pulse, release
// the line, and time the sensor's reply edges.
func (d *device) readOnce() (float64, float64, error) {
	if err := d.pin.Out(gpio.Low); err != nil {
		return 0, 0, errors.Wrap(err, "cannot drive start pulse")
	}
	time.Sleep(startPulse)
	if err := d.pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return 0, 0, errors.Wrap(err, "cannot release data line")
	}
	pulses := d.collectHighPulses()
	if len(pulses) < dataBits {
		return 0, 0, errors.Errorf("short frame: %d of %d data pulses", len(pulses), dataBits)
	}
	// Anything before the last 40 high pulses is preamble.
	return decode(pulses[len(pulses)-dataBits:])
}

// collectHighPulses times every high period on the line until it goes
// idle, returning the durations in order.
func (d *device) collectHighPulses() []time.Duration {
	var pulses []time.Duration
	var highSince time.Time
	for i := 0; i < maxEdges; i++ {
		if !d.pin.WaitForEdge(edgeTimeout) {
			break
		}
		now := time.Now()
		if d.pin.Read() == gpio.High {
			highSince = now
			continue
		}
		if !highSince.IsZero() {
			pulses = append(pulses, now.Sub(highSince))
			highSince = time.Time{}
		}
	}
	return pulses
}

// decode turns the 40 data-bit high pulses into humidity (fraction of 1)
// and temperature (celsius), verifying the trailing checksum byte.
func decode(bits []time.Duration) (float64, float64, error) {
	if len(bits) != dataBits {
		return 0, 0, errors.Errorf("expected %d data bits, got %d", dataBits, len(bits))
	}
	var data [5]byte
	for i, width := range bits {
		data[i/8] <<= 1
		if width > bitThreshold {
			data[i/8] |= 1
		}
	}
	if sum := data[0] + data[1] + data[2] + data[3]; sum != data[4] {
		return 0, 0, errors.Errorf("checksum mismatch: %#02x != %#02x", sum, data[4])
	}
	humidity := float64(uint16(data[0])<<8|uint16(data[1])) / 10
	if humidity > 100 {
		return 0, 0, errors.Errorf("implausible humidity %.1f%%", humidity)
	}
	celsius := float64(uint16(data[2]&0x7f)<<8|uint16(data[3])) / 10
	if data[2]&0x80 != 0 {
		celsius = -celsius
	}
	return humidity / 100, celsius, nil
}
