// Package sensor provides current sensing using the INA219 high side
// current monitor. It throttles bus reads and caches the last good value.
package sensor

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ina219"
)

// DefaultReadInterval is the minimum time between two bus reads. At the
// default 12 bit, 532µs conversion time the register is refreshed much
// faster; reading slower keeps the I2C bus free for the display.
const DefaultReadInterval = 20 * time.Millisecond

// Sensor wraps an INA219 with throttling and caching.
type Sensor struct {
	dev    ina219.Device
	logger *slog.Logger
	now    func() time.Time

	cachedCurrent   uint16        // Last successfully read current, mA.
	lastReadTime    time.Time     // Time of the last successful read.
	minReadInterval time.Duration // Reads within the interval return the cached value.
	hasValidCache   bool
}

// New returns a Sensor for the INA219 at the default address on bus,
// using cfg for its range and calibration. Call Configure before reading.
func New(bus drivers.I2C, cfg ina219.Config, logger *slog.Logger) *Sensor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dev := ina219.New(bus)
	dev.SetConfig(cfg)
	return &Sensor{
		dev:             dev,
		logger:          logger,
		now:             time.Now,
		minReadInterval: DefaultReadInterval,
	}
}

// SetReadInterval changes the minimum time between bus reads.
func (s *Sensor) SetReadInterval(d time.Duration) {
	s.minReadInterval = d
}

// Configure writes the configuration and calibration to the device and
// checks they read back.
func (s *Sensor) Configure() error {
	if err := s.dev.Configure(); err != nil {
		return errors.New("ina219 configure:" + err.Error())
	}
	s.hasValidCache = false
	return nil
}

// ReadCurrent returns the current in milliamps, whether the value comes
// from the cache, and any read error. The bus is only read when the read
// interval passed since the last successful read. On error the last good
// value, if any, is returned along with the error.
//
// Reverse current reads as 0 and values beyond 65535 mA saturate.
func (s *Sensor) ReadCurrent() (milliamps uint16, isCached bool, err error) {
	now := s.now()

	if s.hasValidCache && now.Sub(s.lastReadTime) < s.minReadInterval {
		return s.cachedCurrent, true, nil
	}

	current, err := s.dev.Current()
	if err != nil {
		s.logger.Debug("sensor:read-failed", slog.String("err", err.Error()))
		err = errors.New("ina219 read current:" + err.Error())
		if s.hasValidCache {
			return s.cachedCurrent, true, err
		}
		return 0, false, err
	}

	s.cachedCurrent = toMilliamps(current)
	s.lastReadTime = now
	s.hasValidCache = true
	return s.cachedCurrent, false, nil
}

func toMilliamps(current float32) uint16 {
	switch {
	case current <= 0:
		return 0
	case current >= 0xffff:
		return 0xffff
	}
	return uint16(current + 0.5)
}
