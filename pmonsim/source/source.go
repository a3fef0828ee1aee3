// Package source provides current samples to the simulator.
package source

import (
	"fmt"

	"github.com/harveysanders/pmon/pmonsim/config"
)

// Source produces current samples in milliamps.
type Source interface {
	Read() (milliamps uint16, err error)
	Close() error
}

// Build returns the source selected by a validated, normalized profile.
func Build(cfg config.SimConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceSynthetic:
		return NewSynthetic(cfg.Synthetic), nil
	case config.SourceModbus:
		return NewModbus(cfg.Modbus)
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

func clamp(v float64) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 0xffff:
		return 0xffff
	}
	return uint16(v + 0.5)
}
