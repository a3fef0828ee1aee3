package config

import (
	"fmt"
	"net"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
// Zero values that Normalize fills in are accepted.
func Validate(cfg *Config) error {
	s := cfg.Sim

	if s.TickMs < 0 {
		return fmt.Errorf("tick_ms must not be negative, got %d", s.TickMs)
	}
	if s.GraphEvery < 0 {
		return fmt.Errorf("graph_every must not be negative, got %d", s.GraphEvery)
	}
	if s.PageMs < 0 {
		return fmt.Errorf("page_ms must not be negative, got %d", s.PageMs)
	}

	switch s.Source {
	case "", SourceSynthetic:
		return validateSynthetic(s.Synthetic)
	case SourceModbus:
		return validateModbus(s.Modbus)
	default:
		return fmt.Errorf("unknown source %q (want %q or %q)", s.Source, SourceSynthetic, SourceModbus)
	}
}

func validateSynthetic(s SyntheticConfig) error {
	for i, seg := range s.Segments {
		if seg.CurrentMA < 0 || seg.CurrentMA > 0xffff {
			return fmt.Errorf("segment %d: current_ma %d out of range [0, 65535]", i, seg.CurrentMA)
		}
		if seg.DurationMs <= 0 {
			return fmt.Errorf("segment %d: duration_ms must be positive", i)
		}
		if seg.JitterMA < 0 {
			return fmt.Errorf("segment %d: jitter_ma must not be negative", i)
		}
	}
	return nil
}

func validateModbus(m ModbusConfig) error {
	if m.Endpoint == "" {
		return fmt.Errorf("modbus: endpoint required")
	}
	if _, _, err := net.SplitHostPort(m.Endpoint); err != nil {
		return fmt.Errorf("modbus: endpoint %q: %w", m.Endpoint, err)
	}
	if m.Scale < 0 {
		return fmt.Errorf("modbus: scale must not be negative")
	}
	if m.TimeoutMs < 0 {
		return fmt.Errorf("modbus: timeout_ms must not be negative")
	}
	return nil
}
