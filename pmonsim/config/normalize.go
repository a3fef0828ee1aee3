package config

// Defaults applied by Normalize.
const (
	DefaultTickMs     = 100
	DefaultGraphEvery = 2
	DefaultPageMs     = 5000
	DefaultTimeoutMs  = 1000
)

// Normalize fills in defaults. It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	s := &cfg.Sim

	if s.TickMs == 0 {
		s.TickMs = DefaultTickMs
	}
	if s.GraphEvery == 0 {
		s.GraphEvery = DefaultGraphEvery
	}
	if s.PageMs == 0 {
		s.PageMs = DefaultPageMs
	}
	if s.Source == "" {
		s.Source = SourceSynthetic
	}

	// A profile without segments idles at a low current.
	if len(s.Synthetic.Segments) == 0 {
		s.Synthetic.Segments = []SegmentConfig{
			{CurrentMA: 80, DurationMs: 4000, JitterMA: 10},
			{CurrentMA: 650, DurationMs: 1500, JitterMA: 60},
		}
	}

	if s.Modbus.Scale == 0 {
		s.Modbus.Scale = 1
	}
	if s.Modbus.TimeoutMs == 0 {
		s.Modbus.TimeoutMs = DefaultTimeoutMs
	}
}
