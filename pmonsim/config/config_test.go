package config

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

const profile = `
sim:
  tick_ms: 50
  source: modbus
  synthetic:
    seed: 7
    segments:
      - current_ma: 120
        duration_ms: 3000
        jitter_ma: 15
  modbus:
    endpoint: 192.168.1.50:502
    unit_id: 3
    register: 12
    scale: 0.5
`

func TestLoad(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), "sim.yaml")
	c.Assert(os.WriteFile(path, []byte(profile), 0o644), qt.IsNil)

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Sim.TickMs, qt.Equals, 50)
	c.Assert(cfg.Sim.Source, qt.Equals, SourceModbus)
	c.Assert(cfg.Sim.Synthetic, qt.DeepEquals, SyntheticConfig{
		Seed:     7,
		Segments: []SegmentConfig{{CurrentMA: 120, DurationMs: 3000, JitterMA: 15}},
	})
	c.Assert(cfg.Sim.Modbus, qt.DeepEquals, ModbusConfig{
		Endpoint: "192.168.1.50:502",
		UnitID:   3,
		Register: 12,
		Scale:    0.5,
	})
	c.Assert(Validate(cfg), qt.IsNil)
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := Load(filepath.Join(c.TempDir(), "nope.yaml"))
	c.Assert(err, qt.ErrorMatches, "read profile: .*")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	c := qt.New(t)

	_, err := Parse([]byte("sim:\n  tick: 10\n"))
	c.Assert(err, qt.ErrorMatches, "parse profile: (.|\n)*field tick not found(.|\n)*")
}

func TestParseEmpty(t *testing.T) {
	c := qt.New(t)

	cfg, err := Parse(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, &Config{})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sim     SimConfig
		wantErr string
	}{
		{name: "zero", sim: SimConfig{}},
		{name: "negative tick", sim: SimConfig{TickMs: -1}, wantErr: "tick_ms must not be negative, got -1"},
		{name: "negative graph_every", sim: SimConfig{GraphEvery: -2}, wantErr: "graph_every must not be negative, got -2"},
		{name: "unknown source", sim: SimConfig{Source: "serial"}, wantErr: `unknown source "serial" .*`},
		{
			name: "segment current out of range",
			sim: SimConfig{Synthetic: SyntheticConfig{Segments: []SegmentConfig{
				{CurrentMA: 70000, DurationMs: 10},
			}}},
			wantErr: `segment 0: current_ma 70000 out of range \[0, 65535\]`,
		},
		{
			name: "segment without duration",
			sim: SimConfig{Synthetic: SyntheticConfig{Segments: []SegmentConfig{
				{CurrentMA: 10, DurationMs: 10},
				{CurrentMA: 10},
			}}},
			wantErr: "segment 1: duration_ms must be positive",
		},
		{
			name:    "modbus without endpoint",
			sim:     SimConfig{Source: SourceModbus},
			wantErr: "modbus: endpoint required",
		},
		{
			name:    "modbus endpoint without port",
			sim:     SimConfig{Source: SourceModbus, Modbus: ModbusConfig{Endpoint: "meter.local"}},
			wantErr: `modbus: endpoint "meter.local": .*missing port.*`,
		},
		{
			name: "modbus ok",
			sim:  SimConfig{Source: SourceModbus, Modbus: ModbusConfig{Endpoint: "meter.local:502"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			err := Validate(&Config{Sim: tt.sim})
			if tt.wantErr == "" {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(err, qt.ErrorMatches, tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	c := qt.New(t)

	cfg := &Config{}
	c.Assert(Validate(cfg), qt.IsNil)
	Normalize(cfg)

	c.Assert(cfg.Sim.TickMs, qt.Equals, DefaultTickMs)
	c.Assert(cfg.Sim.GraphEvery, qt.Equals, DefaultGraphEvery)
	c.Assert(cfg.Sim.PageMs, qt.Equals, DefaultPageMs)
	c.Assert(cfg.Sim.Source, qt.Equals, SourceSynthetic)
	c.Assert(cfg.Sim.Synthetic.Segments, qt.Not(qt.HasLen), 0)
	c.Assert(cfg.Sim.Modbus.Scale, qt.Equals, 1.0)
	c.Assert(cfg.Sim.Modbus.TimeoutMs, qt.Equals, DefaultTimeoutMs)
	c.Assert(Validate(cfg), qt.IsNil)
}

func TestNormalizeKeepsValues(t *testing.T) {
	c := qt.New(t)

	cfg := &Config{Sim: SimConfig{TickMs: 20, Source: SourceModbus}}
	Normalize(cfg)
	c.Assert(cfg.Sim.TickMs, qt.Equals, 20)
	c.Assert(cfg.Sim.Source, qt.Equals, SourceModbus)

	Normalize(nil)
}
