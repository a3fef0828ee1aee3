// Package config loads the simulation profile of pmonsim.
//
// A profile describes where samples come from and how fast the simulated
// firmware loop runs:
//
//	sim:
//	  tick_ms: 100
//	  source: synthetic
//	  synthetic:
//	    seed: 7
//	    segments:
//	      - current_ma: 120
//	        duration_ms: 3000
//	        jitter_ma: 15
//	      - current_ma: 900
//	        duration_ms: 1500
//	  modbus:
//	    endpoint: 192.168.1.50:502
//	    unit_id: 1
//	    register: 12
//	    scale: 1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceSynthetic = "synthetic"
	SourceModbus    = "modbus"
)

type Config struct {
	Sim SimConfig `yaml:"sim"`
}

type SimConfig struct {
	TickMs     int             `yaml:"tick_ms"`
	GraphEvery int             `yaml:"graph_every"` // ticks between graph points
	PageMs     int             `yaml:"page_ms"`
	Source     string          `yaml:"source"`
	Synthetic  SyntheticConfig `yaml:"synthetic"`
	Modbus     ModbusConfig    `yaml:"modbus"`
}

// ---- SYNTHETIC ----

type SyntheticConfig struct {
	Seed     int64           `yaml:"seed"`
	Segments []SegmentConfig `yaml:"segments"`
}

// SegmentConfig holds a current level for a duration. The profile loops
// over its segments.
type SegmentConfig struct {
	CurrentMA  int `yaml:"current_ma"`
	DurationMs int `yaml:"duration_ms"`
	JitterMA   int `yaml:"jitter_ma"`
}

// ---- MODBUS ----

type ModbusConfig struct {
	Endpoint  string  `yaml:"endpoint"`
	UnitID    uint8   `yaml:"unit_id"`
	Register  uint16  `yaml:"register"` // holding register with the current
	Scale     float64 `yaml:"scale"`    // mA per register count
	TimeoutMs int     `yaml:"timeout_ms"`
}

// Load reads the profile at path. It does not validate it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(b)
}

// Parse decodes a profile. Unknown fields are rejected and an empty
// profile decodes to the zero Config.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &cfg, nil
}
