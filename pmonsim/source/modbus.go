package source

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"

	"github.com/harveysanders/pmon/pmonsim/config"
)

// registerReader is the part of modbus.Client used by Modbus.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) (results []byte, err error)
}

// Modbus reads the current from a holding register of a Modbus TCP power
// meter.
type Modbus struct {
	handler  *modbus.TCPClientHandler
	client   registerReader
	register uint16
	scale    float64
}

// NewModbus connects to the meter at cfg.Endpoint.
func NewModbus(cfg config.ModbusConfig) (*Modbus, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("modbus source: endpoint required")
	}
	handler := modbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	handler.SlaveId = cfg.UnitID
	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus source: connect %s: %w", cfg.Endpoint, err)
	}
	return &Modbus{
		handler:  handler,
		client:   modbus.NewClient(handler),
		register: cfg.Register,
		scale:    cfg.Scale,
	}, nil
}

// Read reads the current register.
func (m *Modbus) Read() (uint16, error) {
	b, err := m.client.ReadHoldingRegisters(m.register, 1)
	if err != nil {
		return 0, fmt.Errorf("modbus source: read register %d: %w", m.register, err)
	}
	return decodeCurrent(b, m.scale)
}

// Close closes the connection to the meter.
func (m *Modbus) Close() error {
	if m == nil || m.handler == nil {
		return nil
	}
	return m.handler.Close()
}

// decodeCurrent converts a big endian register value to milliamps.
func decodeCurrent(b []byte, scale float64) (uint16, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("modbus source: short register payload (%d bytes)", len(b))
	}
	return clamp(float64(binary.BigEndian.Uint16(b)) * scale), nil
}
