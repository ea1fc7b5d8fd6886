package serial

import (
	"errors"
	"fmt"

	"github.com/tarm/serial"
)

// nativePort wraps the tarm/serial implementation
type nativePort struct {
	*serial.Port
	device string
}

// Open opens a native serial port
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, errors.New("serial: no device given")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}

	return &nativePort{Port: port, device: cfg.Device}, nil
}

func (p *nativePort) String() string {
	return p.device
}
