// Package serial opens the board's USB CDC port for the reading monitor.
package serial

import (
	"io"
	"time"
)

// Port is the line source the monitor reads from. The native
// implementation wraps github.com/tarm/serial; tests use in-memory readers.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. USB CDC ignores it but the OS driver still wants one.
	Baud int

	// ReadTimeout bounds a single Read (0 = block until data arrives)
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings the example firmware works with
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 500 * time.Millisecond,
	}
}
